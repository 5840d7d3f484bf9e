package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/cover-letter/internal/logging"
	"github.com/jonathan/cover-letter/internal/pipeline"
	"github.com/jonathan/cover-letter/internal/rendering"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a cover letter for a job posting URL",
	Long: `Runs the full pipeline: retrieval -> cleaning -> extraction -> narrative generation -> rendering.

Configuration can be loaded from a JSON or YAML file using --config. Command-line arguments override config file values.`,
	RunE: runGenerate,
}

var (
	genFlags    runFlags
	genTemplate string
	genOutDir   string
	genFormat   string
	genPDF      bool
)

func init() {
	genFlags.register(generateCmd)
	generateCmd.Flags().StringVarP(&genTemplate, "template", "t", "", "Path to a letter template (default: built-in template for the format)")
	generateCmd.Flags().StringVarP(&genOutDir, "out", "o", "", "Output directory (default: current directory)")
	generateCmd.Flags().StringVar(&genFormat, "format", "", "Output format: text, latex or pdf")
	generateCmd.Flags().BoolVar(&genPDF, "pdf", false, "Shorthand for --format pdf")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := genFlags.resolve(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("template") {
		cfg.Template = genTemplate
	}
	if cmd.Flags().Changed("out") {
		cfg.OutputDir = genOutDir
	}
	if cmd.Flags().Changed("format") {
		cfg.Format = genFormat
	}
	if genPDF {
		cfg.Format = string(rendering.FormatPDF)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	format, err := rendering.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	logger := logging.New(cmd.ErrOrStderr(), cfg.Verbose)
	a, err := newApp(ctx, cfg, cmd.OutOrStdout(), logger)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.pipeline.Run(ctx, pipeline.RunOptions{
		JobURL:       cfg.JobURL,
		JobTextPath:  cfg.JobText,
		Company:      cfg.Company,
		Position:     cfg.Position,
		PostingDir:   genFlags.postingDir,
		OutputDir:    cfg.OutputDir,
		Format:       format,
		TemplatePath: cfg.Template,
		Verbose:      cfg.Verbose,
	})
	if err != nil {
		return err
	}
	if result.NeedsManualEntry {
		return manualEntryError(result.Reason)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\nCover letter written to %s\n", result.OutputPath)
	return nil
}

var errNeedsManualEntry = errors.New("manual entry required")

func manualEntryError(reason pipeline.ManualEntryReason) error {
	switch reason {
	case pipeline.ReasonPosting:
		return fmt.Errorf("%w: no posting text could be retrieved; rerun with --job-text pointing at the pasted posting", errNeedsManualEntry)
	default:
		return fmt.Errorf("%w: company and position could not be extracted; rerun with --company and --position", errNeedsManualEntry)
	}
}
