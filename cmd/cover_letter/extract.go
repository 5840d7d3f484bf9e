package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/cover-letter/internal/logging"
	"github.com/jonathan/cover-letter/internal/pipeline"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Retrieve a job posting and print the extracted details as JSON",
	RunE:  runExtract,
}

var extractFlags runFlags

func init() {
	extractFlags.register(extractCmd)
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := extractFlags.resolve(cmd)
	if err != nil {
		return err
	}

	logger := logging.New(cmd.ErrOrStderr(), cfg.Verbose)
	// Headlines go to stderr so stdout carries only JSON
	a, err := newApp(ctx, cfg, cmd.ErrOrStderr(), logger)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.pipeline.Run(ctx, pipeline.RunOptions{
		JobURL:      cfg.JobURL,
		Company:     cfg.Company,
		Position:    cfg.Position,
		ExtractOnly: true,
		PostingDir:  extractFlags.postingDir,
		Verbose:     cfg.Verbose,
	})
	if err != nil {
		return err
	}
	if result.NeedsManualEntry {
		return manualEntryError(result.Reason)
	}

	data, err := json.MarshalIndent(result.Details, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal job details: %w", err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
