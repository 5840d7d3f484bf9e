package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/cover-letter/internal/db"
)

var showRunCmd = &cobra.Command{
	Use:   "show-run RUN_ID",
	Short: "Print a stored run with its extracted details, narrative and letter",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowRun,
}

var showRunDatabaseURL string

func init() {
	showRunCmd.Flags().StringVar(&showRunDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	rootCmd.AddCommand(showRunCmd)
}

func runShowRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	runID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid run ID format: %w", err)
	}

	databaseURL := showRunDatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	run, err := database.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %s not found", runID)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Run:      %s\n", run.ID)
	_, _ = fmt.Fprintf(out, "URL:      %s\n", run.JobURL)
	_, _ = fmt.Fprintf(out, "Status:   %s\n", run.Status)
	_, _ = fmt.Fprintf(out, "Created:  %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"))
	if run.Company != "" {
		_, _ = fmt.Fprintf(out, "Company:  %s\n", run.Company)
		_, _ = fmt.Fprintf(out, "Position: %s\n", run.Position)
	}

	for _, step := range []string{db.StepExtraction, db.StepNarrative} {
		content, err := database.GetArtifact(ctx, runID, step)
		if err != nil {
			return err
		}
		if content != nil {
			_, _ = fmt.Fprintf(out, "\n[%s]\n%s\n", step, content)
		}
	}

	letter, err := database.GetTextArtifact(ctx, runID, db.StepLetter)
	if err != nil {
		return err
	}
	if letter != "" {
		_, _ = fmt.Fprintf(out, "\n[%s]\n%s\n", db.StepLetter, letter)
	}
	return nil
}
