package main

import (
	"fmt"

	"github.com/jonathan/cover-letter/internal/fetch"
	"github.com/spf13/cobra"
)

var validateURLCmd = &cobra.Command{
	Use:   "validate-url URL",
	Short: "Check that a job posting URL has a scheme and a host",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidateURL,
}

func init() {
	rootCmd.AddCommand(validateURLCmd)
}

func runValidateURL(cmd *cobra.Command, args []string) error {
	if err := fetch.ValidateURL(args[0]); err != nil {
		return err
	}

	platform := fetch.DetectPlatform(args[0])
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "valid: %s (platform: %s)\n", args[0], platform)
	return nil
}
