package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/cover-letter/internal/prompts"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts [KEY]",
	Short: "List the built-in AI prompts, or print one prompt template",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPrompts,
}

func init() {
	rootCmd.AddCommand(promptsCmd)
}

func runPrompts(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) == 1 {
		template, err := prompts.Get(prompts.CoverLetterFile, args[0])
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(out, template)
		return nil
	}

	keys, err := prompts.List(prompts.CoverLetterFile)
	if err != nil {
		return err
	}
	for _, key := range keys {
		_, _ = fmt.Fprintln(out, key)
	}
	return nil
}
