package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// newSystemCmd prints the system prompt a chat session would start with,
// without spending a provider call — useful for debugging cap/memory wiring.
func newSystemCmd() *cobra.Command {
	var providerName, model string

	cmd := &cobra.Command{
		Use:   "system",
		Short: "Print the system prompt a new session would use",
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			fmt.Println(buildSystemPrompt(providerName, model, cwd, ""))
			return nil
		},
	}

	cmd.Flags().StringVar(&providerName, "provider", "anthropic", "provider name to render the prompt for")
	cmd.Flags().StringVar(&model, "model", "", "model name to render the prompt for")
	return cmd
}
