package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newMCPCmd and newLSPCmd are deliberately thin: external tool-server and
// language-server integration are named in the CLI surface but sit outside
// the agent core, and neither has a wired runtime in this build.
func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Manage external MCP tool servers (not wired in this build)",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("no MCP server integration is configured for this build")
			return nil
		},
	}
}

func newLSPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Manage language-server integration (not wired in this build)",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("no language-server integration is configured for this build")
			return nil
		},
	}
}
