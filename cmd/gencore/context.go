package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coreagent/gencore/internal/contextstore"
)

// newContextCmd inspects or manages the context store for the current
// working directory. Each invocation builds its own throwaway Store since
// there is no long-running process to share one with outside a chat session.
func newContextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Inspect and manage the project context store",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show chunk counts and token usage for this project",
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, _ := os.Getwd()
			store := contextstore.NewStore()
			store.SetProjectRoot(cwd, true)
			stats := store.Stats()
			fmt.Printf("hot: %d  warm: %d  cold: %d  tokens: %d  text-bytes: %d\n",
				stats.Hot, stats.Warm, stats.Cold, stats.TotalTokens, stats.StorageBytes)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "usage",
		Short: "Show the project context that would be injected into a new session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, _ := os.Getwd()
			store := contextstore.NewStore()
			store.SetProjectRoot(cwd, true)
			fmt.Println(store.ProjectContextString())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Reload the project instruction files (runs no chunk compaction)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, _ := os.Getwd()
			store := contextstore.NewStore()
			store.SetProjectRoot(cwd, true)
			store.RefreshProjectContext()
			fmt.Println("project context refreshed")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Clear the in-memory context store (no-op across processes; see `history clear` for saved sessions)",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := contextstore.NewStore()
			store.Clear()
			fmt.Println("cleared")
			return nil
		},
	})

	return cmd
}
