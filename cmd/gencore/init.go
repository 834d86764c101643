package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/coreagent/gencore/internal/config"
)

// newInitCmd creates the project's .gen/ settings directory (the one
// config.NewLoader reads) and, if absent, a starter GENCORE.md, the root
// project instruction file the context store loads. Caps are kept under
// ~/.gen/caps, not here.
func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Scaffold a .gen/ directory for this project",
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}

			loader := config.NewLoader()
			if err := loader.EnsureProjectDir(); err != nil {
				return err
			}

			memoPath := filepath.Join(cwd, "GENCORE.md")
			if _, err := os.Stat(memoPath); os.IsNotExist(err) {
				contents := "# Project notes\n\nThis file is loaded into every session's system prompt.\n"
				if err := os.WriteFile(memoPath, []byte(contents), 0o644); err != nil {
					return err
				}
				fmt.Println("created GENCORE.md")
			}

			fmt.Printf("initialized %s\n", loader.GetProjectDir())
			return nil
		},
	}
}
