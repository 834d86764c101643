package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags; "dev" otherwise.
var version = "dev"

func newUpdateCmd() *cobra.Command {
	var (
		check        bool
		force        bool
		targetVer    string
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Check for or apply a gencore update",
		RunE: func(cmd *cobra.Command, args []string) error {
			if check {
				fmt.Printf("running %s; no update channel configured for this build\n", version)
				return nil
			}
			target := targetVer
			if target == "" {
				target = "latest"
			}
			if !force {
				fmt.Printf("would update from %s to %s; pass --force to confirm, or install from source\n", version, target)
				return nil
			}
			return fmt.Errorf("no update channel configured for this build; reinstall from source instead")
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "only check for an available update")
	cmd.Flags().BoolVar(&force, "force", false, "apply the update without confirmation")
	cmd.Flags().StringVar(&targetVer, "target-version", "", "a specific version to install")

	return cmd
}
