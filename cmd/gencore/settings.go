package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/coreagent/gencore/internal/config"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or edit gencore settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the merged settings as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load()
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(settings, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get KEY",
		Short: "Print one settings value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load()
			if err != nil {
				return err
			}
			switch args[0] {
			case "model":
				fmt.Println(settings.Model)
			default:
				if v, ok := settings.Env[args[0]]; ok {
					fmt.Println(v)
					return nil
				}
				return fmt.Errorf("unknown setting %q", args[0])
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set one settings value at the project level",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := config.NewLoader()
			settings, err := loader.Load()
			if err != nil {
				return err
			}
			switch args[0] {
			case "model":
				settings.Model = args[1]
			default:
				if settings.Env == nil {
					settings.Env = map[string]string{}
				}
				settings.Env[args[0]] = args[1]
			}
			return loader.SaveToProject(settings)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Reset project-level settings to defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := config.NewLoader()
			path := filepath.Join(loader.GetProjectDir(), "settings.json")
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return err
			}
			return nil
		},
	})

	return cmd
}
