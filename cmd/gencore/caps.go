package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
)

// Cap is a named persona bundle: a system-prompt fragment, a preferred
// model, and nothing else the core needs to know about. Caps are CLI-side
// glue consumed as a system-prompt input (see buildSystemPrompt); the core
// agent loop has no notion of a "cap".
type Cap struct {
	Name         string `json:"name"`
	Model        string `json:"model,omitempty"`
	SystemPrompt string `json:"systemPrompt"`
}

func capsDir(cwd string) string {
	if dir := os.Getenv("GENCORE_CAPS_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(cwd, ".gen", "caps")
	}
	return filepath.Join(home, ".gen", "caps")
}

func capPath(cwd, name string) string {
	return filepath.Join(capsDir(cwd), name+".json")
}

func loadCap(cwd, name string) (*Cap, error) {
	data, err := os.ReadFile(capPath(cwd, name))
	if err != nil {
		return nil, err
	}
	var c Cap
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse cap %q: %w", name, err)
	}
	return &c, nil
}

func saveCap(cwd string, c *Cap) error {
	dir := capsDir(cwd)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(capPath(cwd, c.Name), data, 0o644)
}

func listCaps(cwd string) ([]string, error) {
	entries, err := os.ReadDir(capsDir(cwd))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			names = append(names, e.Name()[:len(e.Name())-len(".json")])
		}
	}
	sort.Strings(names)
	return names, nil
}

func newCapsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "caps",
		Short: "Manage cap bundles (system prompt + model presets)",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available caps",
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, _ := os.Getwd()
			names, err := listCaps(cwd)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Println("no caps defined")
				return nil
			}
			for _, n := range names {
				fmt.Println(n)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show NAME",
		Short: "Show a cap's definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, _ := os.Getwd()
			c, err := loadCap(cwd, args[0])
			if err != nil {
				return err
			}
			data, _ := json.MarshalIndent(c, "", "  ")
			fmt.Println(string(data))
			return nil
		},
	})

	var createModel, createPrompt string
	createCmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a cap",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, _ := os.Getwd()
			c := &Cap{Name: args[0], Model: createModel, SystemPrompt: createPrompt}
			if err := saveCap(cwd, c); err != nil {
				return err
			}
			fmt.Printf("created cap %q\n", c.Name)
			return nil
		},
	}
	createCmd.Flags().StringVar(&createModel, "model", "", "preferred model for this cap")
	createCmd.Flags().StringVar(&createPrompt, "prompt", "", "system prompt fragment")
	cmd.AddCommand(createCmd)

	var editModel, editPrompt string
	editCmd := &cobra.Command{
		Use:   "edit NAME",
		Short: "Edit a cap's prompt or model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, _ := os.Getwd()
			c, err := loadCap(cwd, args[0])
			if err != nil {
				return err
			}
			if editModel != "" {
				c.Model = editModel
			}
			if editPrompt != "" {
				c.SystemPrompt = editPrompt
			}
			return saveCap(cwd, c)
		},
	}
	editCmd.Flags().StringVar(&editModel, "model", "", "preferred model for this cap")
	editCmd.Flags().StringVar(&editPrompt, "prompt", "", "system prompt fragment")
	cmd.AddCommand(editCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "import FILE",
		Short: "Import a cap from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, _ := os.Getwd()
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var c Cap
			if err := json.Unmarshal(data, &c); err != nil {
				return err
			}
			return saveCap(cwd, &c)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "export NAME",
		Short: "Export a cap as JSON to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, _ := os.Getwd()
			c, err := loadCap(cwd, args[0])
			if err != nil {
				return err
			}
			data, _ := json.MarshalIndent(c, "", "  ")
			fmt.Println(string(data))
			return nil
		},
	})

	return cmd
}
