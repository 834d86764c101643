package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coreagent/gencore/internal/chatcontroller"
)

func newAskCmd() *cobra.Command {
	var (
		providerName string
		model        string
		cap_         string
		files        []string
	)

	cmd := &cobra.Command{
		Use:   "ask PROMPT",
		Short: "Run a single non-interactive turn and print the result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctrl, err := buildController(ctx, controllerOptions{
				ProviderName: providerName,
				Model:        model,
				Trust:        true,
				Cap:          cap_,
			})
			if err != nil {
				return err
			}

			for _, f := range files {
				if err := seedFileContext(ctrl, f); err != nil {
					return err
				}
			}

			prompt := strings.Join(args, " ")
			out := ctrl.HandleLine(ctx, prompt)
			switch out.Kind {
			case chatcontroller.KindTurnFailed:
				fmt.Fprintln(os.Stderr, out.Text)
				return fmt.Errorf("turn failed")
			default:
				fmt.Println(out.Text)
			}

			if err := persistSession(ctrl, ""); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to save session: %v\n", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&providerName, "provider", "", "provider to use (anthropic, openai, google, moonshot)")
	cmd.Flags().StringVar(&model, "model", "", "model override")
	cmd.Flags().StringVar(&cap_, "cap", "", "cap bundle to load")
	cmd.Flags().StringSliceVar(&files, "file", nil, "seed the prompt with file contents")

	return cmd
}
