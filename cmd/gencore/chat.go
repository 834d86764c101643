package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coreagent/gencore/internal/chatcontroller"
	"github.com/coreagent/gencore/internal/tui"
)

func newChatCmd() *cobra.Command {
	var (
		providerName string
		model        string
		cap_         string
		trust        bool
		noTUI        bool
		resume       string
		filesCtx     []string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctrl, err := buildController(ctx, controllerOptions{
				ProviderName: providerName,
				Model:        model,
				Trust:        trust,
				Cap:          cap_,
			})
			if err != nil {
				return err
			}

			if resume != "" {
				if err := resumeInto(ctrl, resume); err != nil {
					return fmt.Errorf("resume %q: %w", resume, err)
				}
			}
			for _, f := range filesCtx {
				if err := seedFileContext(ctrl, f); err != nil {
					return err
				}
			}

			if noTUI {
				return runLineLoop(ctx, ctrl)
			}
			return tui.Run(ctrl)
		},
	}

	cmd.Flags().StringVar(&providerName, "provider", "", "provider to use (anthropic, openai, google, moonshot)")
	cmd.Flags().StringVar(&model, "model", "", "model override")
	cmd.Flags().StringVar(&cap_, "cap", "", "cap bundle to load")
	cmd.Flags().BoolVar(&trust, "trust", false, "auto-approve every permission request")
	cmd.Flags().BoolVar(&noTUI, "no-tui", false, "run a plain line-based loop instead of the TUI")
	cmd.Flags().Bool("no-stream", false, "accepted but has no effect: output is rendered the same either way")
	cmd.Flags().StringVar(&resume, "resume", "", "resume a prior session by ID")
	cmd.Flags().StringSliceVar(&filesCtx, "files-in-context", nil, "seed the conversation with file contents")

	return cmd
}

// runLineLoop is the --no-tui fallback: stdin lines in, Output.Text out.
// It exists for scripting and environments without a real terminal; the
// TUI is the primary interface.
func runLineLoop(ctx context.Context, ctrl *chatcontroller.Controller) error {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := scanner.Text()
		out := ctrl.HandleLine(ctx, line)
		switch out.Kind {
		case chatcontroller.KindExit:
			fmt.Println(out.Text)
			return nil
		case chatcontroller.KindEmpty:
			continue
		default:
			fmt.Println(strings.TrimRight(out.Text, "\n"))
		}
	}
}
