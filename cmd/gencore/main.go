// Command gencore is a terminal AI coding assistant: an interactive chat
// loop backed by a pluggable LLM provider, a tool registry for reading and
// editing files, running shell commands, and spawning sub-agents, and a
// permission broker that gates anything destructive.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/coreagent/gencore/internal/log"
	"github.com/coreagent/gencore/internal/tui"
)

func init() {
	_ = godotenv.Load()
	_ = log.Init()
}

func main() {
	defer log.Sync()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		providerName string
		model        string
		cap_         string
		trust        bool
		promptFlag   string
	)

	root := &cobra.Command{
		Use:   "gencore [message]",
		Short: "gencore - AI coding assistant for the terminal",
		Long: `gencore is a terminal AI coding assistant.
Pluggable providers, a sandboxed tool registry, sub-agent scheduling.

Non-interactive mode:
  gencore "your message"     Send a message directly
  echo "message" | gencore   Send a message via stdin
  gencore -p "prompt"        Use a custom prompt`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			message := getInputMessage(promptFlag, args)
			ctx := context.Background()

			if message != "" {
				ctrl, err := buildController(ctx, controllerOptions{
					ProviderName: providerName,
					Model:        model,
					Trust:        trust,
					Cap:          cap_,
				})
				if err != nil {
					return err
				}
				out := ctrl.HandleLine(ctx, message)
				fmt.Println(out.Text)
				if err := persistSession(ctrl, ""); err != nil {
					fmt.Fprintf(os.Stderr, "warning: failed to save session: %v\n", err)
				}
				return nil
			}

			ctrl, err := buildController(ctx, controllerOptions{
				ProviderName: providerName,
				Model:        model,
				Trust:        trust,
				Cap:          cap_,
			})
			if err != nil {
				return err
			}
			return tui.Run(ctrl)
		},
	}

	root.Flags().StringVarP(&promptFlag, "prompt", "p", "", "custom prompt to send non-interactively")
	root.PersistentFlags().StringVar(&providerName, "provider", "", "provider to use (anthropic, openai, google, moonshot)")
	root.PersistentFlags().StringVar(&model, "model", "", "model override")
	root.PersistentFlags().StringVar(&cap_, "cap", "", "cap bundle to load")
	root.PersistentFlags().BoolVar(&trust, "trust", false, "auto-approve every permission request")

	root.AddCommand(
		newChatCmd(),
		newAskCmd(),
		newClearCmd(),
		newInitCmd(),
		newSettingsCmd(),
		newCapsCmd(),
		newHistoryCmd(),
		newContextCmd(),
		newUpdateCmd(),
		newSystemCmd(),
		newMCPCmd(),
		newLSPCmd(),
		newRunCmd(),
		newVersionCmd(),
	)

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the gencore version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(version)
			return nil
		},
	}
}

// getInputMessage resolves non-interactive input from the -p flag,
// positional args, or a piped stdin, in that order of precedence.
func getInputMessage(promptFlag string, args []string) string {
	if promptFlag != "" {
		return promptFlag
	}
	if len(args) > 0 {
		return strings.Join(args, " ")
	}
	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) == 0 {
		data, err := io.ReadAll(bufio.NewReader(os.Stdin))
		if err == nil && len(data) > 0 {
			return strings.TrimSpace(string(data))
		}
	}
	return ""
}
