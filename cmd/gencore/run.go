package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coreagent/gencore/internal/permission"
	"github.com/coreagent/gencore/internal/tool"
	"github.com/coreagent/gencore/internal/tool/builtin"
)

// newRunCmd runs a command line directly through the shell tool, bypassing
// the model entirely. It shares the destructive-command check and
// permission path that an in-chat shell call goes through, but since there
// is no conversation to attach the result to, confirmation is a plain
// stdin y/n prompt rather than the TUI's own.
func newRunCmd() *cobra.Command {
	var trust bool

	cmd := &cobra.Command{
		Use:                "run CMD [ARGS...]",
		Short:              "Run a shell command directly, without going through the model",
		Args:               cobra.MinimumNArgs(1),
		DisableFlagParsing: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}

			var broker *permission.Broker
			if trust {
				broker = permission.NewTrustedBroker()
			} else {
				broker = permission.NewBroker(stdinConfirm)
			}

			shell := &builtin.Shell{}
			command := strings.Join(args, " ")
			callArgs := map[string]any{"command": command}

			if shell.RequiresPermission() && broker.NeedsPermission(shell.Name()) {
				req := shell.PermissionRequest(callArgs)
				if req == nil {
					req = &permission.Request{ToolName: shell.Name()}
				}
				if !broker.RequestPermission(*req) {
					return fmt.Errorf("permission denied")
				}
			}

			result := shell.Execute(cmd.Context(), "run", callArgs, tool.Context{Cwd: cwd, Broker: broker})

			fmt.Println(result.Content)
			if result.IsError {
				return fmt.Errorf("command failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&trust, "trust", false, "skip the confirmation prompt")
	return cmd
}

// stdinConfirm is the permission callback for `run`: a plain y/n prompt on
// the controlling terminal, since there is no TUI or chat transcript to
// attach a richer prompt to.
func stdinConfirm(req permission.Request) permission.Outcome {
	fmt.Printf("%s wants to run: %v\nAllow? [y/N] ", req.ToolName, req.Meta)
	var answer string
	fmt.Scanln(&answer)
	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer == "y" || answer == "yes" {
		return permission.OutcomeAllow
	}
	return permission.OutcomeDeny
}
