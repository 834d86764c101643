package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newClearCmd is the bare `gencore clear` subcommand. It only prints a note
// that each `chat` invocation starts with a blank conversation unless
// --resume is given; it deletes no saved session. Inside an interactive
// session, the /clear slash command clears the live conversation.
func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Start the next chat session with a blank conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("conversation state is per-session; the next `chat` invocation starts fresh unless you pass --resume")
			return nil
		},
	}
}
