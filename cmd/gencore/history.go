package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coreagent/gencore/internal/session"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and manage saved sessions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved sessions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := session.NewStore()
			if err != nil {
				return err
			}
			metas, err := store.List()
			if err != nil {
				return err
			}
			if len(metas) == 0 {
				fmt.Println("no saved sessions")
				return nil
			}
			for _, m := range metas {
				fmt.Printf("%s  %-20s  %s  %d msgs\n", m.ID, m.Title, m.UpdatedAt.Format("2006-01-02 15:04"), m.MessageCount)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "search QUERY",
		Short: "Search saved sessions by title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := session.NewStore()
			if err != nil {
				return err
			}
			metas, err := store.List()
			if err != nil {
				return err
			}
			query := strings.ToLower(args[0])
			found := false
			for _, m := range metas {
				if strings.Contains(strings.ToLower(m.Title), query) {
					fmt.Printf("%s  %-20s  %s\n", m.ID, m.Title, m.UpdatedAt.Format("2006-01-02 15:04"))
					found = true
				}
			}
			if !found {
				fmt.Println("no matches")
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show ID",
		Short: "Print a session's transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := session.NewStore()
			if err != nil {
				return err
			}
			sess, err := store.Load(args[0])
			if err != nil {
				return err
			}
			for _, m := range sess.Messages {
				fmt.Printf("--- %s ---\n%s\n\n", m.Role, m.Content)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete ID",
		Short: "Delete a saved session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := session.NewStore()
			if err != nil {
				return err
			}
			return store.Delete(args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete all saved sessions older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := session.NewStore()
			if err != nil {
				return err
			}
			return store.Cleanup()
		},
	})

	return cmd
}
