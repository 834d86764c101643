package main

import (
	"fmt"
	"os"

	"github.com/coreagent/gencore/internal/chatcontroller"
	"github.com/coreagent/gencore/internal/message"
	"github.com/coreagent/gencore/internal/session"
)

// resumeInto loads a stored session by ID and replays its messages (and
// system prompt, if one was recorded) into a freshly built controller.
func resumeInto(ctrl *chatcontroller.Controller, id string) error {
	store, err := session.NewStore()
	if err != nil {
		return err
	}
	sess, err := store.Load(id)
	if err != nil {
		return err
	}
	if sess.System != "" {
		ctrl.Conversation.SetSystem(sess.System)
	}
	for _, m := range session.ToMessages(sess.Messages) {
		ctrl.Conversation.Push(m)
	}
	return nil
}

// seedFileContext reads a file and pushes its contents into the conversation
// as a user message, the same shape chat.go's --files-in-context flag uses
// to prime a session before the user types anything.
func seedFileContext(ctrl *chatcontroller.Controller, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %q: %w", path, err)
	}
	ctrl.Conversation.Push(message.Message{
		Role:    message.RoleUser,
		Content: fmt.Sprintf("Contents of %s:\n\n%s", path, string(data)),
	})
	return nil
}

// persistSession snapshots a controller's conversation to the on-disk
// session store. Called after one-shot turns (ask, and the root command
// given a message) so history survives the process; chat does not call it.
func persistSession(ctrl *chatcontroller.Controller, id string) error {
	store, err := session.NewStore()
	if err != nil {
		return err
	}
	msgs := ctrl.Conversation.Messages()
	stored := session.FromMessages(msgs)

	sess := &session.Session{
		Metadata: session.SessionMetadata{
			ID:           id,
			Title:        session.GenerateTitle(stored),
			Provider:     ctrl.Provider.Name(),
			Model:        ctrl.Model,
			Cwd:          ctrl.Cwd,
			MessageCount: len(stored),
		},
		System:   ctrl.Conversation.System(),
		Messages: stored,
	}
	return store.Save(sess)
}
