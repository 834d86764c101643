package contextstore

import (
	"context"
	"fmt"

	"github.com/coreagent/gencore/internal/message"
	"github.com/coreagent/gencore/internal/provider"
)

// compactSystemPrompt instructs the model to produce a compact but
// faithful summary of a coding conversation, standing in for the original
// turns so the conversation can keep going with a smaller token footprint.
const compactSystemPrompt = `You are summarizing a coding assistant conversation so it can continue with less context. Produce a concise summary covering: what the user asked for, what has been done so far (files read/edited, commands run, key decisions), and what remains to be done. Preserve concrete details (file paths, function names, error messages) that would be needed to keep working without re-reading the original conversation.`

const maxCompactionTokens = 2048

// CompactNow summarizes conv's current messages via an LLM call, replacing
// the conversation's history with one user message that carries the
// summary, and records the summary as a chunk in the store. This is the
// explicit, synchronous counterpart to the periodic background compaction
// StartBackgroundCompaction runs; a caller invokes it directly rather than
// waiting for the next tick.
//
// focus, if non-empty, is appended as an instruction steering what detail
// the summary should retain (e.g. "keep everything about the auth bug").
func (s *Store) CompactNow(ctx context.Context, p provider.LlmProvider, model string, conv *message.Conversation, focus string) (summary string, removedCount int, err error) {
	msgs := conv.Messages()
	if len(msgs) == 0 {
		return "", 0, nil
	}

	text := message.BuildConversationText(msgs)
	if focus != "" {
		text += fmt.Sprintf("\n\nPay particular attention to: %s\n", focus)
	}

	req := provider.CompletionRequest{
		Model:        model,
		SystemPrompt: compactSystemPrompt,
		Messages:     []message.Message{message.UserMessage(text, nil)},
		MaxTokens:    maxCompactionTokens,
	}

	resp, err := provider.CompleteWithRetry(ctx, p, req)
	if err != nil {
		return "", 0, err
	}

	removedCount = conv.Len()
	conv.Clear()
	conv.Push(message.UserMessage("Summary of the conversation so far:\n\n"+resp.Content, nil))

	if s != nil {
		s.StoreMessage("system", resp.Content, 0)
	}

	return resp.Content, removedCount, nil
}
