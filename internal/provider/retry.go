package provider

import (
	"context"
	"math"
	"time"

	"github.com/coreagent/gencore/internal/message"
)

// maxRetries bounds the number of additional attempts after a RateLimited
// response. When the last of those retries is rate-limited too, the error
// propagates.
const maxRetries = 3

// StreamWithRetry wraps p.Stream with the retry policy the agent loop is
// required to apply (see CompleteWithRetry): on RateLimitedError it waits
// max(retry_after, 2^attempt) seconds and retries, up to maxRetries times.
// Any other error, or a rate-limit on the final attempt, is forwarded to
// the caller as a ChunkTypeError chunk.
func StreamWithRetry(ctx context.Context, p LlmProvider, req CompletionRequest) <-chan message.StreamChunk {
	out := make(chan message.StreamChunk)

	go func() {
		defer close(out)

		for attempt := 0; ; attempt++ {
			rateLimited, finalErr := relayStream(ctx, p, req, out)
			if finalErr == nil {
				return
			}
			if !rateLimited || attempt >= maxRetries {
				out <- message.StreamChunk{Type: message.ChunkTypeError, Error: finalErr}
				return
			}

			wait := backoff(finalErr, attempt)
			select {
			case <-ctx.Done():
				out <- message.StreamChunk{Type: message.ChunkTypeError, Error: ctx.Err()}
				return
			case <-time.After(wait):
			}
		}
	}()

	return out
}

// relayStream forwards every chunk from one Stream() attempt to out, except
// a terminal error chunk, which it returns instead so the retry loop can
// decide whether to retry. It reports whether the terminal error (if any)
// was a RateLimitedError.
func relayStream(ctx context.Context, p LlmProvider, req CompletionRequest, out chan<- message.StreamChunk) (rateLimited bool, err error) {
	for chunk := range p.Stream(ctx, req) {
		if chunk.Type == message.ChunkTypeError {
			_, isRateLimit := AsRateLimited(chunk.Error)
			return isRateLimit, chunk.Error
		}
		out <- chunk
	}
	return false, nil
}

// CompleteWithRetry is the non-streaming counterpart used by callers (like
// sub-agents) that want one assembled CompletionResponse rather than a raw
// chunk channel.
func CompleteWithRetry(ctx context.Context, p LlmProvider, req CompletionRequest) (message.CompletionResponse, error) {
	var response message.CompletionResponse
	for chunk := range StreamWithRetry(ctx, p, req) {
		switch chunk.Type {
		case message.ChunkTypeText:
			response.Content += chunk.Text
		case message.ChunkTypeThinking:
			response.Thinking += chunk.Text
		case message.ChunkTypeDone:
			if chunk.Response != nil {
				return *chunk.Response, nil
			}
			return response, nil
		case message.ChunkTypeError:
			return response, chunk.Error
		}
	}
	return response, nil
}

func backoff(err error, attempt int) time.Duration {
	exp := time.Duration(math.Pow(2, float64(attempt))) * time.Second
	if rl, ok := AsRateLimited(err); ok {
		retryAfter := time.Duration(rl.RetryAfterSecs * float64(time.Second))
		if retryAfter > exp {
			return retryAfter
		}
	}
	return exp
}
