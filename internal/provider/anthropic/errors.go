package anthropic

import (
	"errors"
	"strconv"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/coreagent/gencore/internal/provider"
)

// classifyError maps an error returned by the Anthropic SDK onto the
// normalized provider error taxonomy so the agent loop's retry and
// context-overflow recovery logic never needs to know about SDK-specific
// error shapes.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	msg := err.Error()
	if strings.Contains(msg, "prompt is too long") || strings.Contains(msg, "context_length") {
		return &provider.ContextTooLongError{}
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 429:
			return &provider.RateLimitedError{RetryAfterSecs: retryAfterSeconds(apiErr)}
		case 400, 401, 403, 404:
			return &provider.InvalidRequestError{Message: apiErr.Message}
		default:
			if apiErr.StatusCode >= 500 {
				return &provider.ServerError{Status: apiErr.StatusCode, Message: apiErr.Message}
			}
		}
	}

	return err
}

// retryAfterSeconds reads a Retry-After style hint from the SDK error's
// response headers, defaulting to 0 (unknown) when absent or unparsable.
func retryAfterSeconds(apiErr *anthropic.Error) float64 {
	if apiErr.Response == nil {
		return 0
	}
	v := apiErr.Response.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, convErr := strconv.ParseFloat(v, 64)
	if convErr != nil {
		return 0
	}
	return secs
}
