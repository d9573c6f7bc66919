package transport

import (
	"context"
	"encoding/json"

	"github.com/voco-chat/bridge/internal/apperr"
)

// RetryPolicy bounds how often one logical request is re-issued. The
// policy is a value, decoupled from any particular event: MaxAttempts
// counts the first attempt plus every retry.
type RetryPolicy struct {
	MaxAttempts int
}

// Retryable reports whether err is worth another attempt. Only timeouts
// are; a disconnect fails the request immediately and retries never
// cross a reconnect boundary.
func Retryable(err error) bool {
	env, ok := apperr.From(err)
	return ok && env.Tag == apperr.TagTimeout
}

// Do runs op until it succeeds, fails non-retryably, or attempts
// exhaust. The last error is returned as-is; Do never panics and never
// returns a nil error without data.
func (p RetryPolicy) Do(ctx context.Context, op func(context.Context) (json.RawMessage, error), onRetry func(attempt int, err error)) (json.RawMessage, error) {
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if attempt > 1 && onRetry != nil {
			onRetry(attempt, lastErr)
		}
		data, err := op(ctx)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !Retryable(err) {
			return nil, lastErr
		}
		if ctx.Err() != nil {
			return nil, lastErr
		}
	}
	return nil, lastErr
}
