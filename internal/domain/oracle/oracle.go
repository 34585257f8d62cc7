package oracle

import (
	"context"
	"errors"
)

// ErrUnavailable marks auth or network failures reaching the
// text-completion oracle. Callers retry at most once, then fall back
// to heuristic extraction.
var ErrUnavailable = errors.New("text-completion oracle is unavailable")

// Client defines an interface for the external text-completion service
// used to rewrite free-form utterances into the canonical grammar.
type Client interface {
	Complete(ctx context.Context, systemPrompt, userText string) (string, error)
}
