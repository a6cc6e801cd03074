// Package llm is the model provider black box used by the pipeline: one
// prompt in, one text completion out. Retry, circuit breaking, rate limiting,
// metrics and cost accounting are layered on here so pipeline stages never
// see them.
package llm

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrEmptyResponse is returned when a provider answers with no text.
var ErrEmptyResponse = eris.New("llm: empty response")

// Provider completes a single prompt. Implementations must be safe for
// concurrent use.
type Provider interface {
	Call(ctx context.Context, prompt string, maxTokens int64) (string, error)
	Model() string
}

// Completion is one raw backend answer with its token usage.
type Completion struct {
	Text         string
	InputTokens  int64
	OutputTokens int64
}

// Backend is a concrete vendor integration. Wrap turns a Backend into a
// Provider.
type Backend interface {
	Complete(ctx context.Context, prompt string, maxTokens int64) (Completion, error)
	Name() string
	Model() string
}

// Selector names the vendor a run uses.
type Selector string

const (
	SelectorClaude Selector = "claude"
	SelectorOpenAI Selector = "openai"
)

// ParseSelector maps a user supplied model choice to a Selector. Blank
// selects Claude.
func ParseSelector(s string) (Selector, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(SelectorClaude):
		return SelectorClaude, nil
	case string(SelectorOpenAI):
		return SelectorOpenAI, nil
	default:
		return "", eris.Errorf("llm: unknown model %q (want claude or openai)", s)
	}
}

// StatusError carries a non-retryable HTTP status from a provider.
type StatusError struct {
	Err        error
	StatusCode int
}

func (e *StatusError) Error() string { return e.Err.Error() }

func (e *StatusError) Unwrap() error { return e.Err }
