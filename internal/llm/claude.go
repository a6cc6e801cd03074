package llm

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/nationwide-haul/call-tracker/pkg/anthropic"
)

// jsonPrefill is sent as the start of the assistant turn so Claude answers
// with a bare JSON object.
const jsonPrefill = "{"

type claudeBackend struct {
	client anthropic.Client
	model  string
}

// NewClaude returns a Backend that asks Claude for JSON answers.
func NewClaude(client anthropic.Client, model string) Backend {
	return &claudeBackend{client: client, model: model}
}

func (b *claudeBackend) Name() string  { return string(SelectorClaude) }
func (b *claudeBackend) Model() string { return b.model }

func (b *claudeBackend) Complete(ctx context.Context, prompt string, maxTokens int64) (Completion, error) {
	resp, err := b.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     b.model,
		MaxTokens: maxTokens,
		Messages: []anthropic.Message{
			{Role: "user", Content: prompt},
			{Role: "assistant", Content: jsonPrefill},
		},
	})
	if err != nil {
		code, ok := anthropic.StatusCode(err)
		return Completion{}, classify(err, code, ok)
	}

	out := Completion{
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return out, eris.Wrapf(ErrEmptyResponse, "claude %s", b.model)
	}
	out.Text = jsonPrefill + text
	return out, nil
}
