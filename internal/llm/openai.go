package llm

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/nationwide-haul/call-tracker/pkg/openai"
)

type openAIBackend struct {
	client openai.Client
	model  string
}

// NewOpenAI returns a Backend that asks an OpenAI chat model for JSON
// answers.
func NewOpenAI(client openai.Client, model string) Backend {
	return &openAIBackend{client: client, model: model}
}

func (b *openAIBackend) Name() string  { return string(SelectorOpenAI) }
func (b *openAIBackend) Model() string { return b.model }

func (b *openAIBackend) Complete(ctx context.Context, prompt string, maxTokens int64) (Completion, error) {
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatRequest{
		Model:      b.model,
		MaxTokens:  maxTokens,
		Prompt:     prompt,
		JSONObject: true,
	})
	if err != nil {
		code, ok := openai.StatusCode(err)
		return Completion{}, classify(err, code, ok)
	}

	out := Completion{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}
	if strings.TrimSpace(resp.Content) == "" {
		return out, eris.Wrapf(ErrEmptyResponse, "openai %s", b.model)
	}
	out.Text = resp.Content
	return out, nil
}
