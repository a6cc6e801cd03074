package llm

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/nationwide-haul/call-tracker/pkg/anthropic"
	"github.com/nationwide-haul/call-tracker/pkg/openai"
)

type mockAnthropicClient struct {
	mock.Mock
}

func (m *mockAnthropicClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

type mockOpenAIClient struct {
	mock.Mock
}

func (m *mockOpenAIClient) CreateChatCompletion(ctx context.Context, req openai.ChatRequest) (*openai.ChatResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*openai.ChatResponse), args.Error(1)
}

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) Complete(ctx context.Context, prompt string, maxTokens int64) (Completion, error) {
	args := m.Called(ctx, prompt, maxTokens)
	return args.Get(0).(Completion), args.Error(1)
}

func (m *mockBackend) Name() string  { return "claude" }
func (m *mockBackend) Model() string { return "claude-3-5-haiku-20241022" }
