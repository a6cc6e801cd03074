package pipeline

import (
	"context"
	"strings"

	"github.com/stretchr/testify/mock"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Call(ctx context.Context, prompt string, maxTokens int64) (string, error) {
	args := m.Called(ctx, prompt, maxTokens)
	return args.String(0), args.Error(1)
}

func (m *mockProvider) Model() string { return "claude-3-5-haiku-20241022" }

// Prompt matchers for each stage.
var (
	triageCall  = promptContaining("Classify the phone call transcript")
	extractCall = promptContaining("pull out contact details")
	scoreCall   = promptContaining("You coach sales reps")
)

func promptContaining(s string) any {
	return mock.MatchedBy(func(p string) bool { return strings.Contains(p, s) })
}

func both(a, b string) any {
	return mock.MatchedBy(func(p string) bool { return strings.Contains(p, a) && strings.Contains(p, b) })
}
