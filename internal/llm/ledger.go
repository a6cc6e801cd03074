package llm

import (
	"sync"

	"github.com/nationwide-haul/call-tracker/internal/cost"
)

// Usage is the running token and spend total for one run.
type Usage struct {
	Calls        int     `json:"calls"`
	InputTokens  int64   `json:"inputTokens"`
	OutputTokens int64   `json:"outputTokens"`
	CostUSD      float64 `json:"costUsd"`
}

// Ledger accumulates usage across every provider sharing it.
type Ledger struct {
	calc *cost.Calculator

	mu    sync.Mutex
	usage Usage
}

// NewLedger creates a ledger priced with calc. A nil calc prices every call
// at zero.
func NewLedger(calc *cost.Calculator) *Ledger {
	return &Ledger{calc: calc}
}

// Record adds one call and returns its cost.
func (l *Ledger) Record(provider, model string, input, output int64) float64 {
	if l == nil {
		return 0
	}

	var usd float64
	if l.calc != nil {
		switch Selector(provider) {
		case SelectorClaude:
			usd = l.calc.Claude(model, input, output)
		case SelectorOpenAI:
			usd = l.calc.OpenAI(model, input, output)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.usage.Calls++
	l.usage.InputTokens += input
	l.usage.OutputTokens += output
	l.usage.CostUSD += usd
	return usd
}

// Usage returns a snapshot of the totals.
func (l *Ledger) Usage() Usage {
	if l == nil {
		return Usage{}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.usage
}
