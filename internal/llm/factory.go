package llm

import (
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/nationwide-haul/call-tracker/internal/config"
	"github.com/nationwide-haul/call-tracker/internal/cost"
	"github.com/nationwide-haul/call-tracker/internal/metrics"
	"github.com/nationwide-haul/call-tracker/internal/resilience"
	"github.com/nationwide-haul/call-tracker/pkg/anthropic"
	"github.com/nationwide-haul/call-tracker/pkg/openai"
)

// ErrMissingKey is returned when a run is started without a credential.
var ErrMissingKey = eris.New("llm: api key is required")

// Providers is the pair of models one run uses: a cheap fast tier for
// triage and extraction and a stronger tier for scoring.
type Providers struct {
	Selector Selector
	Fast     Provider
	Score    Provider
	Ledger   *Ledger
}

// Factory builds per-run Providers from a caller supplied credential.
type Factory struct {
	cfg     *config.Config
	calc    *cost.Calculator
	metrics *metrics.Metrics

	newClaude func(apiKey string) anthropic.Client
	newOpenAI func(apiKey string) openai.Client
}

// NewFactory creates a Factory backed by the real vendor SDKs.
func NewFactory(cfg *config.Config, calc *cost.Calculator, m *metrics.Metrics) *Factory {
	return &Factory{
		cfg:     cfg,
		calc:    calc,
		metrics: m,
		newClaude: func(apiKey string) anthropic.Client {
			return anthropic.NewClient(apiKey)
		},
		newOpenAI: func(apiKey string) openai.Client {
			return openai.NewClient(apiKey)
		},
	}
}

// New builds the fast and scoring providers for one run. Both share one
// rate limiter, one circuit breaker and one ledger, since they share a
// credential.
func (f *Factory) New(sel Selector, apiKey string) (*Providers, error) {
	if apiKey == "" {
		return nil, ErrMissingKey
	}

	var fast, score Backend
	switch sel {
	case SelectorClaude:
		client := f.newClaude(apiKey)
		fast = NewClaude(client, f.cfg.Anthropic.FastModel)
		score = NewClaude(client, f.cfg.Anthropic.ScoreModel)
	case SelectorOpenAI:
		client := f.newOpenAI(apiKey)
		fast = NewOpenAI(client, f.cfg.OpenAI.FastModel)
		score = NewOpenAI(client, f.cfg.OpenAI.ScoreModel)
	default:
		return nil, eris.Errorf("llm: unknown selector %q", sel)
	}

	ledger := NewLedger(f.calc)
	opts := f.options(sel, ledger)

	return &Providers{
		Selector: sel,
		Fast:     Wrap(fast, opts),
		Score:    Wrap(score, opts),
		Ledger:   ledger,
	}, nil
}

func (f *Factory) options(sel Selector, ledger *Ledger) Options {
	pc := f.cfg.Provider

	retry := resilience.DefaultRetryConfig()
	if pc.RetryMaxAttempts > 0 {
		retry.MaxAttempts = pc.RetryMaxAttempts
	}
	if pc.RetryInitialBackoffMs > 0 {
		retry.InitialBackoff = time.Duration(pc.RetryInitialBackoffMs) * time.Millisecond
	}
	if pc.RetryMaxBackoffMs > 0 {
		retry.MaxBackoff = time.Duration(pc.RetryMaxBackoffMs) * time.Millisecond
	}

	breaker := resilience.DefaultBreakerConfig()
	if pc.CircuitFailureThreshold > 0 {
		breaker.FailureThreshold = pc.CircuitFailureThreshold
	}
	if pc.CircuitResetSecs > 0 {
		breaker.ResetTimeout = time.Duration(pc.CircuitResetSecs) * time.Second
	}
	breaker.ShouldTrip = shouldTrip
	breaker.OnStateChange = func(from, to resilience.CircuitState) {
		zap.L().Warn("llm: circuit breaker state change",
			zap.String("provider", string(sel)),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	}

	var limiter *rate.Limiter
	if pc.RequestsPerSecond > 0 {
		burst := pc.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(pc.RequestsPerSecond), burst)
	}

	return Options{
		Limiter: limiter,
		Breaker: resilience.NewCircuitBreaker(breaker),
		Retry:   retry,
		Metrics: f.metrics,
		Ledger:  ledger,
		Timeout: time.Duration(pc.CallTimeoutSecs) * time.Second,
	}
}
