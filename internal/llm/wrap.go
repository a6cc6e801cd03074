package llm

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/nationwide-haul/call-tracker/internal/metrics"
	"github.com/nationwide-haul/call-tracker/internal/resilience"
)

// Options configures the layers Wrap puts around a Backend. Every field is
// optional.
type Options struct {
	Limiter *rate.Limiter
	Breaker *resilience.CircuitBreaker
	Retry   resilience.RetryConfig
	Metrics *metrics.Metrics
	Ledger  *Ledger

	// Timeout bounds a single attempt. Zero means only ctx bounds it.
	Timeout time.Duration
}

type wrapped struct {
	backend Backend
	opts    Options
}

// Wrap returns a Provider that calls b through, outermost first: the rate
// limiter, the circuit breaker and the retry loop. Every attempt is timed,
// counted and priced.
func Wrap(b Backend, opts Options) Provider {
	if opts.Retry.OnRetry == nil {
		opts.Retry.OnRetry = resilience.RetryLogger(b.Name(), b.Model())
	}
	return &wrapped{backend: b, opts: opts}
}

func (w *wrapped) Model() string { return w.backend.Model() }

func (w *wrapped) Call(ctx context.Context, prompt string, maxTokens int64) (string, error) {
	if w.opts.Limiter != nil {
		if err := w.opts.Limiter.Wait(ctx); err != nil {
			return "", eris.Wrap(err, "llm: rate limit wait")
		}
	}

	attempt := func(ctx context.Context) (string, error) {
		return w.attempt(ctx, prompt, maxTokens)
	}
	call := func(ctx context.Context) (string, error) {
		return resilience.Retry(ctx, w.opts.Retry, attempt)
	}
	if w.opts.Breaker != nil {
		return resilience.Execute(ctx, w.opts.Breaker, call)
	}
	return call(ctx)
}

func (w *wrapped) attempt(ctx context.Context, prompt string, maxTokens int64) (string, error) {
	if w.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.opts.Timeout)
		defer cancel()
	}

	name, model := w.backend.Name(), w.backend.Model()
	start := time.Now()
	out, err := w.backend.Complete(ctx, prompt, maxTokens)
	elapsed := time.Since(start)

	if out.InputTokens > 0 || out.OutputTokens > 0 {
		usd := w.opts.Ledger.Record(name, model, out.InputTokens, out.OutputTokens)
		w.opts.Metrics.AddTokens(name, model, out.InputTokens, out.OutputTokens, usd)
	}

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	w.opts.Metrics.ObserveProviderCall(name, model, outcome, elapsed)

	zap.L().Debug("llm: provider call",
		zap.String("provider", name),
		zap.String("model", model),
		zap.Duration("elapsed", elapsed),
		zap.Int64("input_tokens", out.InputTokens),
		zap.Int64("output_tokens", out.OutputTokens),
		zap.Error(err),
	)

	if err != nil {
		return "", err
	}
	return out.Text, nil
}
