// Package metrics exposes prometheus collectors for pipeline runs and model
// provider calls. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests and multiple servers in one
// process never collide on registration.
type Metrics struct {
	registry *prometheus.Registry

	providerRequests *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
	providerTokens   *prometheus.CounterVec
	providerCost     *prometheus.CounterVec

	callsTriaged *prometheus.CounterVec
	callsScored  *prometheus.CounterVec

	runs          *prometheus.CounterVec
	runsInFlight  prometheus.Gauge
	stageDuration *prometheus.HistogramVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		providerRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "calltracker_provider_requests_total",
				Help: "Model provider calls by provider, model and outcome",
			},
			[]string{"provider", "model", "outcome"},
		),
		providerLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "calltracker_provider_latency_seconds",
				Help:    "Model provider call latency",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
			},
			[]string{"provider", "model"},
		),
		providerTokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "calltracker_provider_tokens_total",
				Help: "Tokens consumed by direction (input, output)",
			},
			[]string{"provider", "model", "direction"},
		),
		providerCost: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "calltracker_provider_cost_usd_total",
				Help: "Estimated provider spend in USD",
			},
			[]string{"provider", "model"},
		),
		callsTriaged: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "calltracker_calls_triaged_total",
				Help: "Calls triaged by classification",
			},
			[]string{"classification"},
		),
		callsScored: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "calltracker_calls_scored_total",
				Help: "Gold scoring attempts by outcome (success, error)",
			},
			[]string{"outcome"},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "calltracker_runs_total",
				Help: "Pipeline runs by kind (analyze, extract) and terminal outcome",
			},
			[]string{"kind", "outcome"},
		),
		runsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "calltracker_runs_in_flight",
				Help: "Pipeline runs currently executing",
			},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "calltracker_stage_duration_seconds",
				Help:    "Wall time per pipeline stage (bronze, silver, gold, summary)",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
			},
			[]string{"stage"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.providerRequests,
		m.providerLatency,
		m.providerTokens,
		m.providerCost,
		m.callsTriaged,
		m.callsScored,
		m.runs,
		m.runsInFlight,
		m.stageDuration,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveProviderCall records one provider call.
func (m *Metrics) ObserveProviderCall(provider, model, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.providerRequests.WithLabelValues(provider, model, outcome).Inc()
	m.providerLatency.WithLabelValues(provider, model).Observe(d.Seconds())
}

// AddTokens records token usage and its estimated cost.
func (m *Metrics) AddTokens(provider, model string, input, output int64, usd float64) {
	if m == nil {
		return
	}
	m.providerTokens.WithLabelValues(provider, model, "input").Add(float64(input))
	m.providerTokens.WithLabelValues(provider, model, "output").Add(float64(output))
	if usd > 0 {
		m.providerCost.WithLabelValues(provider, model).Add(usd)
	}
}

// CallTriaged counts one triage decision.
func (m *Metrics) CallTriaged(classification string) {
	if m == nil {
		return
	}
	m.callsTriaged.WithLabelValues(classification).Inc()
}

// CallScored counts one scoring attempt.
func (m *Metrics) CallScored(ok bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "error"
	}
	m.callsScored.WithLabelValues(outcome).Inc()
}

// RunStarted marks a run in flight and returns a func that records its
// terminal outcome.
func (m *Metrics) RunStarted(kind string) func(outcome string) {
	if m == nil {
		return func(string) {}
	}
	m.runsInFlight.Inc()
	return func(outcome string) {
		m.runsInFlight.Dec()
		m.runs.WithLabelValues(kind, outcome).Inc()
	}
}

// ObserveStage records the duration of one pipeline stage.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}
