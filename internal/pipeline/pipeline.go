// Package pipeline turns a call-tracking spreadsheet into scored calls and
// rep summaries. Bronze is the parsed spreadsheet, Silver adds triage,
// contact extraction and validation, and Gold adds AI scoring with
// deterministic aggregation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/nationwide-haul/call-tracker/internal/llm"
	"github.com/nationwide-haul/call-tracker/internal/metrics"
	"github.com/nationwide-haul/call-tracker/internal/model"
	"github.com/nationwide-haul/call-tracker/internal/roster"
)

// DefaultMinDurationSecs is the shortest call an analyze run keeps.
const DefaultMinDurationSecs = 5

// Terminal error messages shown to users.
const (
	msgNoCallsInFile    = "No calls found in file"
	msgNoValidSales     = "No valid sales calls found to analyze"
	msgNoScoredCalls    = "Failed to analyze any calls. Please check your API key."
	msgAnalyzeFailed    = "Failed to analyze calls"
	msgExtractionFailed = "Extraction failed"
)

// Stage names for status events and metrics.
const (
	phaseBronze = "bronze"
	phaseSilver = "silver"
	phaseGold   = "gold"
)

// Options tunes a Pipeline.
type Options struct {
	BatchSize       int
	MinDurationSecs int
}

// Pipeline runs analyze and extract jobs for one credential. It holds no
// per-run state and may serve runs concurrently.
type Pipeline struct {
	silver   *SilverStage
	gold     *GoldStage
	selector llm.Selector
	roster   *roster.Roster
	metrics  *metrics.Metrics
	ledger   *llm.Ledger

	minDuration int
}

// New builds a Pipeline over the given providers. A nil roster uses the
// built-in one.
func New(p *llm.Providers, r *roster.Roster, m *metrics.Metrics, opts Options) *Pipeline {
	if r == nil {
		r = roster.Default()
	}
	if opts.BatchSize < 1 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.MinDurationSecs < 0 {
		opts.MinDurationSecs = DefaultMinDurationSecs
	}

	return &Pipeline{
		silver: &SilverStage{
			triager:   NewTriager(p.Fast),
			extractor: NewExtractor(p.Fast, r),
			roster:    r,
			metrics:   m,
			batchSize: opts.BatchSize,
			model:     p.Fast.Model(),
			now:       time.Now,
		},
		gold: &GoldStage{
			scorer:    NewScorer(p.Score),
			metrics:   m,
			batchSize: opts.BatchSize,
			aiModel:   string(p.Selector),
			now:       time.Now,
		},
		selector:    p.Selector,
		roster:      r,
		metrics:     m,
		ledger:      p.Ledger,
		minDuration: opts.MinDurationSecs,
	}
}

// run guards one job: it serializes the sink, guarantees exactly one
// terminal event and converts panics into a terminal error.
type run struct {
	emit       Sink
	terminated bool
}

func newRun(sink Sink) *run {
	r := &run{}
	r.emit = serialize(func(e Event) {
		if r.terminated {
			return
		}
		if Terminal(e) {
			r.terminated = true
		}
		if sink != nil {
			sink(e)
		}
	})
	return r
}

func (r *run) fail(message string, err error) {
	details := ""
	if err != nil {
		details = err.Error()
	}
	r.emit(NewErrorEvent(message, details))
}

func (r *run) guard(fallback string, errp *error) {
	rec := recover()
	if rec == nil {
		return
	}
	zap.L().Error("pipeline: run panicked", zap.Any("panic", rec))
	*errp = eris.Errorf("pipeline: panic: %v", rec)
	r.fail(fallback, *errp)
}

// Analyze runs the full Bronze, Silver and Gold pipeline over workbook
// bytes. Every run ends with exactly one complete or error event. The
// returned error is one of ErrNoCalls, ErrNoValidSales, ErrNoScoredCalls
// or a wrapped parse or cancellation error.
func (p *Pipeline) Analyze(ctx context.Context, data []byte, sink Sink) (result *model.AnalysisResult, err error) {
	r := newRun(sink)
	done := p.metrics.RunStarted("analyze")
	defer func() {
		done(outcome(err))
		p.logUsage("analyze")
	}()
	defer r.guard(msgAnalyzeFailed, &err)

	// Bronze
	r.emit(newStatus(phaseBronze, "Parsing Excel file..."))
	start := time.Now()
	all, err := ParseBronze(data)
	if err != nil {
		r.fail(msgAnalyzeFailed, err)
		return nil, err
	}
	calls, skipped := FilterShortCalls(all, p.minDuration)
	p.metrics.ObserveStage(phaseBronze, time.Since(start))
	if len(calls) == 0 {
		r.fail(fmt.Sprintf("%s (or all calls were under %d seconds)", msgNoCallsInFile, p.minDuration), nil)
		return nil, ErrNoCalls
	}
	r.emit(BronzeCompleteEvent{header: header{EventBronzeComplete}, Count: len(calls), SkippedShortCalls: skipped})

	// Silver
	r.emit(newStatus(phaseSilver, fmt.Sprintf("Extracting contact info from %d calls...", len(calls))))
	start = time.Now()
	silver, err := p.silver.ExtractBatch(ctx, calls, func(processed, total int, c model.SilverCall) {
		r.emit(progressEvent(processed, total, c))
	})
	if err != nil {
		r.fail(msgAnalyzeFailed, err)
		return nil, err
	}
	p.metrics.ObserveStage(phaseSilver, time.Since(start))

	valid := 0
	for _, c := range silver {
		if c.Triage.ShouldAnalyze() {
			valid++
		}
	}
	r.emit(SilverCompleteEvent{
		header:     header{EventSilverComplete},
		TotalCalls: len(silver),
		ValidSales: valid,
		Skipped:    len(silver) - valid,
		UniqueReps: uniqueRepNames(silver),
	})
	if valid == 0 {
		r.fail(msgNoValidSales, nil)
		return nil, ErrNoValidSales
	}

	// Gold
	r.emit(newStatus(phaseGold, fmt.Sprintf("Analyzing %d sales calls with %s...", valid, p.selector)))
	r.emit(StartEvent{header: header{EventStart}, TotalCalls: valid})
	start = time.Now()
	analyzed, err := p.gold.ScoreBatch(ctx, silver, r.emit)
	p.metrics.ObserveStage(phaseGold, time.Since(start))
	switch {
	case errors.Is(err, ErrNoScoredCalls):
		r.fail(msgNoScoredCalls, nil)
		return nil, err
	case errors.Is(err, ErrNoValidSales):
		r.fail(msgNoValidSales, nil)
		return nil, err
	case err != nil:
		r.fail(msgAnalyzeFailed, err)
		return nil, err
	}

	summaries := BuildSummaries(analyzed, p.roster)
	result = &model.AnalysisResult{
		Calls:        analyzed,
		RepSummaries: summaries,
		OverallStats: BuildStats(analyzed, summaries, silver),
	}

	zap.L().Info("pipeline: analysis complete",
		zap.Int("in_file", len(all)),
		zap.Int("scored", len(analyzed)),
		zap.Int("failed", valid-len(analyzed)),
		zap.Int("reps", len(summaries)),
	)
	r.emit(CompleteEvent{header: header{EventComplete}, Result: result})
	return result, nil
}

// Extract runs Bronze and Silver only. Unlike Analyze it keeps calls of any
// duration.
func (p *Pipeline) Extract(ctx context.Context, data []byte, sink Sink) (result *model.ExtractionResult, err error) {
	r := newRun(sink)
	done := p.metrics.RunStarted("extract")
	defer func() {
		done(outcome(err))
		p.logUsage("extract")
	}()
	defer r.guard(msgExtractionFailed, &err)

	r.emit(newStatus(phaseBronze, "Parsing Excel file..."))
	start := time.Now()
	calls, err := ParseBronze(data)
	if err != nil {
		r.fail(msgExtractionFailed, err)
		return nil, err
	}
	p.metrics.ObserveStage(phaseBronze, time.Since(start))
	if len(calls) == 0 {
		r.fail(msgNoCallsInFile, nil)
		return nil, ErrNoCalls
	}
	r.emit(BronzeCompleteEvent{
		header:  header{EventBronzeComplete},
		Count:   len(calls),
		Message: fmt.Sprintf("Found %d calls in Excel file", len(calls)),
	})

	r.emit(newStatus(phaseSilver, "Extracting contact information..."))
	start = time.Now()
	silver, err := p.silver.ExtractBatch(ctx, calls, func(processed, total int, c model.SilverCall) {
		r.emit(progressEvent(processed, total, c))
	})
	if err != nil {
		r.fail(msgExtractionFailed, err)
		return nil, err
	}
	p.metrics.ObserveStage(phaseSilver, time.Since(start))

	stats := ComputeExtractionStats(silver)
	r.emit(ExtractCompleteEvent{
		header: header{EventExtractComplete},
		Stats:  stats,
		Message: fmt.Sprintf("Extraction complete: %d valid sales calls, %d reps identified",
			stats.ValidSales, len(stats.UniqueReps)),
	})

	result = &model.ExtractionResult{Calls: silver, Stats: stats}
	r.emit(CompleteEvent{header: header{EventComplete}, Result: result})
	return result, nil
}

func (p *Pipeline) logUsage(kind string) {
	if p.ledger == nil {
		return
	}
	u := p.ledger.Usage()
	zap.L().Info("pipeline: provider usage",
		zap.String("run", kind),
		zap.String("provider", string(p.selector)),
		zap.Int("calls", u.Calls),
		zap.Int64("input_tokens", u.InputTokens),
		zap.Int64("output_tokens", u.OutputTokens),
		zap.Float64("cost_usd", u.CostUSD),
	)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "complete"
	case errors.Is(err, ErrNoCalls), errors.Is(err, ErrNoValidSales):
		return "empty"
	case errors.Is(err, ErrNoScoredCalls):
		return "failed"
	default:
		return "error"
	}
}
