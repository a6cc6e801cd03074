package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/nationwide-haul/call-tracker/internal/metrics"
	"github.com/nationwide-haul/call-tracker/internal/model"
)

var (
	// ErrNoCalls means the spreadsheet had no calls left after parsing and
	// the duration filter.
	ErrNoCalls = eris.New("pipeline: no calls found")
	// ErrNoValidSales means triage found nothing worth scoring.
	ErrNoValidSales = eris.New("pipeline: no valid sales calls")
	// ErrNoScoredCalls means every scoring attempt failed.
	ErrNoScoredCalls = eris.New("pipeline: no calls scored")
)

// GoldStage scores Silver calls.
type GoldStage struct {
	scorer    *Scorer
	metrics   *metrics.Metrics
	batchSize int
	aiModel   string
	now       func() time.Time
}

// ScoreBatch scores every Silver call that triage cleared for analysis.
// Results keep input order; events are emitted in completion order with a
// strictly increasing processed count. Individual failures become
// call_error events. It returns ErrNoValidSales when nothing was eligible
// and ErrNoScoredCalls when nothing succeeded.
func (g *GoldStage) ScoreBatch(ctx context.Context, silver []model.SilverCall, emit Sink) ([]model.AnalyzedCall, error) {
	if emit == nil {
		emit = func(Event) {}
	}

	eligible := make([]model.SilverCall, 0, len(silver))
	for _, sc := range silver {
		if sc.Triage.ShouldAnalyze() {
			eligible = append(eligible, sc)
		}
	}
	if len(eligible) == 0 {
		return nil, ErrNoValidSales
	}

	results := make([]*model.AnalyzedCall, len(eligible))
	total := len(eligible)
	processed, failed := 0, 0

	err := runBatches(ctx, eligible, g.batchSize,
		g.scoreOne,
		func(i int, call model.AnalyzedCall, err error) {
			processed++
			g.metrics.CallScored(err == nil)
			if err != nil {
				failed++
				zap.L().Warn("gold: call scoring failed",
					zap.String("call_id", eligible[i].Bronze.ID),
					zap.Error(err),
				)
				emit(CallErrorEvent{
					header:    header{EventCallError},
					Error:     err.Error(),
					CallID:    eligible[i].Bronze.ID,
					Processed: processed,
					Total:     total,
				})
				return
			}
			results[i] = &call
			emit(CallCompleteEvent{
				header:    header{EventCallComplete},
				Call:      call,
				Processed: processed,
				Total:     total,
			})
		},
	)
	if err != nil {
		return nil, err
	}

	out := make([]model.AnalyzedCall, 0, total-failed)
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoScoredCalls
	}

	zap.L().Info("gold: scoring complete",
		zap.Int("scored", len(out)),
		zap.Int("failed", failed),
	)
	return out, nil
}

func (g *GoldStage) scoreOne(ctx context.Context, sc model.SilverCall) (model.AnalyzedCall, error) {
	score, err := g.scorer.Score(ctx, sc)
	if err != nil {
		return model.AnalyzedCall{}, err
	}
	return model.AnalyzedCall{
		Record:     SilverToCallRecord(sc),
		Score:      score,
		AIModel:    g.aiModel,
		AnalyzedAt: g.now().UTC(),
	}, nil
}
