package pipeline

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/nationwide-haul/call-tracker/internal/metrics"
	"github.com/nationwide-haul/call-tracker/internal/model"
	"github.com/nationwide-haul/call-tracker/internal/roster"
)

// SilverStage runs triage, extraction and validation over Bronze calls.
type SilverStage struct {
	triager   *Triager
	extractor *Extractor
	roster    *roster.Roster
	metrics   *metrics.Metrics
	batchSize int
	model     string
	now       func() time.Time
}

// ProgressFunc observes each completed Silver record.
type ProgressFunc func(processed, total int, call model.SilverCall)

// ExtractBatch processes calls in batches and returns Silver records in
// input order. onProgress fires once per record in completion order with a
// strictly increasing processed count. Per-record failures degrade to
// defaults; only ctx cancellation between batches returns an error.
func (s *SilverStage) ExtractBatch(ctx context.Context, calls []model.BronzeCall, onProgress ProgressFunc) ([]model.SilverCall, error) {
	out := make([]model.SilverCall, len(calls))
	processed := 0

	err := runBatches(ctx, calls, s.batchSize,
		func(ctx context.Context, b model.BronzeCall) (model.SilverCall, error) {
			return s.process(ctx, b), nil
		},
		func(i int, sc model.SilverCall, err error) {
			if err != nil {
				zap.L().Error("silver: record failed, using defaults",
					zap.String("call_id", calls[i].ID),
					zap.Error(err),
				)
				sc = s.fallback(calls[i])
			}
			out[i] = sc
			processed++
			s.metrics.CallTriaged(string(sc.Triage.Classification))
			if onProgress != nil {
				onProgress(processed, len(calls), sc)
			}
		},
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// process runs one Bronze call through triage, extraction when triage
// allows it, and validation.
func (s *SilverStage) process(ctx context.Context, b model.BronzeCall) model.SilverCall {
	triage := s.triager.Triage(ctx, b.Transcript)

	ext := model.EmptyExtraction()
	if triage.ShouldAnalyze() {
		ext = s.extractor.Extract(ctx, b.Transcript)
	}

	validated, v := Validate(ext, b.Transcript, s.roster)

	zap.L().Debug("silver: call processed",
		zap.String("call_id", b.ID),
		zap.String("classification", string(triage.Classification)),
		zap.Float64("confidence", v.Confidence),
	)

	return s.assemble(b, triage, validated, v)
}

// fallback builds the record used when processing panicked.
func (s *SilverStage) fallback(b model.BronzeCall) model.SilverCall {
	ext := model.EmptyExtraction()
	validated, v := Validate(ext, b.Transcript, s.roster)
	return s.assemble(b, triageFallback(), validated, v)
}

func (s *SilverStage) assemble(b model.BronzeCall, t model.TriageResult, ext model.Extraction, v model.ExtractionValidation) model.SilverCall {
	return model.SilverCall{
		Bronze:          b,
		Triage:          t,
		Rep:             ext.Rep,
		Caller:          ext.Caller,
		CallContext:     ext.CallContext,
		Validation:      v,
		ExtractedAt:     s.now().UTC(),
		ExtractionModel: s.model,
	}
}

// ComputeExtractionStats summarizes a Silver run.
func ComputeExtractionStats(calls []model.SilverCall) model.ExtractionStats {
	stats := model.ExtractionStats{
		TotalCalls: len(calls),
		UniqueReps: []string{},
	}

	seen := make(map[string]bool)
	withRep, analyzable := 0, 0
	var confSum float64

	for _, c := range calls {
		switch c.Triage.Classification {
		case model.ClassValidSales:
			stats.ValidSales++
		case model.ClassIVROnly:
			stats.IVROnly++
		case model.ClassSpam:
			stats.Spam++
		case model.ClassIncomplete:
			stats.Incomplete++
		}
		if c.Triage.ShouldAnalyze() {
			analyzable++
		}
		if name := model.Deref(c.Rep.Name); name != "" {
			withRep++
			if !seen[name] {
				seen[name] = true
				stats.UniqueReps = append(stats.UniqueReps, name)
			}
		}
		confSum += c.Validation.Confidence
	}

	sort.Strings(stats.UniqueReps)
	if analyzable > 0 {
		stats.ExtractionSuccessRate = int(math.Round(float64(withRep) / float64(analyzable) * 100))
	}
	if len(calls) > 0 {
		stats.AvgConfidence = math.Round(confSum/float64(len(calls))*100) / 100
	}
	return stats
}

// uniqueRepNames lists extracted rep names in first-seen order.
func uniqueRepNames(calls []model.SilverCall) []string {
	names := []string{}
	seen := make(map[string]bool)
	for _, c := range calls {
		if name := model.Deref(c.Rep.Name); name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// SilverToCallRecord flattens a Silver call for display.
func SilverToCallRecord(s model.SilverCall) model.CallRecord {
	b := s.Bronze

	rep := model.Deref(s.Rep.Name)
	if rep == "" {
		rep = b.RawAgentName
	}
	if rep == "" {
		rep = "Unknown"
	}

	return model.CallRecord{
		ID:              b.ID,
		RepName:         rep,
		CallDate:        b.StartTime,
		CallDuration:    formatDuration(b.DurationSeconds),
		DurationSeconds: b.DurationSeconds,
		CustomerName:    model.Deref(s.Caller.Name),
		PhoneNumber:     b.TrackingNumber,
		Transcript:      b.Transcript,
		Notes:           b.Note,
		Outcome:         b.CallStatus,
		Direction:       string(s.CallContext.Type),
		Source:          b.Source,
		RecordingURL:    b.RecordingURL,
		CallerCompany:   model.Deref(s.Caller.Company),
		CallerLocation:  model.Deref(s.Caller.Location),
		CallerPhone:     model.Deref(s.Caller.Phone),
		NeedSummary:     s.CallContext.NeedSummary,
	}
}

// formatDuration renders seconds as M:SS.
func formatDuration(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
