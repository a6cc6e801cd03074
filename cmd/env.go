package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/nationwide-haul/call-tracker/internal/cost"
	"github.com/nationwide-haul/call-tracker/internal/fetcher"
	"github.com/nationwide-haul/call-tracker/internal/llm"
	"github.com/nationwide-haul/call-tracker/internal/metrics"
	"github.com/nationwide-haul/call-tracker/internal/pipeline"
	"github.com/nationwide-haul/call-tracker/internal/roster"
)

// runEnv holds what every command builds from config before it runs.
type runEnv struct {
	Metrics *metrics.Metrics
	Factory *llm.Factory
	Roster  *roster.Roster
}

func initEnv() (*runEnv, error) {
	r, err := roster.Load(cfg.Roster.Path)
	if err != nil {
		return nil, eris.Wrap(err, "load roster")
	}
	m := metrics.New()
	return &runEnv{
		Metrics: m,
		Factory: llm.NewFactory(cfg, cost.NewCalculator(cost.Rates{}), m),
		Roster:  r,
	}, nil
}

// runOptions are the flags shared by analyze and extract.
type runOptions struct {
	file   string
	model  string
	apiKey string
	out    string
}

// pipeline builds providers for the selected model and a pipeline over them.
func (e *runEnv) pipeline(opts runOptions) (*pipeline.Pipeline, error) {
	name := opts.model
	if name == "" {
		name = cfg.Pipeline.DefaultModel
	}
	sel, err := llm.ParseSelector(name)
	if err != nil {
		return nil, err
	}

	key := opts.apiKey
	if key == "" {
		key = defaultKey(sel)
	}

	providers, err := e.Factory.New(sel, key)
	if err != nil {
		return nil, err
	}

	return pipeline.New(providers, e.Roster, e.Metrics, pipeline.Options{
		BatchSize:       cfg.Pipeline.BatchSize,
		MinDurationSecs: cfg.Pipeline.MinDurationSecs,
	}), nil
}

func defaultKey(sel llm.Selector) string {
	if sel == llm.SelectorOpenAI {
		return cfg.OpenAI.Key
	}
	return cfg.Anthropic.Key
}

func loadExport(ctx context.Context, src string) ([]byte, error) {
	return fetcher.Load(ctx, src, fetcher.NewHTTPFetcher(fetcher.HTTPOptions{}))
}

// logSink reports pipeline progress through the global logger.
func logSink(e pipeline.Event) {
	log := zap.L()
	switch ev := e.(type) {
	case pipeline.StatusEvent:
		log.Info(ev.Message, zap.String("phase", ev.Phase))
	case pipeline.BronzeCompleteEvent:
		log.Info("bronze complete", zap.Int("calls", ev.Count), zap.Int("skipped_short", ev.SkippedShortCalls))
	case pipeline.ExtractProgressEvent:
		log.Debug("extracted call",
			zap.String("call_id", ev.Call.ID),
			zap.String("classification", string(ev.Classification)),
			zap.Int("processed", ev.Processed),
			zap.Int("total", ev.Total),
		)
	case pipeline.SilverCompleteEvent:
		log.Info("silver complete",
			zap.Int("calls", ev.TotalCalls),
			zap.Int("valid_sales", ev.ValidSales),
			zap.Strings("reps", ev.UniqueReps),
		)
	case pipeline.ExtractCompleteEvent:
		log.Info(ev.Message)
	case pipeline.CallCompleteEvent:
		log.Info("scored call",
			zap.String("call_id", ev.Call.Record.ID),
			zap.Float64("score", ev.Call.Score.OverallScore),
			zap.Int("processed", ev.Processed),
			zap.Int("total", ev.Total),
		)
	case pipeline.CallErrorEvent:
		log.Warn("call failed", zap.String("call_id", ev.CallID), zap.String("error", ev.Error))
	case pipeline.ErrorEvent:
		log.Error(ev.Message, zap.String("details", ev.Details))
	}
}

// writeJSON writes v to path, or to w when path is empty or "-".
func writeJSON(w io.Writer, path string, v any) error {
	if path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrapf(err, "create %s", path)
		}
		defer f.Close() //nolint:errcheck
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(v), "encode result")
}
