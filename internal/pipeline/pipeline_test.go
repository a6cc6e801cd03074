package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nationwide-haul/call-tracker/internal/llm"
	"github.com/nationwide-haul/call-tracker/internal/metrics"
	"github.com/nationwide-haul/call-tracker/internal/model"
)

func newTestPipeline(fast, score *mockProvider, m *metrics.Metrics) *Pipeline {
	p := New(&llm.Providers{
		Selector: llm.SelectorClaude,
		Fast:     fast,
		Score:    score,
		Ledger:   llm.NewLedger(nil),
	}, nil, m, Options{BatchSize: 10, MinDurationSecs: 5})
	p.silver.now = fixedNow
	p.gold.now = fixedNow
	return p
}

func validTriage(p *mockProvider) {
	p.On("Call", mock.Anything, triageCall, mock.Anything).
		Return(`{"classification": "valid_sales", "confidence": 0.9}`, nil)
	p.On("Call", mock.Anything, extractCall, mock.Anything).
		Return(`{"rep": {"name": "Matt", "introducedProperly": true}, "callContext": {"type": "outbound"}}`, nil)
}

func TestAnalyze(t *testing.T) {
	fast, score := new(mockProvider), new(mockProvider)
	validTriage(fast)
	score.On("Call", mock.Anything, scoreCall, mock.Anything).Return(scoreJSON, nil)

	data := buildExport(t, "Calls",
		exportRow{Agent: "Matt", Duration: 120, Transcript: salesTranscript("one")},
		exportRow{Agent: "Matt", Duration: 3, Transcript: salesTranscript("hangup")},
		exportRow{Agent: "Brian", Duration: 60, Transcript: "Thank you for calling, for a full list of inventory please visit www.nwh.com"},
		exportRow{Agent: "Matt", Duration: 300, Transcript: salesTranscript("two")},
	)

	m := metrics.New()
	sink, events := collect()
	result, err := newTestPipeline(fast, score, m).Analyze(context.Background(), data, sink)
	require.NoError(t, err)

	require.Len(t, result.Calls, 2)
	for _, c := range result.Calls {
		assert.Equal(t, "Matt", model.Deref(c.Score.RepInfo.Name))
		assert.NotContains(t, c.Record.Transcript, "[hangup]")
	}
	require.Len(t, result.RepSummaries, 1)
	assert.Equal(t, "Matt", result.RepSummaries[0].RepName)
	assert.Equal(t, "Matt", result.OverallStats.TopPerformer)
	assert.Equal(t, 3, result.OverallStats.TotalInFile)
	assert.Equal(t, 1, result.OverallStats.IVRCalls)

	fast.AssertNotCalled(t, "Call", mock.Anything, promptContaining("[hangup]"), mock.Anything)

	bronze := eventsOf[BronzeCompleteEvent](*events)
	require.Len(t, bronze, 1)
	assert.Equal(t, 3, bronze[0].Count)
	assert.Equal(t, 1, bronze[0].SkippedShortCalls)

	progress := eventsOf[ExtractProgressEvent](*events)
	require.Len(t, progress, 3)
	for i, e := range progress {
		assert.Equal(t, i+1, e.Processed)
	}

	silver := eventsOf[SilverCompleteEvent](*events)
	require.Len(t, silver, 1)
	assert.Equal(t, 2, silver[0].ValidSales)
	assert.Equal(t, 1, silver[0].Skipped)
	assert.Equal(t, []string{"Matt"}, silver[0].UniqueReps)

	starts := eventsOf[StartEvent](*events)
	require.Len(t, starts, 1)
	assert.Equal(t, 2, starts[0].TotalCalls)

	statuses := eventsOf[StatusEvent](*events)
	require.Len(t, statuses, 3)
	assert.Equal(t, "Parsing Excel file...", statuses[0].Message)
	assert.Equal(t, "Extracting contact info from 3 calls...", statuses[1].Message)
	assert.Equal(t, "Analyzing 2 sales calls with claude...", statuses[2].Message)

	last := (*events)[len(*events)-1]
	require.IsType(t, CompleteEvent{}, last)
	assert.Same(t, result, last.(CompleteEvent).Result)
	assert.Equal(t, 1, terminalCount(*events))

	n, err := testutil.GatherAndCount(m.Registry(), "calltracker_runs_total", "calltracker_calls_scored_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestAnalyze_AllCallsTooShort(t *testing.T) {
	fast, score := new(mockProvider), new(mockProvider)
	data := buildExport(t, "Calls", exportRow{Agent: "Matt", Duration: 2, Transcript: salesTranscript("x")})

	sink, events := collect()
	_, err := newTestPipeline(fast, score, nil).Analyze(context.Background(), data, sink)

	assert.ErrorIs(t, err, ErrNoCalls)
	require.Len(t, *events, 2)
	ev, ok := (*events)[1].(ErrorEvent)
	require.True(t, ok)
	assert.Equal(t, "No calls found in file (or all calls were under 5 seconds)", ev.Message)
	fast.AssertNotCalled(t, "Call", mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyze_NoValidSales(t *testing.T) {
	fast, score := new(mockProvider), new(mockProvider)
	fast.On("Call", mock.Anything, triageCall, mock.Anything).Return(`{"classification": "spam"}`, nil)
	data := buildExport(t, "Calls", exportRow{Agent: "Matt", Duration: 30, Transcript: salesTranscript("x")})

	sink, events := collect()
	_, err := newTestPipeline(fast, score, nil).Analyze(context.Background(), data, sink)

	assert.ErrorIs(t, err, ErrNoValidSales)
	last := (*events)[len(*events)-1].(ErrorEvent)
	assert.Equal(t, "No valid sales calls found to analyze", last.Message)
	assert.Equal(t, 1, terminalCount(*events))
	score.AssertNotCalled(t, "Call", mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyze_ZeroScoredIsDistinctFromPartial(t *testing.T) {
	fast, score := new(mockProvider), new(mockProvider)
	validTriage(fast)
	score.On("Call", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("401 invalid key"))
	data := buildExport(t, "Calls",
		exportRow{Agent: "Matt", Duration: 30, Transcript: salesTranscript("a")},
		exportRow{Agent: "Matt", Duration: 30, Transcript: salesTranscript("b")},
	)

	sink, events := collect()
	_, err := newTestPipeline(fast, score, nil).Analyze(context.Background(), data, sink)

	assert.ErrorIs(t, err, ErrNoScoredCalls)
	assert.Len(t, eventsOf[CallErrorEvent](*events), 2)
	last := (*events)[len(*events)-1].(ErrorEvent)
	assert.Equal(t, "Failed to analyze any calls. Please check your API key.", last.Message)
	assert.Equal(t, 1, terminalCount(*events))
}

func TestAnalyze_PartialSuccessCompletes(t *testing.T) {
	fast, score := new(mockProvider), new(mockProvider)
	validTriage(fast)
	score.On("Call", mock.Anything, both("You coach sales reps", "[bad]"), mock.Anything).Return("not json", nil)
	score.On("Call", mock.Anything, scoreCall, mock.Anything).Return(scoreJSON, nil)
	data := buildExport(t, "Calls",
		exportRow{Agent: "Matt", Duration: 30, Transcript: salesTranscript("good")},
		exportRow{Agent: "Matt", Duration: 30, Transcript: salesTranscript("bad")},
	)

	sink, events := collect()
	result, err := newTestPipeline(fast, score, nil).Analyze(context.Background(), data, sink)
	require.NoError(t, err)

	assert.Len(t, result.Calls, 1)
	assert.Len(t, eventsOf[CallErrorEvent](*events), 1)
	assert.IsType(t, CompleteEvent{}, (*events)[len(*events)-1])
}

func TestAnalyze_BadWorkbook(t *testing.T) {
	sink, events := collect()
	_, err := newTestPipeline(new(mockProvider), new(mockProvider), nil).Analyze(context.Background(), []byte("garbage"), sink)

	require.Error(t, err)
	last := (*events)[len(*events)-1].(ErrorEvent)
	assert.Equal(t, "Failed to analyze calls", last.Message)
	assert.NotEmpty(t, last.Details)
}

func TestAnalyze_PanicBecomesErrorEvent(t *testing.T) {
	data := buildExport(t, "Calls", exportRow{Agent: "Matt", Duration: 30, Transcript: salesTranscript("x")})

	var events []Event
	sink := func(e Event) {
		events = append(events, e)
		if e.Kind() == EventBronzeComplete {
			panic("display layer exploded")
		}
	}
	_, err := newTestPipeline(new(mockProvider), new(mockProvider), nil).Analyze(context.Background(), data, sink)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "display layer exploded")
	require.NotEmpty(t, events)
	last, ok := events[len(events)-1].(ErrorEvent)
	require.True(t, ok)
	assert.Equal(t, "Failed to analyze calls", last.Message)
	assert.Equal(t, 1, terminalCount(events))
}

func TestAnalyze_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	data := buildExport(t, "Calls", exportRow{Agent: "Matt", Duration: 30, Transcript: salesTranscript("x")})

	sink, events := collect()
	_, err := newTestPipeline(new(mockProvider), new(mockProvider), nil).Analyze(ctx, data, sink)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, terminalCount(*events))
}

func TestPipeline_Extract(t *testing.T) {
	fast := new(mockProvider)
	validTriage(fast)
	data := buildExport(t, "Calls",
		exportRow{Agent: "Matt", Duration: 2, Transcript: salesTranscript("short-but-kept")},
		exportRow{Agent: "Matt", Duration: 90, Transcript: "hello?"},
	)

	sink, events := collect()
	result, err := newTestPipeline(fast, new(mockProvider), nil).Extract(context.Background(), data, sink)
	require.NoError(t, err)

	require.Len(t, result.Calls, 2)
	assert.Equal(t, 1, result.Stats.ValidSales)
	assert.Equal(t, 1, result.Stats.Incomplete)
	assert.Equal(t, []string{"Matt"}, result.Stats.UniqueReps)

	bronze := eventsOf[BronzeCompleteEvent](*events)
	require.Len(t, bronze, 1)
	assert.Equal(t, "Found 2 calls in Excel file", bronze[0].Message)

	done := eventsOf[ExtractCompleteEvent](*events)
	require.Len(t, done, 1)
	assert.Equal(t, "Extraction complete: 1 valid sales calls, 1 reps identified", done[0].Message)

	assert.IsType(t, CompleteEvent{}, (*events)[len(*events)-1])
	assert.Equal(t, 1, terminalCount(*events))
}

func TestPipeline_ExtractNoCalls(t *testing.T) {
	sink, events := collect()
	_, err := newTestPipeline(new(mockProvider), new(mockProvider), nil).Extract(context.Background(), buildExport(t, "Calls"), sink)

	assert.ErrorIs(t, err, ErrNoCalls)
	last := (*events)[len(*events)-1].(ErrorEvent)
	assert.Equal(t, "No calls found in file", last.Message)
}
