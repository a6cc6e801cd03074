package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nationwide-haul/call-tracker/internal/model"
	"github.com/nationwide-haul/call-tracker/internal/roster"
)

func newTestSilverStage(p *mockProvider, batch int) *SilverStage {
	r := roster.Default()
	return &SilverStage{
		triager:   NewTriager(p),
		extractor: NewExtractor(p, r),
		roster:    r,
		batchSize: batch,
		model:     p.Model(),
		now:       fixedNow,
	}
}

func bronze(id, transcript string) model.BronzeCall {
	return model.BronzeCall{ID: id, RawAgentName: "Agent 7", DurationSeconds: 90, Transcript: transcript}
}

func TestExtractBatch(t *testing.T) {
	p := new(mockProvider)
	p.On("Call", mock.Anything, triageCall, mock.Anything).
		Return(`{"classification": "valid_sales", "confidence": 0.9, "reason": "sales"}`, nil)
	p.On("Call", mock.Anything, extractCall, mock.Anything).
		Return(`{"rep": {"name": "matt"}, "caller": {"location": "Dallas, TX"}, "callContext": {"type": "outbound"}}`, nil)

	calls := []model.BronzeCall{
		bronze("b1", salesTranscript("one")),
		bronze("b2", "too short"),
		bronze("b3", "Thank you for calling, for a full list of inventory please visit www.example.com"),
		bronze("b4", salesTranscript("four")),
	}

	var processed []int
	out, err := newTestSilverStage(p, 2).ExtractBatch(context.Background(), calls, func(n, total int, _ model.SilverCall) {
		assert.Equal(t, 4, total)
		processed = append(processed, n)
	})
	require.NoError(t, err)
	require.Len(t, out, 4)

	assert.Equal(t, []int{1, 2, 3, 4}, processed)
	for i, c := range out {
		assert.Equal(t, calls[i].ID, c.Bronze.ID, "output keeps input order")
		assert.Equal(t, fixedNow(), c.ExtractedAt)
		assert.Equal(t, "claude-3-5-haiku-20241022", c.ExtractionModel)
	}

	assert.Equal(t, model.ClassValidSales, out[0].Triage.Classification)
	assert.Equal(t, "Matt", model.Deref(out[0].Rep.Name))
	assert.True(t, out[0].Validation.IsValid)

	assert.Equal(t, model.ClassIncomplete, out[1].Triage.Classification)
	assert.Nil(t, out[1].Rep.Name)
	assert.True(t, out[1].Validation.HasIssue(model.IssueNoRepName), "validation runs on skipped calls")

	assert.Equal(t, model.ClassIVROnly, out[2].Triage.Classification)

	// Two triage calls and two extraction calls; heuristics handled the rest.
	p.AssertNumberOfCalls(t, "Call", 4)
}

func TestExtractBatch_Empty(t *testing.T) {
	out, err := newTestSilverStage(new(mockProvider), 10).ExtractBatch(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestComputeExtractionStats(t *testing.T) {
	calls := []model.SilverCall{
		silverCall("1", "Matt", model.ClassValidSales),
		silverCall("2", "", model.ClassValidSales),
		silverCall("3", "Brian", model.ClassValidSales),
		silverCall("4", "Matt", model.ClassValidSales),
		silverCall("5", "", model.ClassIVROnly),
		silverCall("6", "", model.ClassSpam),
		silverCall("7", "", model.ClassIncomplete),
		silverCall("8", "", model.ClassWrongNumber),
	}
	for i := range calls {
		calls[i].Validation.Confidence = 0.5
	}
	calls[0].Validation.Confidence = 0.9

	stats := ComputeExtractionStats(calls)

	assert.Equal(t, 8, stats.TotalCalls)
	assert.Equal(t, 4, stats.ValidSales)
	assert.Equal(t, 1, stats.IVROnly)
	assert.Equal(t, 1, stats.Spam)
	assert.Equal(t, 1, stats.Incomplete)
	assert.Equal(t, []string{"Brian", "Matt"}, stats.UniqueReps)
	assert.Equal(t, 75, stats.ExtractionSuccessRate)
	assert.Equal(t, 0.55, stats.AvgConfidence)

	empty := ComputeExtractionStats(nil)
	assert.Equal(t, 0, empty.ExtractionSuccessRate)
	assert.NotNil(t, empty.UniqueReps)
}

func TestUniqueRepNames_FirstSeenOrder(t *testing.T) {
	calls := []model.SilverCall{
		silverCall("1", "Sean", model.ClassValidSales),
		silverCall("2", "Matt", model.ClassSpam),
		silverCall("3", "Sean", model.ClassValidSales),
		silverCall("4", "", model.ClassValidSales),
	}
	assert.Equal(t, []string{"Sean", "Matt"}, uniqueRepNames(calls))
}

func TestSilverToCallRecord(t *testing.T) {
	sc := silverCall("b1", "Matt", model.ClassValidSales)
	sc.Bronze.DurationSeconds = 65
	sc.Bronze.TrackingNumber = "(214) 555-0100"
	sc.Caller.Name = ptr("Tom")
	sc.CallContext.Type = model.DirectionInbound

	rec := SilverToCallRecord(sc)
	assert.Equal(t, "b1", rec.ID)
	assert.Equal(t, "Matt", rec.RepName)
	assert.Equal(t, "1:05", rec.CallDuration)
	assert.Equal(t, "Tom", rec.CustomerName)
	assert.Equal(t, "inbound", rec.Direction)
	assert.Equal(t, "(214) 555-0100", rec.PhoneNumber)

	sc.Rep.Name = nil
	assert.Equal(t, "Agent", SilverToCallRecord(sc).RepName)
	sc.Bronze.RawAgentName = ""
	assert.Equal(t, "Unknown", SilverToCallRecord(sc).RepName)
}

func TestFormatDuration(t *testing.T) {
	for secs, want := range map[int]string{0: "0:00", 5: "0:05", 60: "1:00", 3725: "62:05", -3: "0:00"} {
		assert.Equal(t, want, formatDuration(secs), fmt.Sprint(secs))
	}
}
