package pipeline

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/nationwide-haul/call-tracker/internal/fetcher"
	"github.com/nationwide-haul/call-tracker/internal/model"
)

// callsSheet is preferred over the first sheet when present.
const callsSheet = "Calls"

// Column headers of the call-tracking export.
const (
	colAgentName    = "Agent Name"
	colAgentNumber  = "Agent Number"
	colCallStatus   = "Call Status"
	colStartTime    = "Start Time"
	colDuration     = "Duration (seconds)"
	colTracking     = "Tracking Number"
	colSource       = "Source"
	colTranscript   = "Full Transcription"
	colRecordingURL = "Recording Url"
	colSentiment    = "Sentiment"
	colNumberName   = "Number Name"
	colMedium       = "Medium"
	colCampaign     = "Campaign"
	colNote         = "Note"
	colAttribution  = "Reported Attribution"
)

// startTimeLayout is the canonical Bronze start time form.
const startTimeLayout = "2006-01-02 15:04"

// startTimeInputs are the text forms exports write start times in.
var startTimeInputs = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"2006-01-02",
	"1/2/2006",
}

// newRunID stamps the IDs of one parse. Replaced in tests.
var newRunID = uuid.NewString

// ParseBronze converts workbook bytes into Bronze calls in sheet order.
// Blank and missing cells default to "" or 0.
func ParseBronze(data []byte) ([]model.BronzeCall, error) {
	tbl, err := fetcher.ReadXLSX(data, callsSheet)
	if err != nil {
		return nil, eris.Wrap(err, "parse: read workbook")
	}

	runID := newRunID()
	col := func(name string) int { return tbl.Column(name) }
	cols := struct {
		agent, agentNum, status, start, duration, tracking, source, transcript,
		recording, sentiment, numberName, medium, campaign, note, attribution int
	}{
		col(colAgentName), col(colAgentNumber), col(colCallStatus), col(colStartTime),
		col(colDuration), col(colTracking), col(colSource), col(colTranscript),
		col(colRecordingURL), col(colSentiment), col(colNumberName), col(colMedium),
		col(colCampaign), col(colNote), col(colAttribution),
	}

	calls := make([]model.BronzeCall, 0, len(tbl.Rows))
	for r := range tbl.Rows {
		text := func(c int) string { return strings.TrimSpace(tbl.Cell(r, c).Text) }

		calls = append(calls, model.BronzeCall{
			ID:              fmt.Sprintf("bronze-%d-%s", r+1, runID),
			RawAgentName:    text(cols.agent),
			RawAgentNumber:  text(cols.agentNum),
			CallStatus:      text(cols.status),
			StartTime:       parseStartTime(tbl, tbl.Cell(r, cols.start)),
			DurationSeconds: parseDuration(tbl.Cell(r, cols.duration)),
			TrackingNumber:  text(cols.tracking),
			Source:          text(cols.source),
			Transcript:      tbl.Cell(r, cols.transcript).Text,
			RecordingURL:    text(cols.recording),
			Sentiment:       text(cols.sentiment),
			NumberName:      text(cols.numberName),
			Medium:          text(cols.medium),
			Campaign:        text(cols.campaign),
			Note:            text(cols.note),
			Attribution:     text(cols.attribution),
		})
	}
	return calls, nil
}

// parseStartTime renders serial and text dates in startTimeLayout. Text in
// no known layout is kept trimmed.
func parseStartTime(tbl *fetcher.Table, c fetcher.Cell) string {
	if c.Numeric {
		return tbl.Time(c.Number).Format(startTimeLayout)
	}
	raw := strings.TrimSpace(c.Text)
	for _, layout := range startTimeInputs {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(startTimeLayout)
		}
	}
	return raw
}

// parseDuration truncates to whole seconds. Non-numeric and negative
// values read as 0.
func parseDuration(c fetcher.Cell) int {
	n := c.Number
	if !c.Numeric {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(c.Text), 64)
		if err != nil {
			return 0
		}
		n = parsed
	}
	if math.IsNaN(n) || math.IsInf(n, 0) || n <= 0 {
		return 0
	}
	return int(n)
}

// FilterShortCalls drops calls shorter than minSeconds and reports how many
// were dropped.
func FilterShortCalls(calls []model.BronzeCall, minSeconds int) ([]model.BronzeCall, int) {
	kept := make([]model.BronzeCall, 0, len(calls))
	for _, c := range calls {
		if c.DurationSeconds >= minSeconds {
			kept = append(kept, c)
		}
	}
	return kept, len(calls) - len(kept)
}
