package pipeline

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/nationwide-haul/call-tracker/internal/model"
)

var exportHeader = []string{
	colAgentName, colAgentNumber, colCallStatus, colStartTime, colDuration,
	colTracking, colSource, colTranscript, colRecordingURL,
}

// exportRow is one spreadsheet row. Duration and StartSerial are written as
// numeric cells. A non-empty StartText replaces StartSerial with a text cell.
type exportRow struct {
	Agent       string
	Status      string
	StartSerial float64
	StartText   string
	Duration    float64
	Tracking    string
	Source      string
	Transcript  string
}

func buildExport(t *testing.T, sheet string, rows ...exportRow) []byte {
	t.Helper()

	f := xlsx.NewFile()
	sh, err := f.AddSheet(sheet)
	require.NoError(t, err)

	hdr := sh.AddRow()
	for _, h := range exportHeader {
		hdr.AddCell().SetString(h)
	}
	for _, r := range rows {
		row := sh.AddRow()
		row.AddCell().SetString(r.Agent)
		row.AddCell().SetString("")
		row.AddCell().SetString(r.Status)
		if r.StartText != "" {
			row.AddCell().SetString(r.StartText)
		} else {
			row.AddCell().SetFloat(r.StartSerial)
		}
		row.AddCell().SetFloat(r.Duration)
		row.AddCell().SetString(r.Tracking)
		row.AddCell().SetString(r.Source)
		row.AddCell().SetString(r.Transcript)
		row.AddCell().SetString("")
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

// salesTranscript is long enough to pass triage heuristics and the short
// transcript check. tag makes it unique.
func salesTranscript(tag string) string {
	return fmt.Sprintf("Agent: Nationwide, this is Matt. How can I help? Caller: Hi, I'm calling about a "+
		"dump trailer for my business in Dallas. [%s] ", tag) + strings.Repeat("We haul gravel every day. ", 8)
}

func ptr(s string) *string { return &s }

func fixedNow() time.Time {
	return time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
}

func silverCall(id, rep string, class model.Classification) model.SilverCall {
	sc := model.SilverCall{
		Bronze: model.BronzeCall{
			ID:              id,
			RawAgentName:    "Agent",
			DurationSeconds: 125,
			StartTime:       "2025-03-15 09:30",
			Transcript:      salesTranscript(id),
		},
		Triage:      model.NewTriageResult(class, 0.9, ""),
		CallContext: model.EmptyExtraction().CallContext,
	}
	if rep != "" {
		sc.Rep.Name = ptr(rep)
	}
	return sc
}

func collect() (Sink, *[]Event) {
	var events []Event
	return func(e Event) { events = append(events, e) }, &events
}

func eventsOf[T Event](events []Event) []T {
	var out []T
	for _, e := range events {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func terminalCount(events []Event) int {
	n := 0
	for _, e := range events {
		if Terminal(e) {
			n++
		}
	}
	return n
}

const scoreJSON = `{
  "repInfo": {"name": "Jake", "introducedProperly": true},
  "callerInfo": {"name": "Tom Reyes", "company": "Reyes Hauling", "location": "Dallas, TX", "phone": null, "needSummary": "Needs a dump trailer"},
  "leadQuality": {"score": 8, "timeline": "near-term", "hasAuthority": true, "needIdentified": true, "serviceFit": "good", "redFlags": [], "recommendedAction": "follow-24hr", "notes": "owner"},
  "callContext": {"type": "inbound", "score": 7, "notes": ""},
  "objectiveClarity": {"score": 8, "notes": ""},
  "informationGathering": {"businessType": true, "decisionMaker": true, "timeline": true, "budgetIntent": false, "loadDetails": true, "score": 7, "notes": ""},
  "informationQuality": {"score": 6, "notes": ""},
  "toneProfessionalism": {"score": 9, "fillerWords": false, "unprofessionalLanguage": false, "notes": ""},
  "listeningRatio": {"score": 7, "estimatedRatio": "40/60", "notes": ""},
  "conversationGuidance": {"score": 6, "notes": ""},
  "objectionHandling": {"score": 5, "objectionsRaised": ["price"], "notes": ""},
  "nextSteps": {"score": 8, "stepsSet": ["send quote"], "notes": ""},
  "callClosing": {"outcome": "follow-up", "score": 7, "notes": ""},
  "strengths": ["Friendly tone"],
  "weaknesses": ["No budget question"],
  "coachingInsights": ["Ask about budget"],
  "internalAlerts": []
}`
