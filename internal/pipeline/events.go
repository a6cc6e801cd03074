package pipeline

import (
	"sync"

	"github.com/nationwide-haul/call-tracker/internal/model"
)

// EventType names a progress event on the wire.
type EventType string

const (
	EventStatus          EventType = "status"
	EventBronzeComplete  EventType = "bronze_complete"
	EventExtractProgress EventType = "extract_progress"
	EventSilverComplete  EventType = "silver_complete"
	EventExtractComplete EventType = "extract_complete"
	EventStart           EventType = "start"
	EventCallComplete    EventType = "call_complete"
	EventCallError       EventType = "call_error"
	EventComplete        EventType = "complete"
	EventError           EventType = "error"
)

// Event is one progress notification. Every concrete event marshals with a
// "type" field.
type Event interface {
	Kind() EventType
}

// Sink receives events. The pipeline never calls a Sink concurrently.
type Sink func(Event)

type header struct {
	Type EventType `json:"type"`
}

func (h header) Kind() EventType { return h.Type }

// Terminal reports whether e ends a run.
func Terminal(e Event) bool {
	k := e.Kind()
	return k == EventComplete || k == EventError
}

type StatusEvent struct {
	header
	Phase   string `json:"phase"`
	Message string `json:"message"`
}

type BronzeCompleteEvent struct {
	header
	Count             int    `json:"count"`
	SkippedShortCalls int    `json:"skippedShortCalls"`
	Message           string `json:"message,omitempty"`
}

// ProgressCall is the per-record summary carried by extract progress.
type ProgressCall struct {
	ID             string               `json:"id"`
	Classification model.Classification `json:"classification"`
	RepName        *string              `json:"repName"`
	CallerName     *string              `json:"callerName"`
	NeedSummary    string               `json:"needSummary"`
	Confidence     float64              `json:"confidence"`
}

type ExtractProgressEvent struct {
	header
	Processed      int                  `json:"processed"`
	Total          int                  `json:"total"`
	RepName        *string              `json:"repName"`
	Classification model.Classification `json:"classification"`
	Call           ProgressCall         `json:"call"`
}

type SilverCompleteEvent struct {
	header
	TotalCalls int      `json:"totalCalls"`
	ValidSales int      `json:"validSales"`
	Skipped    int      `json:"skipped"`
	UniqueReps []string `json:"uniqueReps"`
}

type ExtractCompleteEvent struct {
	header
	Stats   model.ExtractionStats `json:"stats"`
	Message string                `json:"message"`
}

type StartEvent struct {
	header
	TotalCalls int `json:"totalCalls"`
}

type CallCompleteEvent struct {
	header
	Call      model.AnalyzedCall `json:"call"`
	Processed int                `json:"processed"`
	Total     int                `json:"total"`
}

type CallErrorEvent struct {
	header
	Error     string `json:"error"`
	CallID    string `json:"callId"`
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
}

// CompleteEvent carries a *model.AnalysisResult or a
// *model.ExtractionResult.
type CompleteEvent struct {
	header
	Result any `json:"result"`
}

type ErrorEvent struct {
	header
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func newStatus(phase, msg string) StatusEvent {
	return StatusEvent{header: header{EventStatus}, Phase: phase, Message: msg}
}

// NewErrorEvent builds a terminal error event. Transports use it for input
// errors raised before a run starts.
func NewErrorEvent(message, details string) ErrorEvent {
	return ErrorEvent{header: header{EventError}, Message: message, Details: details}
}

func progressEvent(processed, total int, c model.SilverCall) ExtractProgressEvent {
	return ExtractProgressEvent{
		header:         header{EventExtractProgress},
		Processed:      processed,
		Total:          total,
		RepName:        c.Rep.Name,
		Classification: c.Triage.Classification,
		Call: ProgressCall{
			ID:             c.Bronze.ID,
			Classification: c.Triage.Classification,
			RepName:        c.Rep.Name,
			CallerName:     c.Caller.Name,
			NeedSummary:    c.CallContext.NeedSummary,
			Confidence:     c.Validation.Confidence,
		},
	}
}

// serialize wraps sink so concurrent emitters deliver one event at a time.
// A nil sink discards events.
func serialize(sink Sink) Sink {
	if sink == nil {
		return func(Event) {}
	}
	var mu sync.Mutex
	return func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		sink(e)
	}
}
