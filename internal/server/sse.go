package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/nationwide-haul/call-tracker/internal/pipeline"
)

// eventStream writes server-sent events, one JSON object per data frame.
type eventStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newEventStream(w http.ResponseWriter) *eventStream {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	f, _ := w.(http.Flusher)
	return &eventStream{w: w, flusher: f}
}

// send writes one event and flushes it. Write errors mean the client went
// away; they are logged and otherwise ignored.
func (s *eventStream) send(e pipeline.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		zap.L().Error("server: encode event", zap.String("type", string(e.Kind())), zap.Error(err))
		return
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		zap.L().Debug("server: write event", zap.Error(err))
		return
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
}
