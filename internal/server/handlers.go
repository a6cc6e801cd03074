package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/nationwide-haul/call-tracker/internal/llm"
	"github.com/nationwide-haul/call-tracker/internal/pipeline"
)

// Input error messages, sent as the only event of a rejected run.
const (
	msgNoFile         = "No file provided"
	msgNoKey          = "API key is required"
	msgUnknownModel   = "Unsupported model"
	msgUploadTooLarge = "Upload could not be read"
	msgSetupFailed    = "Could not configure the AI provider"
)

var (
	// ErrNoFile means the form had no file part.
	ErrNoFile = eris.New("server: no file provided")
	// ErrNoCredential means the form had no API key.
	ErrNoCredential = eris.New("server: api key is required")
)

// runFunc is Pipeline.Analyze or Pipeline.Extract with the result dropped.
type runFunc func(ctx context.Context, p *pipeline.Pipeline, data []byte, sink pipeline.Sink) error

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"}) //nolint:errcheck
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	s.stream(w, r, "analyze", func(ctx context.Context, p *pipeline.Pipeline, data []byte, sink pipeline.Sink) error {
		_, err := p.Analyze(ctx, data, sink)
		return err
	})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	s.stream(w, r, "extract", func(ctx context.Context, p *pipeline.Pipeline, data []byte, sink pipeline.Sink) error {
		_, err := p.Extract(ctx, data, sink)
		return err
	})
}

// runInput is the validated multipart form of a run request.
type runInput struct {
	data     []byte
	selector llm.Selector
	apiKey   string
}

// stream validates the upload, runs the pipeline and writes every event as
// it happens. Input errors are reported as a single error event so clients
// only ever read one stream format.
func (s *Server) stream(w http.ResponseWriter, r *http.Request, kind string, run runFunc) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(s.cfg.RequestTimeoutSecs)*time.Second)
	defer cancel()

	sse := newEventStream(w)
	log := zap.L().With(
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("run", kind),
	)

	in, msg, err := s.readInput(w, r)
	if err != nil {
		log.Warn("server: rejected run", zap.Error(err))
		sse.send(pipeline.NewErrorEvent(msg, ""))
		return
	}

	providers, err := s.factory.New(in.selector, in.apiKey)
	if err != nil {
		log.Warn("server: provider setup failed", zap.Error(err))
		msg := msgSetupFailed
		if errors.Is(err, llm.ErrMissingKey) {
			msg = msgNoKey
		}
		sse.send(pipeline.NewErrorEvent(msg, err.Error()))
		return
	}

	p := pipeline.New(providers, s.roster, s.metrics, s.opts)
	if err := run(ctx, p, in.data, sse.send); err != nil {
		log.Warn("server: run ended with error", zap.Error(err))
		return
	}
	log.Info("server: run complete", zap.Int("bytes", len(in.data)))
}

// readInput parses the multipart form. On failure it returns the message
// to show the user.
func (s *Server) readInput(w http.ResponseWriter, r *http.Request) (*runInput, string, error) {
	maxBytes := int64(s.cfg.MaxUploadMB) << 20
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, msgUploadTooLarge, eris.Wrap(err, "server: parse form")
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, msgNoFile, ErrNoFile
	}
	defer file.Close()

	apiKey := r.FormValue("apiKey")
	if apiKey == "" {
		return nil, msgNoKey, ErrNoCredential
	}

	sel, err := llm.ParseSelector(r.FormValue("model"))
	if err != nil {
		return nil, msgUnknownModel, err
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, msgUploadTooLarge, eris.Wrap(err, "server: read upload")
	}

	return &runInput{data: data, selector: sel, apiKey: apiKey}, "", nil
}
