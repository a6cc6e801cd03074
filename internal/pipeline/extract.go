package pipeline

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nationwide-haul/call-tracker/internal/llm"
	"github.com/nationwide-haul/call-tracker/internal/model"
	"github.com/nationwide-haul/call-tracker/internal/roster"
)

const (
	extractThreshold = 6000
	extractKeep      = 2500
	extractMaxTokens = 500
)

// Extractor pulls rep, caller and call context fields out of a transcript.
type Extractor struct {
	provider llm.Provider
	known    string
}

// NewExtractor creates an Extractor. The roster's known reps are listed in
// the prompt as hints.
func NewExtractor(provider llm.Provider, r *roster.Roster) *Extractor {
	return &Extractor{
		provider: provider,
		known:    strings.Join(r.KnownReps(), ", "),
	}
}

type extractionWire struct {
	Rep *struct {
		Name               flexString `json:"name"`
		IntroducedProperly flexBool   `json:"introducedProperly"`
		IntroPattern       flexString `json:"introPattern"`
	} `json:"rep"`
	Caller *struct {
		Name     flexString `json:"name"`
		Company  flexString `json:"company"`
		Location flexString `json:"location"`
		Phone    flexString `json:"phone"`
		Role     flexString `json:"role"`
	} `json:"caller"`
	CallContext *struct {
		Type            flexString  `json:"type"`
		NeedSummary     flexString  `json:"needSummary"`
		ProductInterest flexStrings `json:"productInterest"`
		Urgency         flexString  `json:"urgency"`
	} `json:"callContext"`
}

// Extract returns the fields found in transcript. Provider errors and
// unusable answers yield an empty extraction.
func (e *Extractor) Extract(ctx context.Context, transcript string) model.Extraction {
	prompt := fmt.Sprintf(extractionPrompt, reduceTranscript(transcript, extractThreshold, extractKeep), e.known)

	text, err := e.provider.Call(ctx, prompt, extractMaxTokens)
	if err != nil {
		zap.L().Warn("extract: ai call failed", zap.Error(err))
		return model.EmptyExtraction()
	}

	var wire extractionWire
	if err := decodeResponse(text, &wire); err != nil {
		zap.L().Warn("extract: unparseable response", zap.Error(err))
		return model.EmptyExtraction()
	}

	return wire.toModel()
}

func (w extractionWire) toModel() model.Extraction {
	out := model.EmptyExtraction()

	if w.Rep != nil {
		out.Rep = model.ExtractedRep{
			Name:               model.NonEmpty(capitalize(string(w.Rep.Name))),
			IntroducedProperly: bool(w.Rep.IntroducedProperly),
			IntroPattern:       w.Rep.IntroPattern.ptr(),
		}
	}
	if w.Caller != nil {
		out.Caller = model.ExtractedCaller{
			Name:     w.Caller.Name.ptr(),
			Company:  w.Caller.Company.ptr(),
			Location: w.Caller.Location.ptr(),
			Phone:    w.Caller.Phone.ptr(),
			Role:     w.Caller.Role.ptr(),
		}
	}
	if w.CallContext != nil {
		out.CallContext = model.ExtractedCallContext{
			Type:            model.ParseCallDirection(string(w.CallContext.Type)),
			NeedSummary:     string(w.CallContext.NeedSummary),
			ProductInterest: w.CallContext.ProductInterest.list(),
			Urgency:         model.ParseUrgency(string(w.CallContext.Urgency)),
		}
	}
	return out
}

// capitalize upper-cases the first letter and lower-cases the rest:
// "MATT" and "matt" both become "Matt". Casers are stateful, so each call
// gets its own.
func capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	_, size := utf8.DecodeRuneInString(s)
	return cases.Upper(language.Und).String(s[:size]) + cases.Lower(language.Und).String(s[size:])
}
