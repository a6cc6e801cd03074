package pipeline

import (
	"context"
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"github.com/nationwide-haul/call-tracker/internal/llm"
	"github.com/nationwide-haul/call-tracker/internal/model"
)

const (
	triageMinChars     = 50
	triagePromptChars  = 2000
	triageMaxTokens    = 200
	triageShortConf    = 0.95
	triageIVRConf      = 0.9
	triageFallbackConf = 0.5
)

const (
	reasonTooShort       = "Transcript too short for meaningful analysis"
	reasonIVR            = "Only automated IVR message detected, no customer interaction"
	reasonTriageFallback = "Triage failed, defaulting to analysis"
)

var (
	ivrPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)thank you for calling.*for a full list of inventory`),
		regexp.MustCompile(`(?i)please visit www\.`),
		regexp.MustCompile(`(?i)press \d for`),
		regexp.MustCompile(`(?i)leave a message after the`),
	}
	callerTurn = regexp.MustCompile(`(?i)caller:`)
)

// Triager decides whether a call is worth full analysis.
type Triager struct {
	provider llm.Provider
}

// NewTriager creates a Triager that falls back to provider when the
// heuristics are inconclusive.
func NewTriager(provider llm.Provider) *Triager {
	return &Triager{provider: provider}
}

type triageWire struct {
	Classification flexString `json:"classification"`
	Confidence     flexFloat  `json:"confidence"`
	Reason         flexString `json:"reason"`
}

// Triage classifies a transcript. It never fails: provider errors and
// unusable answers classify the call as valid_sales so it still gets
// analyzed.
func (t *Triager) Triage(ctx context.Context, transcript string) model.TriageResult {
	if trimmedLen(transcript) < triageMinChars {
		return model.NewTriageResult(model.ClassIncomplete, triageShortConf, reasonTooShort)
	}
	if isIVROnly(transcript) {
		return model.NewTriageResult(model.ClassIVROnly, triageIVRConf, reasonIVR)
	}

	prompt := fmt.Sprintf(triagePrompt, headRunes(transcript, triagePromptChars))
	text, err := t.provider.Call(ctx, prompt, triageMaxTokens)
	if err != nil {
		zap.L().Warn("triage: ai call failed", zap.Error(err))
		return triageFallback()
	}

	var wire triageWire
	if err := decodeResponse(text, &wire); err != nil {
		zap.L().Warn("triage: unparseable response", zap.Error(err))
		return triageFallback()
	}

	class, ok := model.ParseClassification(string(wire.Classification))
	if !ok {
		zap.L().Warn("triage: unknown classification",
			zap.String("classification", string(wire.Classification)),
		)
		return triageFallback()
	}

	conf := triageFallbackConf
	if wire.Confidence.ok {
		conf = wire.Confidence.v
	}
	return model.NewTriageResult(class, conf, string(wire.Reason))
}

func isIVROnly(transcript string) bool {
	if callerTurn.MatchString(transcript) {
		return false
	}
	for _, p := range ivrPatterns {
		if p.MatchString(transcript) {
			return true
		}
	}
	return false
}

func triageFallback() model.TriageResult {
	return model.NewTriageResult(model.ClassValidSales, triageFallbackConf, reasonTriageFallback)
}
