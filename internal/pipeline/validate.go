package pipeline

import (
	"math"
	"regexp"
	"strings"

	"github.com/nationwide-haul/call-tracker/internal/model"
	"github.com/nationwide-haul/call-tracker/internal/roster"
)

// Confidence penalties per issue.
const (
	penaltyNoRepName       = 0.2
	penaltyInvalidRepName  = 0.3
	penaltyUnknownRepName  = 0.1
	penaltyMissingNeed     = 0.1
	penaltyShortTranscript = 0.2
	penaltyLocationFormat  = 0.05
	penaltyPhoneFormat     = 0.05
)

const (
	minNeedSummaryChars = 5
	minTranscriptChars  = 200
	reviewThreshold     = 0.7
)

var locationShape = regexp.MustCompile(`^[A-Za-z\s]+,\s*[A-Z]{2}$`)

// Validate checks an extraction against the transcript and roster. It
// returns a copy of ext with stoplisted rep names removed, and the
// validation verdict. ext itself is not modified.
func Validate(ext model.Extraction, transcript string, r *roster.Roster) (model.Extraction, model.ExtractionValidation) {
	out := ext
	issues := []model.IssueCode{}
	confidence := 1.0

	flag := func(code model.IssueCode, penalty float64) {
		issues = append(issues, code)
		confidence -= penalty
	}

	name := model.Deref(ext.Rep.Name)
	switch {
	case strings.TrimSpace(name) == "":
		out.Rep.Name = nil
		flag(model.IssueNoRepName, penaltyNoRepName)
	case r.IsStopword(name):
		out.Rep.Name = nil
		flag(model.IssueInvalidRepName, penaltyInvalidRepName)
	case !r.IsKnown(name):
		flag(model.IssueUnknownRepName, penaltyUnknownRepName)
	}

	if ext.CallContext.Type == model.DirectionInbound && trimmedLen(ext.CallContext.NeedSummary) < minNeedSummaryChars {
		flag(model.IssueMissingNeedSummary, penaltyMissingNeed)
	}

	if runeLen(transcript) < minTranscriptChars {
		flag(model.IssueShortTranscript, penaltyShortTranscript)
	}

	if loc := strings.TrimSpace(model.Deref(ext.Caller.Location)); loc != "" && !locationShape.MatchString(loc) {
		flag(model.IssueLocationFormat, penaltyLocationFormat)
	}

	if phone := model.Deref(ext.Caller.Phone); strings.TrimSpace(phone) != "" {
		if n := countDigits(phone); n < 10 || n > 11 {
			flag(model.IssueInvalidPhoneFormat, penaltyPhoneFormat)
		}
	}

	// Rounded so stacked penalties compare exactly against the threshold.
	confidence = model.Clamp(math.Round(confidence*100)/100, 0, 1)

	v := model.ExtractionValidation{
		IsValid:    len(issues) == 0,
		Issues:     issues,
		Confidence: confidence,
	}
	v.NeedsReview = confidence < reviewThreshold || v.HasIssue(model.IssueUnknownRepName)
	return out, v
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
