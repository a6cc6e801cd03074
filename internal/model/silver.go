package model

import (
	"encoding/json"
	"strings"
	"time"
)

// Classification is the triage disposition of a call.
type Classification string

const (
	ClassValidSales  Classification = "valid_sales"
	ClassIVROnly     Classification = "ivr_only"
	ClassSpam        Classification = "spam"
	ClassIncomplete  Classification = "incomplete"
	ClassWrongNumber Classification = "wrong_number"
)

// AllClassifications returns every triage category in prompt order.
func AllClassifications() []Classification {
	return []Classification{
		ClassValidSales,
		ClassIVROnly,
		ClassSpam,
		ClassIncomplete,
		ClassWrongNumber,
	}
}

// ParseClassification maps s onto a known category. Matching ignores case
// and surrounding whitespace.
func ParseClassification(s string) (Classification, bool) {
	c := Classification(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllClassifications() {
		if c == known {
			return c, true
		}
	}
	return "", false
}

// TriageResult records whether a call is worth full analysis. ShouldAnalyze
// is derived from the classification and cannot be set on its own.
type TriageResult struct {
	Classification Classification `json:"classification"`
	Confidence     float64        `json:"confidence"`
	Reason         string         `json:"reason"`
}

// NewTriageResult builds a TriageResult with confidence clamped to [0,1].
func NewTriageResult(c Classification, confidence float64, reason string) TriageResult {
	return TriageResult{
		Classification: c,
		Confidence:     Clamp(confidence, 0, 1),
		Reason:         reason,
	}
}

// ShouldAnalyze reports whether the call proceeds to extraction and scoring.
func (t TriageResult) ShouldAnalyze() bool {
	return t.Classification == ClassValidSales
}

// MarshalJSON adds the derived shouldAnalyze flag.
func (t TriageResult) MarshalJSON() ([]byte, error) {
	type plain TriageResult
	return json.Marshal(struct {
		plain
		ShouldAnalyze bool `json:"shouldAnalyze"`
	}{plain(t), t.ShouldAnalyze()})
}

// CallDirection is who initiated the conversation.
type CallDirection string

const (
	DirectionInbound  CallDirection = "inbound"
	DirectionOutbound CallDirection = "outbound"
	DirectionFollowUp CallDirection = "follow-up"
	DirectionUnknown  CallDirection = "unknown"
)

// ParseCallDirection normalizes s, returning DirectionUnknown for anything
// unrecognized.
func ParseCallDirection(s string) CallDirection {
	switch d := CallDirection(strings.ToLower(strings.TrimSpace(s))); d {
	case DirectionInbound, DirectionOutbound, DirectionFollowUp:
		return d
	default:
		return DirectionUnknown
	}
}

// Urgency is how soon the caller needs the product.
type Urgency string

const (
	UrgencyImmediate Urgency = "immediate"
	UrgencyNearTerm  Urgency = "near-term"
	UrgencyExploring Urgency = "exploring"
	UrgencyUnknown   Urgency = "unknown"
)

// ParseUrgency normalizes s, returning UrgencyUnknown for anything
// unrecognized.
func ParseUrgency(s string) Urgency {
	switch u := Urgency(strings.ToLower(strings.TrimSpace(s))); u {
	case UrgencyImmediate, UrgencyNearTerm, UrgencyExploring:
		return u
	default:
		return UrgencyUnknown
	}
}

// ExtractedRep is the sales rep as identified from the transcript.
type ExtractedRep struct {
	Name               *string `json:"name"`
	IntroducedProperly bool    `json:"introducedProperly"`
	IntroPattern       *string `json:"introPattern"`
}

// ExtractedCaller is the caller as identified from the transcript.
type ExtractedCaller struct {
	Name     *string `json:"name"`
	Company  *string `json:"company"`
	Location *string `json:"location"`
	Phone    *string `json:"phone"`
	Role     *string `json:"role"`
}

// ExtractedCallContext describes what the call was about.
type ExtractedCallContext struct {
	Type            CallDirection `json:"type"`
	NeedSummary     string        `json:"needSummary"`
	ProductInterest []string      `json:"productInterest"`
	Urgency         Urgency       `json:"urgency"`
}

// Extraction bundles everything pulled out of a transcript.
type Extraction struct {
	Rep         ExtractedRep         `json:"rep"`
	Caller      ExtractedCaller      `json:"caller"`
	CallContext ExtractedCallContext `json:"callContext"`
}

// EmptyExtraction is the value used when extraction is skipped or fails.
func EmptyExtraction() Extraction {
	return Extraction{
		CallContext: ExtractedCallContext{
			Type:            DirectionUnknown,
			ProductInterest: []string{},
			Urgency:         UrgencyUnknown,
		},
	}
}

// IssueCode names a validation finding.
type IssueCode string

const (
	IssueNoRepName          IssueCode = "NO_REP_NAME"
	IssueInvalidRepName     IssueCode = "INVALID_REP_NAME"
	IssueUnknownRepName     IssueCode = "UNKNOWN_REP_NAME"
	IssueMissingNeedSummary IssueCode = "MISSING_NEED_SUMMARY"
	IssueShortTranscript    IssueCode = "SHORT_TRANSCRIPT"
	IssueLocationFormat     IssueCode = "LOCATION_FORMAT"
	IssueInvalidPhoneFormat IssueCode = "INVALID_PHONE_FORMAT"
)

// ExtractionValidation is the deterministic post-check of an extraction.
type ExtractionValidation struct {
	IsValid     bool        `json:"isValid"`
	Issues      []IssueCode `json:"issues"`
	Confidence  float64     `json:"confidence"`
	NeedsReview bool        `json:"needsReview"`
}

// HasIssue reports whether code was raised.
func (v ExtractionValidation) HasIssue(code IssueCode) bool {
	for _, c := range v.Issues {
		if c == code {
			return true
		}
	}
	return false
}

// SilverCall is a Bronze record enriched with triage, extraction and
// validation. It is the unit the scoring stage consumes.
type SilverCall struct {
	Bronze          BronzeCall           `json:"bronze"`
	Triage          TriageResult         `json:"triage"`
	Rep             ExtractedRep         `json:"rep"`
	Caller          ExtractedCaller      `json:"caller"`
	CallContext     ExtractedCallContext `json:"callContext"`
	Validation      ExtractionValidation `json:"validation"`
	ExtractedAt     time.Time            `json:"extractedAt"`
	ExtractionModel string               `json:"extractionModel"`
}

// ExtractionStats summarizes a Silver-only run.
type ExtractionStats struct {
	TotalCalls            int      `json:"totalCalls"`
	ValidSales            int      `json:"validSales"`
	IVROnly               int      `json:"ivrOnly"`
	Spam                  int      `json:"spam"`
	Incomplete            int      `json:"incomplete"`
	ExtractionSuccessRate int      `json:"extractionSuccessRate"`
	UniqueReps            []string `json:"uniqueReps"`
	AvgConfidence         float64  `json:"avgConfidence"`
}

// ExtractionResult is the output of a Silver-only run.
type ExtractionResult struct {
	Calls []SilverCall    `json:"calls"`
	Stats ExtractionStats `json:"stats"`
}
