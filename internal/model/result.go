package model

import (
	"math"
	"strings"
)

// Trend is the direction of a rep's scores over the run.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// RepSummary is the per-rep rollup of scored calls.
type RepSummary struct {
	RepName          string    `json:"repName"`
	Division         string    `json:"division"`
	DivisionName     string    `json:"divisionName"`
	TotalCalls       int       `json:"totalCalls"`
	AverageScore     float64   `json:"averageScore"`
	AverageLeadScore float64   `json:"averageLeadScore"`
	Strengths        []string  `json:"strengths"`
	Weaknesses       []string  `json:"weaknesses"`
	CoachingInsights []string  `json:"coachingInsights"`
	CallScores       []float64 `json:"callScores"`
	LeadScores       []float64 `json:"leadScores"`
	Trend            Trend     `json:"trend"`
	QualifiedLeads   int       `json:"qualifiedLeads"`
}

// OverallStats is the fleet-wide rollup.
type OverallStats struct {
	TotalCalls       int     `json:"totalCalls"`
	AverageScore     float64 `json:"averageScore"`
	AverageLeadScore float64 `json:"averageLeadScore"`
	TopPerformer     string  `json:"topPerformer"`
	NeedsImprovement string  `json:"needsImprovement"`
	QualifiedLeads   int     `json:"qualifiedLeads"`
	RedFlagCalls     int     `json:"redFlagCalls"`
	TotalInFile      int     `json:"totalInFile"`
	IVRCalls         int     `json:"ivrCalls"`
	SpamCalls        int     `json:"spamCalls"`
}

// AnalysisResult is the finished output handed to display and export
// consumers. Its JSON shape is a stable contract.
type AnalysisResult struct {
	Calls        []AnalyzedCall `json:"calls"`
	RepSummaries []RepSummary   `json:"repSummaries"`
	OverallStats OverallStats   `json:"overallStats"`
}

// Deref returns the string p points at, or "" for nil.
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// NonEmpty returns a pointer to the trimmed s, or nil when s is blank.
func NonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// FirstNonEmpty returns the first pointer that refers to a non-blank string.
func FirstNonEmpty(ps ...*string) *string {
	for _, p := range ps {
		if p != nil && strings.TrimSpace(*p) != "" {
			return p
		}
	}
	return nil
}

// Clamp bounds v to [lo, hi]. NaN becomes lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Round1 rounds v to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
