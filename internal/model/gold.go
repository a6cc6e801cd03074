package model

import "time"

// RepInfo identifies the rep on a scored call.
type RepInfo struct {
	Name               *string `json:"name"`
	IntroducedProperly bool    `json:"introducedProperly"`
}

// CallerInfo identifies the caller on a scored call.
type CallerInfo struct {
	Name        *string `json:"name"`
	Company     *string `json:"company"`
	Location    *string `json:"location"`
	Phone       *string `json:"phone"`
	NeedSummary string  `json:"needSummary"`
}

// LeadTimeline is the caller's buying horizon.
type LeadTimeline string

const (
	TimelineImmediate  LeadTimeline = "immediate"
	TimelineNearTerm   LeadTimeline = "near-term"
	TimelineOneToThree LeadTimeline = "1-3months"
	TimelineVague      LeadTimeline = "vague"
	TimelineNone       LeadTimeline = "none"
)

// ServiceFit is how well the caller's need matches what the company sells.
type ServiceFit string

const (
	FitPerfect  ServiceFit = "perfect"
	FitGood     ServiceFit = "good"
	FitDecent   ServiceFit = "decent"
	FitPoor     ServiceFit = "poor"
	FitMismatch ServiceFit = "mismatch"
)

// RecommendedAction is the suggested follow-up cadence for a lead.
type RecommendedAction string

const (
	ActionPriority   RecommendedAction = "priority-1hr"
	ActionFollow24   RecommendedAction = "follow-24hr"
	ActionNurture    RecommendedAction = "nurture-48-72hr"
	ActionEmailOnly  RecommendedAction = "email-only"
	ActionNoFollowUp RecommendedAction = "no-follow-up"
)

// ClosingOutcome is how the call ended.
type ClosingOutcome string

const (
	OutcomeAppointment ClosingOutcome = "appointment"
	OutcomeFollowUp    ClosingOutcome = "follow-up"
	OutcomeDisposition ClosingOutcome = "disposition"
	OutcomeNone        ClosingOutcome = "none"
)

// LeadQuality rates the caller as a sales opportunity, independent of the
// rep's performance.
type LeadQuality struct {
	Score             float64           `json:"score"`
	Timeline          LeadTimeline      `json:"timeline"`
	HasAuthority      bool              `json:"hasAuthority"`
	NeedIdentified    bool              `json:"needIdentified"`
	ServiceFit        ServiceFit        `json:"serviceFit"`
	RedFlags          []string          `json:"redFlags"`
	RecommendedAction RecommendedAction `json:"recommendedAction"`
	Notes             string            `json:"notes"`
}

// CategoryScore is the common part of every rep-skill category.
type CategoryScore struct {
	Score float64 `json:"score"`
	Notes string  `json:"notes"`
}

type CallContextScore struct {
	Type CallDirection `json:"type"`
	CategoryScore
}

type InformationGathering struct {
	BusinessType  bool `json:"businessType"`
	DecisionMaker bool `json:"decisionMaker"`
	Timeline      bool `json:"timeline"`
	BudgetIntent  bool `json:"budgetIntent"`
	LoadDetails   bool `json:"loadDetails"`
	CategoryScore
}

type ToneProfessionalism struct {
	CategoryScore
	FillerWords            bool `json:"fillerWords"`
	UnprofessionalLanguage bool `json:"unprofessionalLanguage"`
}

type ListeningRatio struct {
	CategoryScore
	EstimatedRatio string `json:"estimatedRatio"`
}

type ObjectionHandling struct {
	CategoryScore
	ObjectionsRaised []string `json:"objectionsRaised"`
}

type NextSteps struct {
	CategoryScore
	StepsSet []string `json:"stepsSet"`
}

type CallClosing struct {
	Outcome ClosingOutcome `json:"outcome"`
	CategoryScore
}

// Category names a weighted rep-skill dimension.
type Category string

const (
	CategoryCallContext          Category = "callContext"
	CategoryObjectiveClarity     Category = "objectiveClarity"
	CategoryInformationGathering Category = "informationGathering"
	CategoryInformationQuality   Category = "informationQuality"
	CategoryToneProfessionalism  Category = "toneProfessionalism"
	CategoryListeningRatio       Category = "listeningRatio"
	CategoryConversationGuidance Category = "conversationGuidance"
	CategoryObjectionHandling    Category = "objectionHandling"
	CategoryNextSteps            Category = "nextSteps"
	CategoryCallClosing          Category = "callClosing"
)

// CallScore is the performance and lead assessment of one call. A nil
// category means the scorer did not return it.
type CallScore struct {
	RepInfo     RepInfo     `json:"repInfo"`
	CallerInfo  CallerInfo  `json:"callerInfo"`
	LeadQuality LeadQuality `json:"leadQuality"`

	CallContext          *CallContextScore     `json:"callContext,omitempty"`
	ObjectiveClarity     *CategoryScore        `json:"objectiveClarity,omitempty"`
	InformationGathering *InformationGathering `json:"informationGathering,omitempty"`
	InformationQuality   *CategoryScore        `json:"informationQuality,omitempty"`
	ToneProfessionalism  *ToneProfessionalism  `json:"toneProfessionalism,omitempty"`
	ListeningRatio       *ListeningRatio       `json:"listeningRatio,omitempty"`
	ConversationGuidance *CategoryScore        `json:"conversationGuidance,omitempty"`
	ObjectionHandling    *ObjectionHandling    `json:"objectionHandling,omitempty"`
	NextSteps            *NextSteps            `json:"nextSteps,omitempty"`
	CallClosing          *CallClosing          `json:"callClosing,omitempty"`

	OverallScore     float64  `json:"overallScore"`
	Strengths        []string `json:"strengths"`
	Weaknesses       []string `json:"weaknesses"`
	CoachingInsights []string `json:"coachingInsights"`
	InternalAlerts   []string `json:"internalAlerts"`
}

// CategoryScore returns the score of category c and whether it is present.
func (s CallScore) CategoryScore(c Category) (float64, bool) {
	var cs *CategoryScore
	switch c {
	case CategoryCallContext:
		if s.CallContext != nil {
			cs = &s.CallContext.CategoryScore
		}
	case CategoryObjectiveClarity:
		cs = s.ObjectiveClarity
	case CategoryInformationGathering:
		if s.InformationGathering != nil {
			cs = &s.InformationGathering.CategoryScore
		}
	case CategoryInformationQuality:
		cs = s.InformationQuality
	case CategoryToneProfessionalism:
		if s.ToneProfessionalism != nil {
			cs = &s.ToneProfessionalism.CategoryScore
		}
	case CategoryListeningRatio:
		if s.ListeningRatio != nil {
			cs = &s.ListeningRatio.CategoryScore
		}
	case CategoryConversationGuidance:
		cs = s.ConversationGuidance
	case CategoryObjectionHandling:
		if s.ObjectionHandling != nil {
			cs = &s.ObjectionHandling.CategoryScore
		}
	case CategoryNextSteps:
		if s.NextSteps != nil {
			cs = &s.NextSteps.CategoryScore
		}
	case CategoryCallClosing:
		if s.CallClosing != nil {
			cs = &s.CallClosing.CategoryScore
		}
	}
	if cs == nil {
		return 0, false
	}
	return cs.Score, true
}

// CallRecord is the display-oriented flattening of a Silver call.
type CallRecord struct {
	ID              string `json:"id"`
	RepName         string `json:"repName"`
	CallDate        string `json:"callDate"`
	CallDuration    string `json:"callDuration"`
	DurationSeconds int    `json:"durationSeconds"`
	CustomerName    string `json:"customerName,omitempty"`
	PhoneNumber     string `json:"phoneNumber,omitempty"`
	Transcript      string `json:"transcript,omitempty"`
	Notes           string `json:"notes,omitempty"`
	Outcome         string `json:"outcome,omitempty"`
	Direction       string `json:"direction,omitempty"`
	Source          string `json:"source,omitempty"`
	RecordingURL    string `json:"recordingUrl,omitempty"`
	CallerCompany   string `json:"callerCompany,omitempty"`
	CallerLocation  string `json:"callerLocation,omitempty"`
	CallerPhone     string `json:"callerPhone,omitempty"`
	NeedSummary     string `json:"needSummary,omitempty"`
}

// AnalyzedCall is one successfully scored call.
type AnalyzedCall struct {
	Record     CallRecord `json:"record"`
	Score      CallScore  `json:"score"`
	AIModel    string     `json:"aiModel"`
	AnalyzedAt time.Time  `json:"analyzedAt"`
}

// ResolvedRepName is the name calls are grouped under: the scored rep name,
// falling back to the record's rep name.
func (c AnalyzedCall) ResolvedRepName() string {
	if n := Deref(c.Score.RepInfo.Name); n != "" {
		return n
	}
	return c.Record.RepName
}
