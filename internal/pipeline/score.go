package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/nationwide-haul/call-tracker/internal/llm"
	"github.com/nationwide-haul/call-tracker/internal/model"
)

const (
	scoreThreshold = 8000
	scoreKeep      = 3000
	scoreMaxTokens = 2000
)

// Prompt placeholders for Silver fields that were not extracted.
const (
	placeholderUnknown       = "Unknown"
	placeholderNotMentioned  = "Not mentioned"
	placeholderNotIdentified = "Not identified"
	placeholderNotSpecified  = "Not specified"
)

// Scorer grades one Silver call with the scoring model.
type Scorer struct {
	provider llm.Provider
}

// NewScorer creates a Scorer.
func NewScorer(provider llm.Provider) *Scorer {
	return &Scorer{provider: provider}
}

// Score asks the model for a CallScore. Identity fields come from the
// Silver record whenever it has them; the model's values only fill gaps.
func (s *Scorer) Score(ctx context.Context, sc model.SilverCall) (model.CallScore, error) {
	text, err := s.provider.Call(ctx, buildScoringPrompt(sc), scoreMaxTokens)
	if err != nil {
		return model.CallScore{}, eris.Wrap(err, "score: ai call")
	}

	var wire scoreWire
	if err := decodeResponse(text, &wire); err != nil {
		return model.CallScore{}, eris.Wrap(err, "score: parse response")
	}
	if !wire.hasScores() {
		return model.CallScore{}, eris.New("score: response has no scores")
	}

	score := wire.toModel()
	applySilver(&score, sc, wire)
	score.OverallScore = OverallScore(score)
	return score, nil
}

func buildScoringPrompt(sc model.SilverCall) string {
	products := strings.Join(sc.CallContext.ProductInterest, ", ")
	urgency := string(sc.CallContext.Urgency)
	if urgency == "" {
		urgency = string(model.UrgencyUnknown)
	}
	return fmt.Sprintf(scoringPrompt,
		orDefault(model.Deref(sc.Rep.Name), placeholderUnknown),
		orDefault(model.Deref(sc.Caller.Name), placeholderUnknown),
		orDefault(model.Deref(sc.Caller.Company), placeholderNotMentioned),
		orDefault(model.Deref(sc.Caller.Location), placeholderNotMentioned),
		orDefault(sc.CallContext.NeedSummary, placeholderNotIdentified),
		urgency,
		orDefault(products, placeholderNotSpecified),
		reduceTranscript(sc.Bronze.Transcript, scoreThreshold, scoreKeep),
	)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// applySilver overwrites identity fields with the extracted Silver values,
// keeping the model's answer only where Silver has nothing. The model
// echoing a prompt placeholder counts as no answer.
func applySilver(score *model.CallScore, sc model.SilverCall, wire scoreWire) {
	var ai struct {
		repName, name, company, location, phone, need *string
		intro                                         bool
	}
	if wire.RepInfo != nil {
		ai.repName = notPlaceholder(wire.RepInfo.Name)
		ai.intro = bool(wire.RepInfo.IntroducedProperly)
	}
	if wire.CallerInfo != nil {
		ai.name = notPlaceholder(wire.CallerInfo.Name)
		ai.company = notPlaceholder(wire.CallerInfo.Company)
		ai.location = notPlaceholder(wire.CallerInfo.Location)
		ai.phone = notPlaceholder(wire.CallerInfo.Phone)
		ai.need = notPlaceholder(wire.CallerInfo.NeedSummary)
	}

	score.RepInfo = model.RepInfo{
		Name:               model.FirstNonEmpty(sc.Rep.Name, ai.repName),
		IntroducedProperly: sc.Rep.IntroducedProperly || ai.intro,
	}
	score.CallerInfo = model.CallerInfo{
		Name:        model.FirstNonEmpty(sc.Caller.Name, ai.name),
		Company:     model.FirstNonEmpty(sc.Caller.Company, ai.company),
		Location:    model.FirstNonEmpty(sc.Caller.Location, ai.location),
		Phone:       model.FirstNonEmpty(sc.Caller.Phone, ai.phone),
		NeedSummary: model.Deref(model.FirstNonEmpty(model.NonEmpty(sc.CallContext.NeedSummary), ai.need)),
	}
}

func notPlaceholder(f flexString) *string {
	switch string(f) {
	case placeholderUnknown, placeholderNotMentioned, placeholderNotIdentified, placeholderNotSpecified:
		return nil
	}
	return f.ptr()
}

// categoryWire is the union of every category's fields.
type categoryWire struct {
	Score flexFloat  `json:"score"`
	Notes flexString `json:"notes"`

	Type             flexString  `json:"type"`
	BusinessType     flexBool    `json:"businessType"`
	DecisionMaker    flexBool    `json:"decisionMaker"`
	Timeline         flexBool    `json:"timeline"`
	BudgetIntent     flexBool    `json:"budgetIntent"`
	LoadDetails      flexBool    `json:"loadDetails"`
	FillerWords      flexBool    `json:"fillerWords"`
	Unprofessional   flexBool    `json:"unprofessionalLanguage"`
	EstimatedRatio   flexString  `json:"estimatedRatio"`
	ObjectionsRaised flexStrings `json:"objectionsRaised"`
	StepsSet         flexStrings `json:"stepsSet"`
	Outcome          flexString  `json:"outcome"`
}

// base returns the shared score block, or nil when the category has no
// numeric score.
func (c *categoryWire) base() *model.CategoryScore {
	if c == nil || !c.Score.ok {
		return nil
	}
	return &model.CategoryScore{
		Score: model.Clamp(c.Score.v, 0, 10),
		Notes: string(c.Notes),
	}
}

type scoreWire struct {
	RepInfo *struct {
		Name               flexString `json:"name"`
		IntroducedProperly flexBool   `json:"introducedProperly"`
	} `json:"repInfo"`
	CallerInfo *struct {
		Name        flexString `json:"name"`
		Company     flexString `json:"company"`
		Location    flexString `json:"location"`
		Phone       flexString `json:"phone"`
		NeedSummary flexString `json:"needSummary"`
	} `json:"callerInfo"`
	LeadQuality *struct {
		Score             flexFloat   `json:"score"`
		Timeline          flexString  `json:"timeline"`
		HasAuthority      flexBool    `json:"hasAuthority"`
		NeedIdentified    flexBool    `json:"needIdentified"`
		ServiceFit        flexString  `json:"serviceFit"`
		RedFlags          flexStrings `json:"redFlags"`
		RecommendedAction flexString  `json:"recommendedAction"`
		Notes             flexString  `json:"notes"`
	} `json:"leadQuality"`

	CallContext          *categoryWire `json:"callContext"`
	ObjectiveClarity     *categoryWire `json:"objectiveClarity"`
	InformationGathering *categoryWire `json:"informationGathering"`
	InformationQuality   *categoryWire `json:"informationQuality"`
	ToneProfessionalism  *categoryWire `json:"toneProfessionalism"`
	ListeningRatio       *categoryWire `json:"listeningRatio"`
	ConversationGuidance *categoryWire `json:"conversationGuidance"`
	ObjectionHandling    *categoryWire `json:"objectionHandling"`
	NextSteps            *categoryWire `json:"nextSteps"`
	CallClosing          *categoryWire `json:"callClosing"`

	Strengths        flexStrings `json:"strengths"`
	Weaknesses       flexStrings `json:"weaknesses"`
	CoachingInsights flexStrings `json:"coachingInsights"`
	InternalAlerts   flexStrings `json:"internalAlerts"`
}

func (w scoreWire) categories() []*categoryWire {
	return []*categoryWire{
		w.CallContext, w.ObjectiveClarity, w.InformationGathering, w.InformationQuality,
		w.ToneProfessionalism, w.ListeningRatio, w.ConversationGuidance,
		w.ObjectionHandling, w.NextSteps, w.CallClosing,
	}
}

// hasScores reports whether the answer carries any numeric score at all.
func (w scoreWire) hasScores() bool {
	if w.LeadQuality != nil && w.LeadQuality.Score.ok {
		return true
	}
	for _, c := range w.categories() {
		if c.base() != nil {
			return true
		}
	}
	return false
}

func (w scoreWire) toModel() model.CallScore {
	s := model.CallScore{
		LeadQuality: model.LeadQuality{
			Timeline:          model.TimelineVague,
			ServiceFit:        model.FitDecent,
			RedFlags:          []string{},
			RecommendedAction: model.ActionNurture,
		},
		Strengths:        w.Strengths.list(),
		Weaknesses:       w.Weaknesses.list(),
		CoachingInsights: w.CoachingInsights.list(),
		InternalAlerts:   w.InternalAlerts.list(),
	}

	if lq := w.LeadQuality; lq != nil {
		if lq.Score.ok {
			s.LeadQuality.Score = model.Clamp(lq.Score.v, 0, 10)
		}
		s.LeadQuality.Timeline = parseTimeline(string(lq.Timeline))
		s.LeadQuality.HasAuthority = bool(lq.HasAuthority)
		s.LeadQuality.NeedIdentified = bool(lq.NeedIdentified)
		s.LeadQuality.ServiceFit = parseServiceFit(string(lq.ServiceFit))
		s.LeadQuality.RedFlags = lq.RedFlags.list()
		s.LeadQuality.RecommendedAction = parseAction(string(lq.RecommendedAction))
		s.LeadQuality.Notes = string(lq.Notes)
	}

	if b := w.CallContext.base(); b != nil {
		s.CallContext = &model.CallContextScore{
			Type:          model.ParseCallDirection(string(w.CallContext.Type)),
			CategoryScore: *b,
		}
	}
	s.ObjectiveClarity = w.ObjectiveClarity.base()
	if b := w.InformationGathering.base(); b != nil {
		c := w.InformationGathering
		s.InformationGathering = &model.InformationGathering{
			BusinessType:  bool(c.BusinessType),
			DecisionMaker: bool(c.DecisionMaker),
			Timeline:      bool(c.Timeline),
			BudgetIntent:  bool(c.BudgetIntent),
			LoadDetails:   bool(c.LoadDetails),
			CategoryScore: *b,
		}
	}
	s.InformationQuality = w.InformationQuality.base()
	if b := w.ToneProfessionalism.base(); b != nil {
		s.ToneProfessionalism = &model.ToneProfessionalism{
			CategoryScore:          *b,
			FillerWords:            bool(w.ToneProfessionalism.FillerWords),
			UnprofessionalLanguage: bool(w.ToneProfessionalism.Unprofessional),
		}
	}
	if b := w.ListeningRatio.base(); b != nil {
		s.ListeningRatio = &model.ListeningRatio{
			CategoryScore:  *b,
			EstimatedRatio: string(w.ListeningRatio.EstimatedRatio),
		}
	}
	s.ConversationGuidance = w.ConversationGuidance.base()
	if b := w.ObjectionHandling.base(); b != nil {
		s.ObjectionHandling = &model.ObjectionHandling{
			CategoryScore:    *b,
			ObjectionsRaised: w.ObjectionHandling.ObjectionsRaised.list(),
		}
	}
	if b := w.NextSteps.base(); b != nil {
		s.NextSteps = &model.NextSteps{
			CategoryScore: *b,
			StepsSet:      w.NextSteps.StepsSet.list(),
		}
	}
	if b := w.CallClosing.base(); b != nil {
		s.CallClosing = &model.CallClosing{
			Outcome:       parseOutcome(string(w.CallClosing.Outcome)),
			CategoryScore: *b,
		}
	}
	return s
}

func parseTimeline(s string) model.LeadTimeline {
	switch t := model.LeadTimeline(strings.ToLower(strings.TrimSpace(s))); t {
	case model.TimelineImmediate, model.TimelineNearTerm, model.TimelineOneToThree, model.TimelineVague, model.TimelineNone:
		return t
	}
	return model.TimelineVague
}

func parseServiceFit(s string) model.ServiceFit {
	switch f := model.ServiceFit(strings.ToLower(strings.TrimSpace(s))); f {
	case model.FitPerfect, model.FitGood, model.FitDecent, model.FitPoor, model.FitMismatch:
		return f
	}
	return model.FitDecent
}

func parseAction(s string) model.RecommendedAction {
	switch a := model.RecommendedAction(strings.ToLower(strings.TrimSpace(s))); a {
	case model.ActionPriority, model.ActionFollow24, model.ActionNurture, model.ActionEmailOnly, model.ActionNoFollowUp:
		return a
	}
	return model.ActionNurture
}

func parseOutcome(s string) model.ClosingOutcome {
	switch o := model.ClosingOutcome(strings.ToLower(strings.TrimSpace(s))); o {
	case model.OutcomeAppointment, model.OutcomeFollowUp, model.OutcomeDisposition, model.OutcomeNone:
		return o
	}
	return model.OutcomeNone
}
