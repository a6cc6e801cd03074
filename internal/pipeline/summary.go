package pipeline

import (
	"sort"
	"time"

	"github.com/nationwide-haul/call-tracker/internal/model"
	"github.com/nationwide-haul/call-tracker/internal/roster"
)

const (
	topStrengths     = 3
	topWeaknesses    = 3
	topInsights      = 5
	qualifiedLeadMin = 7.0
	trendMinCalls    = 4
	trendMinDelta    = 0.5
	noPerformer      = "N/A"
)

// BuildSummaries groups scored calls by rep and rolls each group up. Reps
// appear sorted by average score, best first; ties keep first-seen order.
// Within a rep, calls run oldest first when every call date is canonical and
// keep input order otherwise.
func BuildSummaries(calls []model.AnalyzedCall, r *roster.Roster) []model.RepSummary {
	var order []string
	groups := make(map[string][]model.AnalyzedCall)
	for _, c := range calls {
		name := c.ResolvedRepName()
		if _, ok := groups[name]; !ok {
			order = append(order, name)
		}
		groups[name] = append(groups[name], c)
	}

	summaries := make([]model.RepSummary, 0, len(order))
	for _, name := range order {
		summaries = append(summaries, summarizeRep(name, groups[name], r))
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].AverageScore > summaries[j].AverageScore
	})
	return summaries
}

func summarizeRep(name string, calls []model.AnalyzedCall, r *roster.Roster) model.RepSummary {
	calls = chronological(calls)
	scores := make([]float64, len(calls))
	leads := make([]float64, len(calls))
	var strengths, weaknesses, insights tally
	qualified := 0

	for i, c := range calls {
		scores[i] = c.Score.OverallScore
		leads[i] = c.Score.LeadQuality.Score
		if leads[i] >= qualifiedLeadMin {
			qualified++
		}
		strengths.add(c.Score.Strengths)
		weaknesses.add(c.Score.Weaknesses)
		insights.add(c.Score.CoachingInsights)
	}

	div := roster.Division{}
	if r != nil {
		div = r.Division(name)
	}

	return model.RepSummary{
		RepName:          name,
		Division:         div.ID,
		DivisionName:     div.Name,
		TotalCalls:       len(calls),
		AverageScore:     model.Round1(mean(scores)),
		AverageLeadScore: model.Round1(mean(leads)),
		Strengths:        strengths.top(topStrengths),
		Weaknesses:       weaknesses.top(topWeaknesses),
		CoachingInsights: insights.top(topInsights),
		CallScores:       scores,
		LeadScores:       leads,
		Trend:            trend(scores),
		QualifiedLeads:   qualified,
	}
}

// chronological returns calls sorted by call date, stable for equal dates.
// A call whose date is not in startTimeLayout leaves the order untouched.
func chronological(calls []model.AnalyzedCall) []model.AnalyzedCall {
	at := make([]time.Time, len(calls))
	for i, c := range calls {
		t, err := time.Parse(startTimeLayout, c.Record.CallDate)
		if err != nil {
			return calls
		}
		at[i] = t
	}

	idx := make([]int, len(calls))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return at[idx[a]].Before(at[idx[b]]) })

	out := make([]model.AnalyzedCall, len(calls))
	for i, j := range idx {
		out[i] = calls[j]
	}
	return out
}

// trend compares the mean of the first half of scores with the second.
// The second half takes the extra score when the count is odd.
func trend(scores []float64) model.Trend {
	if len(scores) < trendMinCalls {
		return model.TrendStable
	}
	mid := len(scores) / 2
	first, second := mean(scores[:mid]), mean(scores[mid:])
	switch {
	case second-first > trendMinDelta:
		return model.TrendImproving
	case first-second > trendMinDelta:
		return model.TrendDeclining
	default:
		return model.TrendStable
	}
}

// BuildStats computes the fleet-wide rollup. summaries must already be
// sorted best first. silver is every Silver record of the run, including
// calls that were never scored.
func BuildStats(calls []model.AnalyzedCall, summaries []model.RepSummary, silver []model.SilverCall) model.OverallStats {
	stats := model.OverallStats{
		TotalCalls:       len(calls),
		TopPerformer:     noPerformer,
		NeedsImprovement: noPerformer,
		TotalInFile:      len(silver),
	}

	scores := make([]float64, len(calls))
	leads := make([]float64, len(calls))
	for i, c := range calls {
		scores[i] = c.Score.OverallScore
		leads[i] = c.Score.LeadQuality.Score
		if leads[i] >= qualifiedLeadMin {
			stats.QualifiedLeads++
		}
		if len(c.Score.LeadQuality.RedFlags) > 0 {
			stats.RedFlagCalls++
		}
	}
	stats.AverageScore = model.Round1(mean(scores))
	stats.AverageLeadScore = model.Round1(mean(leads))

	if len(summaries) > 0 {
		stats.TopPerformer = summaries[0].RepName
		stats.NeedsImprovement = summaries[len(summaries)-1].RepName
	}

	for _, s := range silver {
		switch s.Triage.Classification {
		case model.ClassIVROnly:
			stats.IVRCalls++
		case model.ClassSpam, model.ClassWrongNumber:
			stats.SpamCalls++
		}
	}
	return stats
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

// tally counts phrases, remembering first-seen order for ties.
type tally struct {
	order  []string
	counts map[string]int
}

func (t *tally) add(items []string) {
	if t.counts == nil {
		t.counts = make(map[string]int)
	}
	for _, item := range items {
		if _, ok := t.counts[item]; !ok {
			t.order = append(t.order, item)
		}
		t.counts[item]++
	}
}

// top returns up to n phrases, most frequent first.
func (t *tally) top(n int) []string {
	ranked := make([]string, len(t.order))
	copy(ranked, t.order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return t.counts[ranked[i]] > t.counts[ranked[j]]
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
