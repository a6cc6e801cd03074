package pipeline

import "github.com/nationwide-haul/call-tracker/internal/model"

// categoryWeights sum to 1.0.
var categoryWeights = []struct {
	category model.Category
	weight   float64
}{
	{model.CategoryCallContext, 0.05},
	{model.CategoryObjectiveClarity, 0.10},
	{model.CategoryInformationGathering, 0.15},
	{model.CategoryInformationQuality, 0.10},
	{model.CategoryToneProfessionalism, 0.10},
	{model.CategoryListeningRatio, 0.10},
	{model.CategoryConversationGuidance, 0.10},
	{model.CategoryObjectionHandling, 0.10},
	{model.CategoryNextSteps, 0.10},
	{model.CategoryCallClosing, 0.10},
}

// OverallScore is the weighted average of the category scores present in
// s, renormalized over those categories and rounded to one decimal. It
// returns 0 when no category is present.
func OverallScore(s model.CallScore) float64 {
	var total, weights float64
	for _, cw := range categoryWeights {
		score, ok := s.CategoryScore(cw.category)
		if !ok {
			continue
		}
		total += score * cw.weight
		weights += cw.weight
	}
	if weights == 0 {
		return 0
	}
	return model.Round1(total / weights)
}
