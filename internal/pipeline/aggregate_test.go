package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nationwide-haul/call-tracker/internal/model"
)

func TestCategoryWeightsSumToOne(t *testing.T) {
	var sum float64
	for _, cw := range categoryWeights {
		sum += cw.weight
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Len(t, categoryWeights, 10)
}

func TestOverallScore(t *testing.T) {
	full := model.CallScore{
		CallContext:          &model.CallContextScore{CategoryScore: model.CategoryScore{Score: 10}},
		ObjectiveClarity:     &model.CategoryScore{Score: 5},
		InformationGathering: &model.InformationGathering{CategoryScore: model.CategoryScore{Score: 8}},
		InformationQuality:   &model.CategoryScore{Score: 5},
		ToneProfessionalism:  &model.ToneProfessionalism{CategoryScore: model.CategoryScore{Score: 5}},
		ListeningRatio:       &model.ListeningRatio{CategoryScore: model.CategoryScore{Score: 5}},
		ConversationGuidance: &model.CategoryScore{Score: 5},
		ObjectionHandling:    &model.ObjectionHandling{CategoryScore: model.CategoryScore{Score: 5}},
		NextSteps:            &model.NextSteps{CategoryScore: model.CategoryScore{Score: 5}},
		CallClosing:          &model.CallClosing{CategoryScore: model.CategoryScore{Score: 5}},
	}
	// 10*.05 + 8*.15 + 5*.8 = 0.5 + 1.2 + 4.0
	assert.Equal(t, 5.7, OverallScore(full))
	assert.Equal(t, OverallScore(full), OverallScore(full))
}

func TestOverallScore_RenormalizesMissingCategories(t *testing.T) {
	s := model.CallScore{
		ObjectiveClarity:     &model.CategoryScore{Score: 8},
		InformationGathering: &model.InformationGathering{CategoryScore: model.CategoryScore{Score: 6}},
	}
	// (8*.10 + 6*.15) / .25 = 6.8
	assert.Equal(t, 6.8, OverallScore(s))
}

func TestOverallScore_NoCategories(t *testing.T) {
	assert.Equal(t, 0.0, OverallScore(model.CallScore{LeadQuality: model.LeadQuality{Score: 9}}))
}

func TestOverallScore_IgnoresStoredValue(t *testing.T) {
	s := model.CallScore{ObjectiveClarity: &model.CategoryScore{Score: 4}, OverallScore: 9.9}
	assert.Equal(t, 4.0, OverallScore(s))
}
