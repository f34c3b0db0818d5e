package quality_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visionhq/backlog-backend/internal/entity"
	"github.com/visionhq/backlog-backend/internal/quality"
)

var visionParent = &quality.ParentContext{
	Kind:        entity.KindVision,
	Title:       "Logistics platform vision",
	Description: "Build a logistics platform that streamlines warehouse operations, inventory tracking and shipment dispatch for regional carriers.",
}

func strongEpic() *entity.WorkItemCandidate {
	return &entity.WorkItemCandidate{
		Kind:  entity.KindEpic,
		Title: "Develop warehouse inventory tracking platform",
		Description: "Develop and implement a warehouse management platform with api integration " +
			"and a reporting dashboard that will optimize inventory tracking and dispatch " +
			"workflows for every operator and manager, reduce manual effort and improve " +
			"shipment visibility across the team.",
		Priority: "high",
	}
}

func TestEpicAssessorStrongCandidate(t *testing.T) {
	a := quality.NewEpicAssessor()

	assessment := a.Assess(strongEpic(), "logistics", visionParent)

	assert.Equal(t, 100, assessment.Score)
	assert.Equal(t, entity.RatingExcellent, assessment.Rating)
	assert.Empty(t, assessment.SpecificIssues)
	assert.NotEmpty(t, assessment.Strengths)
}

func TestEpicAssessorGenericCandidate(t *testing.T) {
	a := quality.NewEpicAssessor()
	c := &entity.WorkItemCandidate{
		Kind:        entity.KindEpic,
		Title:       "Improve things",
		Description: "Make it better for everyone soon.",
	}

	assessment := a.Assess(c, "logistics", visionParent)

	assert.Less(t, assessment.Score, quality.DefaultMinimumScore)
	assert.Equal(t, entity.RatingPoor, assessment.Rating)
	assert.NotEmpty(t, assessment.SpecificIssues)
	assert.NotEmpty(t, assessment.ImprovementSuggestions)
}

func TestEpicAssessorMissingDescription(t *testing.T) {
	a := quality.NewEpicAssessor()
	c := &entity.WorkItemCandidate{
		Kind:  entity.KindEpic,
		Title: "Develop warehouse inventory tracking platform",
	}

	assessment := a.Assess(c, "logistics", visionParent)

	assert.Equal(t, 0, assessment.Score)
	assert.Equal(t, entity.RatingPoor, assessment.Rating)
	require.NotEmpty(t, assessment.SpecificIssues)
}

func TestEpicAssessorDeterministic(t *testing.T) {
	a := quality.NewEpicAssessor()

	first := a.Assess(strongEpic(), "logistics", visionParent)
	second := a.Assess(strongEpic(), "logistics", visionParent)

	assert.Equal(t, first, second)
}

func TestStoryAssessorRewardsStoryFormat(t *testing.T) {
	a := quality.NewStoryAssessor()
	parent := &quality.ParentContext{
		Kind:        entity.KindFeature,
		Title:       "Pallet scanning at dispatch",
		Description: "Barcode scanning of pallets during warehouse dispatch keeps inventory counts accurate.",
	}

	formatted := &entity.WorkItemCandidate{
		Kind:  entity.KindUserStory,
		Title: "Scan pallet barcodes during dispatch",
		Description: "As a warehouse operator, I want to scan pallet barcodes during dispatch " +
			"so that inventory counts stay accurate and shipment errors are reduced.",
	}
	plain := &entity.WorkItemCandidate{
		Kind:  entity.KindUserStory,
		Title: "Scan pallet barcodes during dispatch",
		Description: "Warehouse operators scan pallet barcodes during dispatch to keep " +
			"inventory counts accurate and reduce shipment errors.",
	}

	withFormat := a.Assess(formatted, "logistics", parent)
	withoutFormat := a.Assess(plain, "logistics", parent)

	assert.Greater(t, withFormat.Score, withoutFormat.Score)
	assert.Contains(t, withFormat.Strengths, "follows the user story form")
}

func TestAssessorsCoverAllKinds(t *testing.T) {
	assessors := quality.Assessors()

	for _, kind := range []entity.WorkItemKind{
		entity.KindVision, entity.KindEpic, entity.KindFeature, entity.KindUserStory, entity.KindTask,
	} {
		a, ok := assessors[kind]
		require.True(t, ok, "no assessor for %s", kind)
		assert.Equal(t, kind, a.Kind())
	}
}
