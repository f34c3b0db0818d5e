package quality

import "github.com/visionhq/backlog-backend/internal/entity"

const (
	storyDomainWeight        = 10
	storyValueWeight         = 20
	storyFormatWeight        = 20
	storyActionabilityWeight = 10
	storyParentWeight        = 20
	storyCompletenessWeight  = 20

	storyMinDescriptionWords = 10
)

// StoryAssessor scores user story candidates against their parent feature.
// The story-form check replaces part of the technical rubric: stories are
// judged on user perspective, not architecture.
type StoryAssessor struct{}

func NewStoryAssessor() *StoryAssessor {
	return &StoryAssessor{}
}

func (a *StoryAssessor) Kind() entity.WorkItemKind {
	return entity.KindUserStory
}

func (a *StoryAssessor) Assess(c *entity.WorkItemCandidate, domain string, parent *ParentContext) entity.QualityAssessment {
	if assessment, bad := rejectIncomplete(c); bad {
		return assessment
	}

	text := candidateText(c)
	subs := []subScore{
		checkDomainSpecificity(text, domain, storyDomainWeight),
		checkBusinessValue(text, storyValueWeight),
		checkStoryFormat(c.Description, storyFormatWeight),
		checkActionability(c.Description, storyActionabilityWeight, storyMinDescriptionWords),
		checkParentAlignment(c, parent, storyParentWeight),
		checkCompleteness(c, parent, storyCompletenessWeight),
	}

	return assemble(subs, RatingFromScore)
}
