package quality

import "github.com/visionhq/backlog-backend/internal/entity"

const (
	taskTechnicalWeight     = 25
	taskActionabilityWeight = 25
	taskParentWeight        = 25
	taskAcceptanceWeight    = 10
	taskCompletenessWeight  = 15

	taskMinDescriptionWords = 8
)

// TaskAssessor scores task candidates against their parent user story.
// Tasks are implementation units: technical clarity and actionability carry
// most of the weight, domain vocabulary almost none.
type TaskAssessor struct{}

func NewTaskAssessor() *TaskAssessor {
	return &TaskAssessor{}
}

func (a *TaskAssessor) Kind() entity.WorkItemKind {
	return entity.KindTask
}

func (a *TaskAssessor) Assess(c *entity.WorkItemCandidate, domain string, parent *ParentContext) entity.QualityAssessment {
	if assessment, bad := rejectIncomplete(c); bad {
		return assessment
	}

	text := candidateText(c)
	subs := []subScore{
		checkTechnicalClarity(text, taskTechnicalWeight),
		checkActionability(c.Description, taskActionabilityWeight, taskMinDescriptionWords),
		checkParentAlignment(c, parent, taskParentWeight),
		checkAcceptanceHints(c, taskAcceptanceWeight),
		checkCompleteness(c, parent, taskCompletenessWeight),
	}

	return assemble(subs, RatingFromScore)
}
