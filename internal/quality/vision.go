package quality

import "github.com/visionhq/backlog-backend/internal/entity"

const (
	visionDomainWeight        = 25
	visionTechnicalWeight     = 15
	visionValueWeight         = 25
	visionActionabilityWeight = 10
	visionCompletenessWeight  = 25

	visionMinDescriptionWords = 25
)

// VisionAssessor scores the vision statement itself before any generation
// starts. The vision is the root of the hierarchy and has no parent context.
type VisionAssessor struct{}

func NewVisionAssessor() *VisionAssessor {
	return &VisionAssessor{}
}

func (a *VisionAssessor) Kind() entity.WorkItemKind {
	return entity.KindVision
}

func (a *VisionAssessor) Assess(c *entity.WorkItemCandidate, domain string, _ *ParentContext) entity.QualityAssessment {
	if assessment, bad := rejectIncomplete(c); bad {
		return assessment
	}

	text := candidateText(c)
	subs := []subScore{
		checkDomainSpecificity(text, domain, visionDomainWeight),
		checkTechnicalClarity(text, visionTechnicalWeight),
		checkBusinessValue(text, visionValueWeight),
		checkActionability(c.Description, visionActionabilityWeight, visionMinDescriptionWords),
		checkCompleteness(c, nil, visionCompletenessWeight),
	}

	return assemble(subs, RatingFromScore)
}

// Assessors returns the full assessor set keyed by work-item kind.
func Assessors() map[entity.WorkItemKind]Assessor {
	return map[entity.WorkItemKind]Assessor{
		entity.KindVision:    NewVisionAssessor(),
		entity.KindEpic:      NewEpicAssessor(),
		entity.KindFeature:   NewFeatureAssessor(),
		entity.KindUserStory: NewStoryAssessor(),
		entity.KindTask:      NewTaskAssessor(),
	}
}
