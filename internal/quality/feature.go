package quality

import "github.com/visionhq/backlog-backend/internal/entity"

const (
	featureDomainWeight        = 20
	featureTechnicalWeight     = 20
	featureValueWeight         = 15
	featureActionabilityWeight = 15
	featureParentWeight        = 15
	featureCompletenessWeight  = 15

	featureMinDescriptionWords = 12
)

// FeatureAssessor scores feature candidates against their parent epic.
type FeatureAssessor struct{}

func NewFeatureAssessor() *FeatureAssessor {
	return &FeatureAssessor{}
}

func (a *FeatureAssessor) Kind() entity.WorkItemKind {
	return entity.KindFeature
}

func (a *FeatureAssessor) Assess(c *entity.WorkItemCandidate, domain string, parent *ParentContext) entity.QualityAssessment {
	if assessment, bad := rejectIncomplete(c); bad {
		return assessment
	}

	text := candidateText(c)
	subs := []subScore{
		checkDomainSpecificity(text, domain, featureDomainWeight),
		checkTechnicalClarity(text, featureTechnicalWeight),
		checkBusinessValue(text, featureValueWeight),
		checkActionability(c.Description, featureActionabilityWeight, featureMinDescriptionWords),
		checkParentAlignment(c, parent, featureParentWeight),
		checkCompleteness(c, parent, featureCompletenessWeight),
	}

	return assemble(subs, RatingFromScore)
}
