package quality

import "github.com/visionhq/backlog-backend/internal/entity"

// Epic rubric weights. Together they cap the score at 100 structurally.
const (
	epicDomainWeight        = 25
	epicTechnicalWeight     = 20
	epicValueWeight         = 20
	epicActionabilityWeight = 15
	epicCompletenessWeight  = 20

	epicMinDescriptionWords = 15
)

// EpicAssessor scores epic candidates against the vision statement.
//
// Note: the epic rubric carries its own rating thresholds (80/65/45) that
// predate the global band table and differ from it. The Ollama fallback path
// reads this rating; the direct path gates on the score alone. The two scales
// are deliberately kept separate pending product clarification.
type EpicAssessor struct{}

func NewEpicAssessor() *EpicAssessor {
	return &EpicAssessor{}
}

func (a *EpicAssessor) Kind() entity.WorkItemKind {
	return entity.KindEpic
}

func (a *EpicAssessor) Assess(c *entity.WorkItemCandidate, domain string, parent *ParentContext) entity.QualityAssessment {
	if assessment, bad := rejectIncomplete(c); bad {
		return assessment
	}

	text := candidateText(c)
	subs := []subScore{
		checkDomainSpecificity(text, domain, epicDomainWeight),
		checkTechnicalClarity(text, epicTechnicalWeight),
		checkBusinessValue(text, epicValueWeight),
		checkActionability(c.Description, epicActionabilityWeight, epicMinDescriptionWords),
		checkCompleteness(c, parent, epicCompletenessWeight),
	}

	return assemble(subs, epicRatingForScore)
}

func epicRatingForScore(score int) entity.Rating {
	switch {
	case score >= 80:
		return entity.RatingExcellent
	case score >= 65:
		return entity.RatingGood
	case score >= 45:
		return entity.RatingFair
	default:
		return entity.RatingPoor
	}
}
