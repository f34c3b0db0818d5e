package quality

import (
	"strings"

	"github.com/visionhq/backlog-backend/internal/entity"
)

// ParentContext carries the parent item's text for alignment checks. For
// epics the parent is the vision statement itself.
type ParentContext struct {
	Kind        entity.WorkItemKind
	Title       string
	Description string
}

// Assessor scores a candidate against the rubric for one work-item kind.
// Assessors are pure functions of (candidate, domain, parent): the same input
// always yields the same assessment.
type Assessor interface {
	Kind() entity.WorkItemKind
	Assess(c *entity.WorkItemCandidate, domain string, parent *ParentContext) entity.QualityAssessment
}

// subScore is the result of one weighted rubric check.
type subScore struct {
	points    int
	strengths []string
	issues    []string
}

// assemble sums sub-scores into an assessment, mapping the total through the
// provided rating function and attaching suggestions for every issue found.
func assemble(subs []subScore, rate func(int) entity.Rating) entity.QualityAssessment {
	total := 0
	var strengths, issues []string
	for _, s := range subs {
		total += s.points
		strengths = append(strengths, s.strengths...)
		issues = append(issues, s.issues...)
	}
	if total > 100 {
		total = 100
	}

	return entity.QualityAssessment{
		Rating:                 rate(total),
		Score:                  total,
		Strengths:              strengths,
		Weaknesses:             issues,
		SpecificIssues:         issues,
		ImprovementSuggestions: SuggestionsFor(issues),
	}
}

// rejectIncomplete returns the immediate POOR/0 assessment for candidates
// missing a title or description. Sub-scores are never computed in that case.
func rejectIncomplete(c *entity.WorkItemCandidate) (entity.QualityAssessment, bool) {
	var issues []string
	if strings.TrimSpace(c.Title) == "" {
		issues = append(issues, issueMissingTitle)
	}
	if strings.TrimSpace(c.Description) == "" {
		issues = append(issues, issueMissingDescription)
	}
	if len(issues) == 0 {
		return entity.QualityAssessment{}, false
	}

	return entity.QualityAssessment{
		Rating:                 entity.RatingPoor,
		Score:                  0,
		Weaknesses:             issues,
		SpecificIssues:         issues,
		ImprovementSuggestions: SuggestionsFor(issues),
	}, true
}

// candidateText is the lowercased title+description used by lexical checks.
func candidateText(c *entity.WorkItemCandidate) string {
	return strings.ToLower(c.Title + " " + c.Description)
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

// countTerms counts how many of the given terms occur in text. All checks are
// case-insensitive substring tests; text must already be lowercased.
func countTerms(text string, terms []string) int {
	found := 0
	for _, term := range terms {
		if strings.Contains(text, term) {
			found++
		}
	}
	return found
}

func containsAny(text string, terms []string) bool {
	return countTerms(text, terms) > 0
}

// keyNouns extracts the significant lowercased words of a text, used for
// overlap checks between a candidate and its parent context.
func keyNouns(text string) map[string]struct{} {
	nouns := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,;:!?()\"'")
		if len(w) > 4 {
			nouns[w] = struct{}{}
		}
	}
	return nouns
}

// nounOverlap counts candidate words that also appear in the parent text.
func nounOverlap(candidate string, parentNouns map[string]struct{}) int {
	overlap := 0
	seen := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(candidate)) {
		w = strings.Trim(w, ".,;:!?()\"'")
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		if _, ok := parentNouns[w]; ok {
			overlap++
		}
	}
	return overlap
}
