package quality

import (
	"strings"

	"github.com/visionhq/backlog-backend/internal/entity"
)

// Shared rubric checks. Each check returns a subScore worth at most max
// points; per-kind assessors decide the weight they assign to each check.

func checkDomainSpecificity(text, domain string, max int) subScore {
	indicators := indicatorsForDomain(domain)
	found := countTerms(text, indicators)

	switch {
	case found >= 3:
		return subScore{points: max, strengths: []string{"strong domain specificity"}}
	case found >= 1:
		return subScore{points: max * found / 3, issues: []string{issueFewDomainTerms}}
	default:
		return subScore{issues: []string{issueNoDomainTerms}}
	}
}

func checkTechnicalClarity(text string, max int) subScore {
	found := countTerms(text, techTerms)

	switch {
	case found >= 2:
		return subScore{points: max, strengths: []string{"clear technical context"}}
	case found == 1:
		return subScore{points: max / 2}
	default:
		return subScore{issues: []string{issueNoTechTerms}}
	}
}

func checkBusinessValue(text string, max int) subScore {
	valuePart := max * 3 / 5
	rolePart := max - valuePart

	var s subScore
	if containsAny(text, valueVerbs) {
		s.points += valuePart
		s.strengths = append(s.strengths, "states a business outcome")
	} else {
		s.issues = append(s.issues, issueNoValueStatement)
	}
	if containsAny(text, roleTerms) {
		s.points += rolePart
	} else {
		s.issues = append(s.issues, issueNoRoleReference)
	}
	return s
}

func checkActionability(description string, max, minWords int) subScore {
	text := strings.ToLower(description)
	hasVerb := containsAny(text, actionVerbs)
	longEnough := wordCount(description) >= minWords

	switch {
	case hasVerb && longEnough:
		return subScore{points: max, strengths: []string{"actionable description"}}
	case hasVerb:
		return subScore{points: max / 2, issues: []string{issueDescriptionShort}}
	case longEnough:
		return subScore{issues: []string{issueNotActionable}}
	default:
		return subScore{issues: []string{issueNotActionable, issueDescriptionShort}}
	}
}

// checkCompleteness inspects title bounds, description length and overlap with
// the parent context's key nouns. Parent may be nil (vision assessment).
func checkCompleteness(c *entity.WorkItemCandidate, parent *ParentContext, max int) subScore {
	titlePart := max * 3 / 10
	descPart := max * 4 / 10
	overlapPart := max - titlePart - descPart

	var s subScore

	titleWords := wordCount(c.Title)
	if titleWords >= 3 && titleWords <= 12 {
		s.points += titlePart
	} else {
		s.issues = append(s.issues, issueTitleOutOfBounds)
	}

	if wordCount(c.Description) >= 20 {
		s.points += descPart
	} else {
		s.issues = append(s.issues, issueDescriptionShort)
	}

	if parent == nil {
		// No parent to compare against: award the overlap share outright.
		s.points += overlapPart
		return s
	}

	parentNouns := keyNouns(parent.Title + " " + parent.Description)
	if nounOverlap(c.Title+" "+c.Description, parentNouns) >= 2 {
		s.points += overlapPart
	} else {
		s.issues = append(s.issues, issueWeakParentOverlap)
	}
	return s
}

// checkParentAlignment is the only cross-entity check: lexical overlap between
// a child item and its parent epic/feature/story.
func checkParentAlignment(c *entity.WorkItemCandidate, parent *ParentContext, max int) subScore {
	if parent == nil {
		return subScore{issues: []string{issueNoParentAlignment}}
	}

	parentNouns := keyNouns(parent.Title + " " + parent.Description)
	overlap := nounOverlap(c.Title+" "+c.Description, parentNouns)

	switch {
	case overlap >= 3:
		return subScore{points: max, strengths: []string{"well aligned with parent"}}
	case overlap >= 1:
		return subScore{points: max / 2, issues: []string{issueWeakParentOverlap}}
	default:
		return subScore{issues: []string{issueNoParentAlignment}}
	}
}

func checkStoryFormat(description string, max int) subScore {
	text := strings.ToLower(description)
	if strings.Contains(text, "as a") && (strings.Contains(text, "i want") || strings.Contains(text, "so that")) {
		return subScore{points: max, strengths: []string{"follows the user story form"}}
	}
	return subScore{issues: []string{issueNoStoryFormat}}
}

func checkAcceptanceHints(c *entity.WorkItemCandidate, max int) subScore {
	if len(c.AcceptanceCriteria) > 0 {
		return subScore{points: max, strengths: []string{"has acceptance criteria"}}
	}
	text := candidateText(c)
	if containsAny(text, []string{"verify", "validate", "test", "criteria"}) {
		return subScore{points: max / 2}
	}
	return subScore{issues: []string{issueNoAcceptanceHints}}
}
