package quality

// Issue strings emitted by the sub-score checks. Suggestions are a fixed
// lookup from issue to remediation, not generated text.
const (
	issueMissingTitle       = "title is missing"
	issueMissingDescription = "description is missing"

	issueNoDomainTerms     = "no domain-specific terminology"
	issueFewDomainTerms    = "only generic domain coverage"
	issueNoTechTerms       = "no technical or architectural context"
	issueNoValueStatement  = "no measurable business value"
	issueNoRoleReference   = "no user or role is referenced"
	issueNotActionable     = "description is not actionable"
	issueDescriptionShort  = "description is too short"
	issueTitleOutOfBounds  = "title length is out of bounds"
	issueNoParentAlignment = "does not align with its parent item"
	issueWeakParentOverlap = "weak overlap with the parent item"
	issueNoStoryFormat     = "story does not follow the as-a/i-want/so-that form"
	issueNoAcceptanceHints = "no acceptance criteria or verification hints"
)

var suggestionTable = map[string]string{
	issueMissingTitle:       "provide a concise, descriptive title",
	issueMissingDescription: "provide a description explaining scope and intent",
	issueNoDomainTerms:      "use terminology specific to the target domain",
	issueFewDomainTerms:     "reference at least three concrete domain concepts",
	issueNoTechTerms:        "name the systems, services or interfaces involved",
	issueNoValueStatement:   "state the business outcome this item optimizes or improves",
	issueNoRoleReference:    "identify the user or role that benefits",
	issueNotActionable:      "start the description with a concrete action verb",
	issueDescriptionShort:   "expand the description with scope, constraints and outcomes",
	issueTitleOutOfBounds:   "keep the title between three and twelve words",
	issueNoParentAlignment:  "reuse the key concepts of the parent item",
	issueWeakParentOverlap:  "tie the item explicitly back to its parent's goals",
	issueNoStoryFormat:      "rewrite as: as a <role>, I want <capability>, so that <benefit>",
	issueNoAcceptanceHints:  "add acceptance criteria describing verifiable behavior",
}

const defaultSuggestion = "revise the item to address the reported issue"

// SuggestionsFor maps issues to improvement suggestions via the fixed table.
func SuggestionsFor(issues []string) []string {
	if len(issues) == 0 {
		return nil
	}
	suggestions := make([]string, 0, len(issues))
	for _, issue := range issues {
		if s, ok := suggestionTable[issue]; ok {
			suggestions = append(suggestions, s)
			continue
		}
		suggestions = append(suggestions, defaultSuggestion)
	}
	return suggestions
}
