package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/visionhq/backlog-backend/internal/entity"
)

var kindLabels = map[entity.WorkItemKind]string{
	entity.KindEpic:      "epic",
	entity.KindFeature:   "feature",
	entity.KindUserStory: "user story",
	entity.KindTask:      "task",
}

const candidateSchema = `{
  "title": "...",
  "description": "...",
  "priority": "high|medium|low",
  "complexity": "high|medium|low",
  "business_value": "...",
  "acceptance_criteria": ["..."],
  "tags": ["..."]
}`

func systemPrompt(kind entity.WorkItemKind, domain string) string {
	return fmt.Sprintf(
		"You are an experienced agile product strategist working in the %s domain. "+
			"You produce %s definitions for a product backlog. "+
			"Respond ONLY with valid JSON, no prose outside the JSON.",
		domain, kindLabels[kind],
	)
}

// generationPrompt asks for count candidates of the given kind, anchored on
// the vision and, below epic level, on the parent item.
func generationPrompt(req GenerateRequest, count int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Product vision:\n%s\n\n", req.Vision)
	if req.Parent != nil {
		fmt.Fprintf(&b, "Parent %s:\nTitle: %s\nDescription: %s\n\n",
			strings.ToLower(string(req.Parent.Kind)), req.Parent.Title, req.Parent.Description)
	}

	fmt.Fprintf(&b, "Generate exactly %d %ss for the %s domain.\n", count, kindLabels[req.Kind], req.Domain)
	b.WriteString("Each item must use domain-specific terminology, name the systems involved, ")
	b.WriteString("state the business value for a concrete user or role, and describe actionable scope.\n\n")
	fmt.Fprintf(&b, "Respond with a JSON array of %d objects, each shaped as:\n%s\n", count, candidateSchema)

	return b.String()
}

// improvementPrompt embeds the current candidate together with the specific
// issues and suggestions from its assessment, asking for one replacement.
func improvementPrompt(c *entity.WorkItemCandidate, assessment entity.QualityAssessment) string {
	var b strings.Builder

	current, _ := json.MarshalIndent(c, "", "  ")
	fmt.Fprintf(&b, "The following %s did not pass quality review:\n%s\n\n", kindLabels[c.Kind], current)

	if len(assessment.SpecificIssues) > 0 {
		b.WriteString("Issues found:\n")
		for _, issue := range assessment.SpecificIssues {
			fmt.Fprintf(&b, "- %s\n", issue)
		}
		b.WriteString("\n")
	}
	if len(assessment.ImprovementSuggestions) > 0 {
		b.WriteString("Apply these improvements:\n")
		for _, s := range assessment.ImprovementSuggestions {
			fmt.Fprintf(&b, "- %s\n", s)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Rewrite the item addressing every issue. Keep what already works.\n")
	fmt.Fprintf(&b, "Respond with a single JSON object shaped as:\n%s\n", candidateSchema)

	return b.String()
}
