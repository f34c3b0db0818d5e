package entity

// WorkItemCandidate is one backlog item as produced by a single LLM call.
// It is owned by the generation cycle that created it, mutated in place during
// improvement passes, and discarded if it never passes the quality gate.
type WorkItemCandidate struct {
	Kind               WorkItemKind `json:"-"`
	Title              string       `json:"title"`
	Description        string       `json:"description"`
	Priority           string       `json:"priority,omitempty"`
	Complexity         string       `json:"complexity,omitempty"`
	BusinessValue      string       `json:"business_value,omitempty"`
	AcceptanceCriteria []string     `json:"acceptance_criteria,omitempty"`
	Tags               []string     `json:"tags,omitempty"`
	StoryPoints        int          `json:"story_points,omitempty"`
}

// Replace overwrites the candidate's generated fields with those of an
// improved version, keeping the kind. Empty fields in the replacement keep
// the current values so a partial improvement never erases content.
func (c *WorkItemCandidate) Replace(improved *WorkItemCandidate) {
	if improved == nil {
		return
	}
	if improved.Title != "" {
		c.Title = improved.Title
	}
	if improved.Description != "" {
		c.Description = improved.Description
	}
	if improved.Priority != "" {
		c.Priority = improved.Priority
	}
	if improved.Complexity != "" {
		c.Complexity = improved.Complexity
	}
	if improved.BusinessValue != "" {
		c.BusinessValue = improved.BusinessValue
	}
	if len(improved.AcceptanceCriteria) > 0 {
		c.AcceptanceCriteria = improved.AcceptanceCriteria
	}
	if len(improved.Tags) > 0 {
		c.Tags = improved.Tags
	}
	if improved.StoryPoints != 0 {
		c.StoryPoints = improved.StoryPoints
	}
}

// ToWorkItem converts an accepted candidate into a persistable work item.
func (c *WorkItemCandidate) ToWorkItem(jobID string, parentID *string, position int, assessment QualityAssessment) *WorkItem {
	return &WorkItem{
		JobID:              jobID,
		ParentID:           parentID,
		Kind:               c.Kind,
		Title:              c.Title,
		Description:        c.Description,
		Priority:           c.Priority,
		Complexity:         c.Complexity,
		AcceptanceCriteria: c.AcceptanceCriteria,
		QualityScore:       assessment.Score,
		QualityRating:      string(assessment.Rating),
		Position:           position,
	}
}
