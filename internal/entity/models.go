package entity

import (
	"fmt"
	"time"
)

type WorkItemKind string

const (
	KindVision    WorkItemKind = "VISION"
	KindEpic      WorkItemKind = "EPIC"
	KindFeature   WorkItemKind = "FEATURE"
	KindUserStory WorkItemKind = "USER_STORY"
	KindTask      WorkItemKind = "TASK"
)

func (k WorkItemKind) Validate() error {
	switch k {
	case KindVision, KindEpic, KindFeature, KindUserStory, KindTask:
		return nil
	default:
		return fmt.Errorf("unknown work item kind: %s", k)
	}
}

// ParentKind returns the kind one level up in the backlog hierarchy.
// The vision statement is the root and has no parent.
func (k WorkItemKind) ParentKind() (WorkItemKind, bool) {
	switch k {
	case KindEpic:
		return KindVision, true
	case KindFeature:
		return KindEpic, true
	case KindUserStory:
		return KindFeature, true
	case KindTask:
		return KindUserStory, true
	default:
		return "", false
	}
}

type JobStatus string

// Job status represents the current phase of a backlog generation job
const (
	JobStatusPending            JobStatus = "PENDING"             // Job accepted, waiting for a worker slot
	JobStatusGeneratingEpics    JobStatus = "GENERATING_EPICS"    // Producing epics from the vision
	JobStatusGeneratingFeatures JobStatus = "GENERATING_FEATURES" // Decomposing epics into features
	JobStatusGeneratingStories  JobStatus = "GENERATING_STORIES"  // Decomposing features into user stories
	JobStatusGeneratingTasks    JobStatus = "GENERATING_TASKS"    // Decomposing stories into tasks
	JobStatusDone               JobStatus = "DONE"                // Job completed, backlog available
	JobStatusError              JobStatus = "ERROR"               // Job failed
)

func (s JobStatus) Terminal() bool {
	return s == JobStatusDone || s == JobStatusError
}

type ProviderKind string

const (
	ProviderOpenAI ProviderKind = "OPENAI"
	ProviderGrok   ProviderKind = "GROK"
	ProviderOllama ProviderKind = "OLLAMA"
	ProviderMock   ProviderKind = "MOCK"
)

func (p ProviderKind) Validate() error {
	switch p {
	case ProviderOpenAI, ProviderGrok, ProviderOllama, ProviderMock:
		return nil
	default:
		return fmt.Errorf("unknown provider: %s", p)
	}
}

// Direct reports whether the provider runs in direct mode (single model,
// wall-clock and attempt budgets) as opposed to the Ollama fallback chain.
func (p ProviderKind) Direct() bool {
	return p != ProviderOllama
}

// BacklogJob is one end-to-end request to turn a vision statement into a backlog.
type BacklogJob struct {
	ID          string       `json:"job_id"`
	Status      JobStatus    `json:"status"`
	Vision      string       `json:"vision"`
	Domain      string       `json:"domain"`
	Provider    ProviderKind `json:"provider"`
	EpicCount   int          `json:"epic_count"`
	Error       *string      `json:"error,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

// WorkItem is an accepted backlog item persisted after quality gating.
type WorkItem struct {
	ID                 string       `json:"id"`
	JobID              string       `json:"job_id"`
	ParentID           *string      `json:"parent_id,omitempty"`
	Kind               WorkItemKind `json:"kind"`
	Title              string       `json:"title"`
	Description        string       `json:"description"`
	Priority           string       `json:"priority,omitempty"`
	Complexity         string       `json:"complexity,omitempty"`
	AcceptanceCriteria []string     `json:"acceptance_criteria,omitempty"`
	QualityScore       int          `json:"quality_score"`
	QualityRating      string       `json:"quality_rating"`
	Position           int          `json:"position"`
	ExternalID         *int         `json:"external_id,omitempty"` // Azure DevOps work item id after sync
	CreatedAt          time.Time    `json:"created_at"`
}

type ResultFormat string

const (
	FormatMarkdown ResultFormat = "markdown"
	FormatPDF      ResultFormat = "pdf"
	FormatDOCX     ResultFormat = "docx"
)

func (f ResultFormat) Validate() error {
	switch f {
	case FormatMarkdown, FormatPDF, FormatDOCX:
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", f)
	}
}
