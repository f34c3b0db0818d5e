package entity

// SubmitJobRequest is the payload of POST /api/v1/backlog/jobs.
type SubmitJobRequest struct {
	Vision    string  `json:"vision"`
	Domain    string  `json:"domain"`
	Provider  *string `json:"provider,omitempty"`
	EpicCount *int    `json:"epic_count,omitempty"`
}

// SyncJobRequest is the payload of POST /api/v1/backlog/jobs/{id}/sync.
type SyncJobRequest struct {
	Project string `json:"project"`
}

// SyncJobResult reports the outcome of an Azure DevOps upload.
type SyncJobResult struct {
	Synced int            `json:"synced"`
	IDs    map[string]int `json:"ids"` // work item id -> Azure DevOps id
}

// ErrorResponse is the error body returned by the HTTP API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
