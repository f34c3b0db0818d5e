package generation

import "github.com/visionhq/backlog-backend/internal/entity"

// OutcomeKind tags the result of gating one candidate. Discard-vs-fatal is an
// explicit variant instead of error types: sub-loop failures become discards
// that the cycle absorbs, fatal outcomes abort the whole cycle.
type OutcomeKind int

const (
	OutcomeAccepted OutcomeKind = iota
	OutcomeDiscarded
	OutcomeFatal
)

// CandidateOutcome is the tagged result of the per-candidate quality gate.
type CandidateOutcome struct {
	Kind       OutcomeKind
	Candidate  *entity.WorkItemCandidate
	Assessment entity.QualityAssessment
	Reason     string
	Err        error
}

func accepted(c *entity.WorkItemCandidate, a entity.QualityAssessment) CandidateOutcome {
	return CandidateOutcome{Kind: OutcomeAccepted, Candidate: c, Assessment: a}
}

func discarded(c *entity.WorkItemCandidate, a entity.QualityAssessment, reason string) CandidateOutcome {
	return CandidateOutcome{Kind: OutcomeDiscarded, Candidate: c, Assessment: a, Reason: reason}
}

func fatal(err error) CandidateOutcome {
	return CandidateOutcome{Kind: OutcomeFatal, Err: err}
}
