package entity

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors
var (
	// Job errors
	ErrJobNotFound    = errors.New("backlog job not found")
	ErrJobNotFinished = errors.New("backlog job is not finished")
	ErrInvalidJob     = errors.New("invalid job data")

	// Work item errors
	ErrWorkItemNotFound = errors.New("work item not found")

	// LLM errors
	ErrLLMTimeout       = errors.New("llm call timed out")
	ErrEmptyLLMResponse = errors.New("llm returned an empty response")
	ErrNoCandidates     = errors.New("no candidates could be parsed from the llm response")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// ZeroAcceptedError is raised when an entire generation cycle produced no
// candidate above the quality threshold. Callers must never silently receive
// an empty backlog, so this always surfaces as a hard failure with enough
// context to tell a weak model from a transient infrastructure problem.
type ZeroAcceptedError struct {
	Kind     WorkItemKind
	Domain   string
	Attempts int
	Elapsed  time.Duration
	MinScore int
}

func (e *ZeroAcceptedError) Error() string {
	return fmt.Sprintf(
		"no %s candidates reached the minimum quality score %d for domain %q after %d attempts (%s elapsed)",
		e.Kind, e.MinScore, e.Domain, e.Attempts, e.Elapsed.Round(time.Millisecond),
	)
}

// ModelsExhaustedError is raised on the Ollama fallback path when every
// configured model ran out of attempts without a single accepted candidate.
type ModelsExhaustedError struct {
	LastModel string
	Attempts  int
	LastErr   error
}

func (e *ModelsExhaustedError) Error() string {
	if e.LastErr != nil {
		return fmt.Sprintf("all fallback models exhausted after %d attempts, last model %q failed: %v",
			e.Attempts, e.LastModel, e.LastErr)
	}
	return fmt.Sprintf("all fallback models exhausted after %d attempts, last model %q", e.Attempts, e.LastModel)
}

func (e *ModelsExhaustedError) Unwrap() error {
	return e.LastErr
}
