package generation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visionhq/backlog-backend/internal/entity"
	"github.com/visionhq/backlog-backend/internal/quality"
	"go.uber.org/zap"
)

type stubCaller struct {
	fn    func(system, user, model string) (string, error)
	calls int
}

func (s *stubCaller) Call(_ context.Context, system, user, model string, _ time.Duration) (string, entity.LLMUsage, error) {
	s.calls++
	out, err := s.fn(system, user, model)
	return out, entity.LLMUsage{}, err
}

func testLoopConfig() Config {
	return Config{
		MaxQualityRetries:     3,
		MaxGenerationAttempts: 10,
		TimeBudget:            time.Minute,
		CallTimeout:           time.Second,
		Quality:               quality.DefaultConfig(),
		FallbackModels:        testChain(),
	}
}

const testVision = "Build a logistics platform that streamlines warehouse operations, " +
	"inventory tracking and shipment dispatch for regional carriers."

const strongDescription = "Develop and implement a warehouse management platform with api " +
	"integration and a reporting dashboard that will optimize inventory tracking and dispatch " +
	"workflows for every operator and manager, reduce manual effort and improve shipment " +
	"visibility across the team."

func visionContext() *quality.ParentContext {
	return &quality.ParentContext{
		Kind:        entity.KindVision,
		Title:       "Logistics platform vision",
		Description: testVision,
	}
}

func directRequest(target int) GenerateRequest {
	return GenerateRequest{
		JobID:       "job-1",
		Kind:        entity.KindEpic,
		Domain:      "logistics",
		Vision:      testVision,
		Parent:      visionContext(),
		TargetCount: target,
		Provider:    entity.ProviderOpenAI,
		Model:       "gpt-4o",
	}
}

// fenced wraps a value in the markdown code fence real providers tend to emit.
func fenced(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return "Here is the backlog:\n```json\n" + string(data) + "\n```"
}

func TestGenerateAcceptsStrongCandidates(t *testing.T) {
	batch := []entity.WorkItemCandidate{
		{Title: "Develop warehouse inventory tracking platform", Description: strongDescription, Priority: "high"},
		{Title: "Build shipment dispatch management dashboard", Description: strongDescription, Priority: "medium"},
	}
	caller := &stubCaller{fn: func(_, _, _ string) (string, error) {
		return fenced(batch), nil
	}}
	loop := NewLoop(caller, nil, testLoopConfig(), zap.NewNop())

	accepted, err := loop.Generate(context.Background(), directRequest(2))

	require.NoError(t, err)
	require.Len(t, accepted, 2)
	assert.Equal(t, 1, caller.calls)
	for _, item := range accepted {
		assert.Equal(t, entity.KindEpic, item.Candidate.Kind)
		assert.GreaterOrEqual(t, item.Assessment.Score, quality.DefaultMinimumScore)
	}
}

func TestGenerateImprovesFailingCandidate(t *testing.T) {
	weak := []entity.WorkItemCandidate{
		{Title: "Improve things", Description: "Make it better for everyone soon."},
	}
	strong := entity.WorkItemCandidate{
		Title:       "Develop warehouse inventory tracking platform",
		Description: strongDescription,
		Priority:    "high",
	}
	caller := &stubCaller{fn: func(_, user, _ string) (string, error) {
		if strings.Contains(user, "did not pass quality review") {
			return fenced(strong), nil
		}
		return fenced(weak), nil
	}}
	loop := NewLoop(caller, nil, testLoopConfig(), zap.NewNop())

	accepted, err := loop.Generate(context.Background(), directRequest(1))

	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.Equal(t, strong.Title, accepted[0].Candidate.Title)
	// One generation call plus one improvement call.
	assert.Equal(t, 2, caller.calls)
}

func TestGenerateZeroAcceptedFailsLoud(t *testing.T) {
	weak := []entity.WorkItemCandidate{
		{Title: "Improve things", Description: "Make it better for everyone soon."},
	}
	caller := &stubCaller{fn: func(_, user, _ string) (string, error) {
		if strings.Contains(user, "did not pass quality review") {
			return fenced(weak[0]), nil
		}
		return fenced(weak), nil
	}}
	loop := NewLoop(caller, nil, testLoopConfig(), zap.NewNop())

	accepted, err := loop.Generate(context.Background(), directRequest(2))

	require.Error(t, err)
	assert.Nil(t, accepted)

	var zae *entity.ZeroAcceptedError
	require.ErrorAs(t, err, &zae)
	assert.Equal(t, entity.KindEpic, zae.Kind)
	assert.Equal(t, "logistics", zae.Domain)
	assert.Equal(t, quality.DefaultMinimumScore, zae.MinScore)
	// One batch call, two improvement passes, one backfill call.
	assert.Equal(t, 4, zae.Attempts)
}

func TestGenerateRespectsAttemptBudget(t *testing.T) {
	caller := &stubCaller{fn: func(_, _, _ string) (string, error) {
		return "no structured output here", nil
	}}
	cfg := testLoopConfig()
	cfg.MaxGenerationAttempts = 3
	loop := NewLoop(caller, nil, cfg, zap.NewNop())

	_, err := loop.Generate(context.Background(), directRequest(2))

	var zae *entity.ZeroAcceptedError
	require.ErrorAs(t, err, &zae)
	assert.Equal(t, 3, zae.Attempts)
	assert.Equal(t, 3, caller.calls)
}

func TestGenerateExhaustsFallbackChain(t *testing.T) {
	errUnavailable := errors.New("model unavailable")
	caller := &stubCaller{fn: func(_, _, _ string) (string, error) {
		return "", errUnavailable
	}}
	loop := NewLoop(caller, nil, testLoopConfig(), zap.NewNop())

	req := directRequest(2)
	req.Provider = entity.ProviderOllama
	req.Model = ""

	_, err := loop.Generate(context.Background(), req)

	var mee *entity.ModelsExhaustedError
	require.ErrorAs(t, err, &mee)
	assert.Equal(t, "model-b", mee.LastModel)
	assert.Equal(t, 3, mee.Attempts)
	assert.ErrorIs(t, err, errUnavailable)
	assert.Equal(t, 3, caller.calls)
}

func TestGenerateUnknownKind(t *testing.T) {
	caller := &stubCaller{fn: func(_, _, _ string) (string, error) {
		return "[]", nil
	}}
	loop := NewLoop(caller, nil, testLoopConfig(), zap.NewNop())

	req := directRequest(1)
	req.Kind = entity.WorkItemKind("UNKNOWN")

	_, err := loop.Generate(context.Background(), req)

	assert.ErrorIs(t, err, entity.ErrInvalidParameter)
	assert.Equal(t, 0, caller.calls)
}

func TestParseCandidatesSingleObject(t *testing.T) {
	raw := fenced(entity.WorkItemCandidate{Title: "Develop dock inspection checklist", Description: "Inspect inbound freight at the dock."})

	candidates := parseCandidates(raw, entity.KindTask)

	require.Len(t, candidates, 1)
	assert.Equal(t, entity.KindTask, candidates[0].Kind)
}

func TestParseCandidatesGarbage(t *testing.T) {
	assert.Empty(t, parseCandidates("not json", entity.KindTask))
	assert.Empty(t, parseCandidates("```json\n{\"title\": \"\", \"description\": \"\"}\n```", entity.KindTask))
}
