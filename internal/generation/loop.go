package generation

import (
	"context"
	"encoding/json"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/visionhq/backlog-backend/internal/entity"
	"github.com/visionhq/backlog-backend/internal/pkg/jsonextract"
	"github.com/visionhq/backlog-backend/internal/quality"
	"go.uber.org/zap"
)

// LLMCaller is the narrow provider interface the loop depends on. Timeouts
// must surface as entity.ErrLLMTimeout so they stay distinguishable from
// other failures.
type LLMCaller interface {
	Call(ctx context.Context, systemPrompt, userPrompt, model string, timeout time.Duration) (string, entity.LLMUsage, error)
}

// Tracker observes attempt outcomes for post-hoc reporting. Implementations
// must swallow their own failures: tracking never aborts generation.
type Tracker interface {
	StartTracking(ctx context.Context, jobID string, kind entity.WorkItemKind)
	RecordAttempt(ctx context.Context, jobID string, attempt entity.ModelAttempt, assessment *entity.QualityAssessment, usage entity.LLMUsage)
	CompleteTracking(ctx context.Context, jobID string, outcome string, duration time.Duration)
}

// Config bounds one generation cycle.
type Config struct {
	MaxQualityRetries     int           // assessment passes per candidate
	MaxGenerationAttempts int           // direct mode: hard cap on LLM calls
	TimeBudget            time.Duration // direct mode: wall-clock budget
	CallTimeout           time.Duration // direct mode: per-call deadline
	Quality               quality.Config
	FallbackModels        []entity.ModelConfig // Ollama fallback chain
}

func DefaultConfig() Config {
	return Config{
		MaxQualityRetries:     3,
		MaxGenerationAttempts: 10,
		TimeBudget:            600 * time.Second,
		CallTimeout:           120 * time.Second,
		Quality:               quality.DefaultConfig(),
		FallbackModels:        DefaultFallbackModels(),
	}
}

// GenerateRequest describes one generation cycle: produce TargetCount
// accepted items of Kind for the given vision/parent.
type GenerateRequest struct {
	JobID       string
	Kind        entity.WorkItemKind
	Domain      string
	Vision      string
	Parent      *quality.ParentContext
	TargetCount int
	Provider    entity.ProviderKind
	Model       string // direct-mode model name
}

// AcceptedItem pairs an accepted candidate with the assessment that passed it.
type AcceptedItem struct {
	Candidate  *entity.WorkItemCandidate
	Assessment entity.QualityAssessment
}

// Loop runs the quality-gated generation cycle: request candidates, assess
// each one, improve or discard, backfill once, and fail loud when nothing
// passes the gate.
type Loop struct {
	caller    LLMCaller
	assessors map[entity.WorkItemKind]quality.Assessor
	tracker   Tracker
	cfg       Config
	logger    *zap.Logger
}

func NewLoop(caller LLMCaller, tracker Tracker, cfg Config, logger *zap.Logger) *Loop {
	return &Loop{
		caller:    caller,
		assessors: quality.Assessors(),
		tracker:   tracker,
		cfg:       cfg,
		logger:    logger,
	}
}

// cycleState is owned by one Generate call and destroyed on return.
type cycleState struct {
	approved      []AcceptedItem
	totalAttempts int
	failed        int
	start         time.Time
	lastModel     string
	fb            *FallbackManager
}

// Generate runs one full cycle. It returns the accepted set, or an error when
// zero items passed (entity.ZeroAcceptedError) or the Ollama fallback chain
// was exhausted (entity.ModelsExhaustedError).
func (l *Loop) Generate(ctx context.Context, req GenerateRequest) ([]AcceptedItem, error) {
	assessor, ok := l.assessors[req.Kind]
	if !ok {
		return nil, entity.ErrInvalidParameter
	}

	state := &cycleState{start: time.Now()}
	if !req.Provider.Direct() {
		state.fb = NewFallbackManager(l.cfg.FallbackModels)
		state.fb.Reset()
	}

	if l.tracker != nil {
		l.tracker.StartTracking(ctx, req.JobID, req.Kind)
	}

	ctxzap.Info(ctx, "generation cycle started",
		zap.String("kind", string(req.Kind)),
		zap.Int("target_count", req.TargetCount),
		zap.String("provider", string(req.Provider)),
	)

	batch, fatalOut := l.requestBatch(ctx, req, state, req.TargetCount)
	if fatalOut != nil {
		l.complete(ctx, req, state, "failed")
		return nil, fatalOut.Err
	}

	for _, candidate := range batch {
		if l.budgetExceeded(req, state) {
			ctxzap.Warn(ctx, "generation budget exceeded, stopping candidate processing",
				zap.Int("total_attempts", state.totalAttempts),
				zap.Duration("elapsed", time.Since(state.start)),
			)
			break
		}

		outcome := l.gateCandidate(ctx, req, assessor, candidate, state)
		switch outcome.Kind {
		case OutcomeAccepted:
			state.approved = append(state.approved, AcceptedItem{Candidate: outcome.Candidate, Assessment: outcome.Assessment})
		case OutcomeDiscarded:
			state.failed++
			ctxzap.Info(ctx, "candidate discarded",
				zap.String("title", outcome.Candidate.Title),
				zap.Int("score", outcome.Assessment.Score),
				zap.String("reason", outcome.Reason),
			)
		}
	}

	l.backfill(ctx, req, assessor, state)

	if len(state.approved) == 0 {
		l.complete(ctx, req, state, "failed")
		return nil, &entity.ZeroAcceptedError{
			Kind:     req.Kind,
			Domain:   req.Domain,
			Attempts: state.totalAttempts,
			Elapsed:  time.Since(state.start),
			MinScore: l.cfg.Quality.MinimumScore,
		}
	}

	l.complete(ctx, req, state, "completed")

	ctxzap.Info(ctx, "generation cycle finished",
		zap.Int("accepted", len(state.approved)),
		zap.Int("discarded", state.failed),
		zap.Int("total_attempts", state.totalAttempts),
	)

	return state.approved, nil
}

// gateCandidate runs the bounded per-candidate sub-loop: assess, then either
// accept, improve in place, or discard once retries are exhausted.
func (l *Loop) gateCandidate(
	ctx context.Context,
	req GenerateRequest,
	assessor quality.Assessor,
	candidate *entity.WorkItemCandidate,
	state *cycleState,
) CandidateOutcome {
	var assessment entity.QualityAssessment

	for pass := 1; pass <= l.cfg.MaxQualityRetries; pass++ {
		assessment = assessor.Assess(candidate, req.Domain, req.Parent)
		l.recordAttempt(ctx, req, state, entity.ModelAttempt{
			ModelName:     state.lastModel,
			AttemptNumber: pass,
			Success:       l.cfg.Quality.IsAcceptable(assessment.Score),
			QualityScore:  assessment.Score,
		}, &assessment, entity.LLMUsage{})

		if l.cfg.Quality.IsAcceptable(assessment.Score) {
			return accepted(candidate, assessment)
		}
		if pass == l.cfg.MaxQualityRetries {
			break
		}

		improved, err := l.requestImprovement(ctx, req, candidate, assessment, state)
		if err != nil {
			// Keep the current candidate and spend the next pass on it;
			// the retry counter bounds this path too.
			ctxzap.Warn(ctx, "improvement call failed, keeping current candidate",
				zap.String("title", candidate.Title), zap.Error(err))
			continue
		}
		candidate.Replace(improved)
	}

	return discarded(candidate, assessment, "quality retries exhausted")
}

// backfill issues a single follow-up request to replace discarded candidates.
// Replacements get exactly one assessment pass, no improvement sub-loop.
func (l *Loop) backfill(ctx context.Context, req GenerateRequest, assessor quality.Assessor, state *cycleState) {
	if state.failed == 0 || len(state.approved) >= req.TargetCount || l.budgetExceeded(req, state) {
		return
	}

	need := req.TargetCount - len(state.approved)
	if state.failed < need {
		need = state.failed
	}

	ctxzap.Info(ctx, "requesting replacement candidates", zap.Int("count", need))

	replacements, fatalOut := l.requestBatch(ctx, req, state, need)
	if fatalOut != nil {
		ctxzap.Warn(ctx, "backfill request failed", zap.Error(fatalOut.Err))
		return
	}

	for _, candidate := range replacements {
		assessment := assessor.Assess(candidate, req.Domain, req.Parent)
		l.recordAttempt(ctx, req, state, entity.ModelAttempt{
			ModelName:     state.lastModel,
			AttemptNumber: 1,
			Success:       l.cfg.Quality.IsAcceptable(assessment.Score),
			QualityScore:  assessment.Score,
		}, &assessment, entity.LLMUsage{})

		if l.cfg.Quality.IsAcceptable(assessment.Score) && len(state.approved) < req.TargetCount {
			state.approved = append(state.approved, AcceptedItem{Candidate: candidate, Assessment: assessment})
		} else {
			state.failed++
		}
	}
}

// requestBatch asks the provider for count candidates. On the Ollama path the
// fallback manager owns model selection and a fatal outcome is returned once
// the whole chain is exhausted; on the direct path failures burn attempt
// budget and an empty batch flows into the zero-acceptance check.
func (l *Loop) requestBatch(ctx context.Context, req GenerateRequest, state *cycleState, count int) ([]*entity.WorkItemCandidate, *CandidateOutcome) {
	system := systemPrompt(req.Kind, req.Domain)
	prompt := generationPrompt(req, count)

	if !req.Provider.Direct() {
		return l.requestBatchFallback(ctx, req, state, system, prompt)
	}

	for !l.budgetExceeded(req, state) {
		state.totalAttempts++
		state.lastModel = req.Model

		started := time.Now()
		raw, usage, err := l.caller.Call(ctx, system, prompt, req.Model, l.cfg.CallTimeout)
		duration := time.Since(started)

		if err != nil {
			l.recordAttempt(ctx, req, state, entity.ModelAttempt{
				ModelName:     req.Model,
				AttemptNumber: state.totalAttempts,
				ErrorMessage:  err.Error(),
				Duration:      duration,
			}, nil, usage)
			ctxzap.Warn(ctx, "generation call failed", zap.Error(err), zap.Int("attempt", state.totalAttempts))
			continue
		}

		candidates := parseCandidates(raw, req.Kind)
		l.recordAttempt(ctx, req, state, entity.ModelAttempt{
			ModelName:     req.Model,
			AttemptNumber: state.totalAttempts,
			Success:       len(candidates) > 0,
			Duration:      duration,
		}, nil, usage)

		if len(candidates) == 0 {
			ctxzap.Warn(ctx, "no candidates parsed from response", zap.Int("attempt", state.totalAttempts))
			continue
		}
		return candidates, nil
	}

	return nil, nil
}

// requestBatchFallback drives the Ollama model chain: repeat the current
// model until its budget runs out, then switch, and give up fatally when the
// chain is exhausted without a usable batch.
func (l *Loop) requestBatchFallback(ctx context.Context, req GenerateRequest, state *cycleState, system, prompt string) ([]*entity.WorkItemCandidate, *CandidateOutcome) {
	var lastErr error

	for {
		model, attemptNumber := state.fb.NextModel()
		state.totalAttempts++
		state.lastModel = model.Name

		started := time.Now()
		raw, usage, err := l.caller.Call(ctx, system, prompt, model.Name, model.Timeout)
		duration := time.Since(started)

		candidates := []*entity.WorkItemCandidate{}
		if err == nil {
			candidates = parseCandidates(raw, req.Kind)
			if len(candidates) == 0 {
				err = entity.ErrNoCandidates
			}
		}

		attempt := entity.ModelAttempt{
			ModelName:     model.Name,
			AttemptNumber: attemptNumber,
			Success:       err == nil,
			Duration:      duration,
		}
		if err != nil {
			attempt.ErrorMessage = err.Error()
		}
		state.fb.RecordAttempt(attempt)
		l.recordAttempt(ctx, req, state, attempt, nil, usage)

		if err == nil {
			return candidates, nil
		}

		lastErr = err
		if state.fb.Exhausted() {
			out := fatal(&entity.ModelsExhaustedError{
				LastModel: model.Name,
				Attempts:  state.totalAttempts,
				LastErr:   lastErr,
			})
			return nil, &out
		}

		if state.fb.ShouldSwitch() {
			next, _ := state.fb.NextModel()
			ctxzap.Info(ctx, "switching fallback model",
				zap.String("from", model.Name), zap.String("to", next.Name))
		}
	}
}

// requestImprovement asks for a single replacement of a failing candidate.
func (l *Loop) requestImprovement(
	ctx context.Context,
	req GenerateRequest,
	candidate *entity.WorkItemCandidate,
	assessment entity.QualityAssessment,
	state *cycleState,
) (*entity.WorkItemCandidate, error) {
	system := systemPrompt(req.Kind, req.Domain)
	prompt := improvementPrompt(candidate, assessment)

	model := req.Model
	timeout := l.cfg.CallTimeout
	if !req.Provider.Direct() {
		m, _ := state.fb.NextModel()
		model, timeout = m.Name, m.Timeout
	}

	state.totalAttempts++
	raw, _, err := l.caller.Call(ctx, system, prompt, model, timeout)
	if err != nil {
		return nil, err
	}

	extracted := jsonextract.Extract(raw)
	var improved entity.WorkItemCandidate
	if err := json.Unmarshal([]byte(extracted), &improved); err != nil {
		return nil, entity.ErrNoCandidates
	}
	if improved.Title == "" && improved.Description == "" {
		return nil, entity.ErrNoCandidates
	}
	improved.Kind = req.Kind
	return &improved, nil
}

// budgetExceeded enforces the direct-mode wall-clock and attempt budgets.
// The Ollama path is bounded by the fallback chain instead.
func (l *Loop) budgetExceeded(req GenerateRequest, state *cycleState) bool {
	if !req.Provider.Direct() {
		return false
	}
	if state.totalAttempts >= l.cfg.MaxGenerationAttempts {
		return true
	}
	return time.Since(state.start) >= l.cfg.TimeBudget
}

func (l *Loop) recordAttempt(ctx context.Context, req GenerateRequest, _ *cycleState, attempt entity.ModelAttempt, assessment *entity.QualityAssessment, usage entity.LLMUsage) {
	if l.tracker == nil {
		return
	}
	l.tracker.RecordAttempt(ctx, req.JobID, attempt, assessment, usage)
}

func (l *Loop) complete(ctx context.Context, req GenerateRequest, state *cycleState, outcome string) {
	if l.tracker == nil {
		return
	}
	l.tracker.CompleteTracking(ctx, req.JobID, outcome, time.Since(state.start))
}

// parseCandidates extracts a JSON array of candidates from raw LLM text.
// A single object response is accepted as a one-element batch.
func parseCandidates(raw string, kind entity.WorkItemKind) []*entity.WorkItemCandidate {
	extracted := jsonextract.Extract(raw)

	var batch []*entity.WorkItemCandidate
	if err := json.Unmarshal([]byte(extracted), &batch); err != nil {
		var single entity.WorkItemCandidate
		if err := json.Unmarshal([]byte(extracted), &single); err != nil {
			return nil
		}
		if single.Title == "" && single.Description == "" {
			return nil
		}
		batch = []*entity.WorkItemCandidate{&single}
	}

	out := batch[:0]
	for _, c := range batch {
		if c == nil {
			continue
		}
		c.Kind = kind
		out = append(out, c)
	}
	return out
}
