// Package matching drives the asynchronous "match a candidate to a job"
// workflow: one remote scoring call per (job, candidate) pair, at most one
// in-flight request per candidate, and a cosmetic staged-progress feed that
// the real result always supersedes.
package matching

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hireflow/hireflow/internal/recruit"
	"github.com/hireflow/hireflow/internal/utils"

	"go.uber.org/zap"
)

// FailureMessage is the fixed fallback when the server reports no reason.
const FailureMessage = "Matching failed. Please try again."

// ErrMatchInFlight rejects a second match for a candidate whose first one is
// still outstanding. The in-flight marker is cleared on any completion, so a
// retry after failure is always possible.
var ErrMatchInFlight = errors.New("a match is already in progress for this candidate")

// Stage is one step of the staged progress display. Stages advance on a fixed
// wall-clock schedule regardless of how far the real call actually is.
type Stage struct {
	Seq   int
	Label string
	after time.Duration
}

var defaultStages = []Stage{
	{Seq: 1, Label: "Preparing analysis...", after: 0},
	{Seq: 2, Label: "Analyzing resume with AI...", after: 500 * time.Millisecond},
	{Seq: 3, Label: "Calculating match score...", after: 1500 * time.Millisecond},
	{Seq: 4, Label: "Finalizing results...", after: 2500 * time.Millisecond},
}

// StageFunc receives stage updates. It must not block; it may be detached at
// any moment and late updates are simply dropped.
type StageFunc func(candidateID string, stage Stage)

// Outcome pairs the fresh result with the application it belongs to, so the
// review store can act on disposition without re-resolving identity.
type Outcome struct {
	Result        *recruit.MatchResult
	ApplicationID string
}

type Orchestrator struct {
	api    *recruit.Client
	logger *zap.Logger
	stages []Stage

	mu       sync.Mutex
	inflight map[string]struct{}
	onStage  StageFunc
}

func New(api *recruit.Client, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		api:      api,
		logger:   logger,
		stages:   defaultStages,
		inflight: make(map[string]struct{}),
	}
}

// SetStageObserver attaches (or, with nil, detaches) the progress listener.
func (o *Orchestrator) SetStageObserver(fn StageFunc) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onStage = fn
}

// Match runs one scoring pass for the pair. The direct compute response is
// the primary source of the result; when the server only acknowledges, the
// per-job result list is fetched and searched as a fallback, and an entry
// missing there is reported as a distinguished result-not-found failure.
// Every call produces a fresh result; nothing is retained between calls.
func (o *Orchestrator) Match(ctx context.Context, jobID, candidateID string) (*Outcome, error) {
	if jobID == "" || candidateID == "" {
		return nil, recruit.ValidationError("match", "Job ID and candidate ID are required")
	}

	if !o.begin(candidateID) {
		return nil, ErrMatchInFlight
	}
	defer o.end(candidateID)

	stop := o.startStages(candidateID)
	defer stop()

	o.logger.Info("matching candidate",
		zap.String("job_id", jobID),
		zap.String("candidate_id", candidateID),
	)

	result, err := o.api.ComputeMatch(ctx, jobID, candidateID)
	if err != nil {
		o.logger.Warn("match failed",
			zap.String("job_id", jobID),
			zap.String("candidate_id", candidateID),
			zap.Error(err),
		)
		return nil, err
	}

	if result.Empty() {
		result, err = o.confirmFromList(ctx, jobID, candidateID)
		if err != nil {
			return nil, err
		}
	}

	o.logger.Info("match completed",
		zap.String("candidate_id", candidateID),
		zap.Int("score", result.Score),
		zap.String("band", string(result.Band())),
		zap.String("summary_preview", utils.TruncateForLog(result.Analysis(), 120)),
	)

	return &Outcome{Result: result, ApplicationID: result.ApplicationID}, nil
}

// SendFeedback forwards recruiter feedback for a match result.
func (o *Orchestrator) SendFeedback(ctx context.Context, resultID, text string) error {
	return o.api.SendMatchFeedback(ctx, resultID, text)
}

// confirmFromList is the fallback confirmation path: the compute was reported
// successful, so the candidate's entry is looked up in the job's result list.
func (o *Orchestrator) confirmFromList(ctx context.Context, jobID, candidateID string) (*recruit.MatchResult, error) {
	results, err := o.api.GetMatchResults(ctx, jobID, true)
	if err != nil {
		return nil, err
	}

	for _, r := range results {
		if r.Candidate != nil && r.Candidate.ID == candidateID {
			return r, nil
		}
	}

	o.logger.Warn("computed match missing from result list",
		zap.String("job_id", jobID),
		zap.String("candidate_id", candidateID),
		zap.Int("results", len(results)),
	)

	return nil, recruit.ResultNotFoundError("match", "Result not found")
}

func (o *Orchestrator) begin(candidateID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.inflight[candidateID]; ok {
		return false
	}

	o.inflight[candidateID] = struct{}{}
	return true
}

func (o *Orchestrator) end(candidateID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inflight, candidateID)
}

// InFlight reports whether a match is currently outstanding for the candidate.
func (o *Orchestrator) InFlight(candidateID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	_, ok := o.inflight[candidateID]
	return ok
}

// startStages schedules the progress timers and returns a stop function. The
// first terminal event wins: once stop runs, pending timers are cancelled and
// any that already fired but lost the race are ignored.
func (o *Orchestrator) startStages(candidateID string) (stop func()) {
	var (
		mu     sync.Mutex
		done   bool
		timers []*time.Timer
	)

	emit := func(stage Stage) {
		mu.Lock()
		finished := done
		mu.Unlock()
		if finished {
			return
		}

		o.mu.Lock()
		fn := o.onStage
		o.mu.Unlock()

		if fn != nil {
			fn(candidateID, stage)
		}
	}

	for _, stage := range o.stages {
		stage := stage
		if stage.after == 0 {
			emit(stage)
			continue
		}
		timers = append(timers, time.AfterFunc(stage.after, func() { emit(stage) }))
	}

	return func() {
		mu.Lock()
		done = true
		mu.Unlock()

		for _, t := range timers {
			t.Stop()
		}
	}
}
