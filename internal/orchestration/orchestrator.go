// Package orchestration sequences the evaluation pipeline: it owns the
// active-run registry, drives the four stages in order, and resolves A/B
// comparisons.
package orchestration

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mangleddev/behaviorlab/internal/models"
	"github.com/mangleddev/behaviorlab/internal/oracle"
	"github.com/mangleddev/behaviorlab/internal/rollout"
	"github.com/mangleddev/behaviorlab/internal/stages"
	"github.com/mangleddev/behaviorlab/internal/store"
)

// EventType identifies a progress event.
type EventType string

const (
	EventEvaluationStart    EventType = "evaluation_start"
	EventStageProgress      EventType = "stage_progress"
	EventEvaluationComplete EventType = "evaluation_complete"
	EventEvaluationError    EventType = "evaluation_error"
	EventComparisonStart    EventType = "comparison_start"
	EventComparisonComplete EventType = "comparison_complete"
	EventComparisonError    EventType = "comparison_error"
)

// ProgressEvent is a progress update emitted while a run is in flight.
type ProgressEvent struct {
	EventType    EventType        `json:"eventType"`
	EvaluationID string           `json:"evaluationId,omitempty"`
	ComparisonID string           `json:"comparisonId,omitempty"`
	Stage        models.StageName `json:"stage,omitempty"`
	Completed    int              `json:"completed,omitempty"`
	Total        int              `json:"total,omitempty"`
	Status       models.Status    `json:"status,omitempty"`
	Error        string           `json:"error,omitempty"`
}

// ProgressListener receives progress events.
type ProgressListener func(event ProgressEvent)

// Orchestrator is the long-lived service that runs evaluations and
// comparisons. The active-run registry is observability only: it is not
// persisted, and a process restart drops it.
type Orchestrator struct {
	store  *store.Store
	oracle oracle.OneShot
	engine *rollout.Engine
	log    *slog.Logger

	mu        sync.Mutex
	active    map[string]time.Time
	listeners []ProgressListener
}

// New creates an orchestrator. The one-shot oracle serves the structured
// stage calls; the rollout engine owns interactive sessions with the agent
// under test.
func New(st *store.Store, o oracle.OneShot, engine *rollout.Engine, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		store:  st,
		oracle: o,
		engine: engine,
		log:    log,
		active: make(map[string]time.Time),
	}
}

// OnProgress registers a progress listener.
func (o *Orchestrator) OnProgress(listener ProgressListener) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.listeners = append(o.listeners, listener)
}

func (o *Orchestrator) notify(event ProgressEvent) {
	o.mu.Lock()
	listeners := make([]ProgressListener, len(o.listeners))
	copy(listeners, o.listeners)
	o.mu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// ActiveRuns returns the ids currently being driven by this orchestrator.
func (o *Orchestrator) ActiveRuns() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	ids := make([]string, 0, len(o.active))
	for id := range o.active {
		ids = append(ids, id)
	}
	return ids
}

// IsActive reports whether the given id is currently running.
func (o *Orchestrator) IsActive(id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.active[id]
	return ok
}

func (o *Orchestrator) register(id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.active[id]; ok {
		return fmt.Errorf("run %s is already active", id)
	}
	o.active[id] = time.Now().UTC()
	return nil
}

func (o *Orchestrator) unregister(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.active, id)
}

// RunEvaluation drives one evaluation through all four stages. The first
// stage failure aborts the rest; the evaluation record always ends in
// completed or error.
func (o *Orchestrator) RunEvaluation(ctx context.Context, evalID string) (*models.Evaluation, error) {
	ev, err := o.store.GetEvaluation(ctx, evalID)
	if err != nil {
		return nil, fmt.Errorf("loading evaluation: %w", err)
	}

	if err := o.register(evalID); err != nil {
		return nil, err
	}
	defer o.unregister(evalID)

	o.log.Info("evaluation starting", "evaluation", evalID, "behavior", ev.BehaviorKey, "tier", ev.Config.Tier)
	_, err = o.store.UpdateEvaluation(ctx, evalID, func(ev *models.Evaluation) {
		now := time.Now().UTC()
		ev.Status = models.StatusRunning
		ev.StartedAt = &now
	})
	if err != nil {
		return nil, fmt.Errorf("marking evaluation running: %w", err)
	}
	o.notify(ProgressEvent{EventType: EventEvaluationStart, EvaluationID: evalID, Status: models.StatusRunning})

	deps := stages.Deps{
		Store:   o.store,
		Oracle:  o.oracle,
		Rollout: o.engine,
		Log:     o.log,
		Progress: func(stage models.StageName, completed, total int) {
			o.notify(ProgressEvent{
				EventType:    EventStageProgress,
				EvaluationID: evalID,
				Stage:        stage,
				Completed:    completed,
				Total:        total,
			})
		},
	}

	results, runErr := o.runStages(ctx, deps, evalID)
	if runErr != nil {
		o.log.Error("evaluation failed", "evaluation", evalID, "error", runErr)
		if _, err := o.store.UpdateEvaluation(ctx, evalID, func(ev *models.Evaluation) {
			ev.Status = models.StatusError
			ev.Error = runErr.Error()
		}); err != nil {
			o.log.Error("recording evaluation failure", "evaluation", evalID, "error", err)
		}
		o.notify(ProgressEvent{EventType: EventEvaluationError, EvaluationID: evalID, Status: models.StatusError, Error: runErr.Error()})
		return nil, runErr
	}

	final, err := o.store.UpdateEvaluation(ctx, evalID, func(ev *models.Evaluation) {
		now := time.Now().UTC()
		ev.Status = models.StatusCompleted
		ev.CompletedAt = &now
		ev.Results = results
	})
	if err != nil {
		return nil, fmt.Errorf("marking evaluation completed: %w", err)
	}

	o.log.Info("evaluation completed", "evaluation", evalID, "overallScore", scoreForLog(results))
	o.notify(ProgressEvent{EventType: EventEvaluationComplete, EvaluationID: evalID, Status: models.StatusCompleted})
	return final, nil
}

func (o *Orchestrator) runStages(ctx context.Context, deps stages.Deps, evalID string) (*models.EvaluationResults, error) {
	und, err := deps.RunUnderstanding(ctx, evalID)
	if err != nil {
		return nil, err
	}
	scenarios, err := deps.RunIdeation(ctx, evalID, und)
	if err != nil {
		return nil, err
	}
	transcripts, err := deps.RunRollout(ctx, evalID, scenarios)
	if err != nil {
		return nil, err
	}
	return deps.RunJudgment(ctx, evalID, transcripts, und)
}

func scoreForLog(results *models.EvaluationResults) any {
	if results == nil || results.OverallScore == nil {
		return "n/a"
	}
	return *results.OverallScore
}
