// Package stages implements the four-stage evaluation pipeline:
// understanding, ideation, rollout and judgment. Each stage loads the
// evaluation from the record store, marks its stage record running, does its
// work, and persists the outcome before returning.
package stages

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mangleddev/behaviorlab/internal/models"
	"github.com/mangleddev/behaviorlab/internal/oracle"
	"github.com/mangleddev/behaviorlab/internal/rollout"
	"github.com/mangleddev/behaviorlab/internal/store"
)

// Oracle call timeouts per stage. Ideation gets longer because it produces
// the largest payloads.
const (
	UnderstandingTimeout = 120 * time.Second
	IdeationTimeout      = 180 * time.Second
	JudgmentTimeout      = 120 * time.Second
)

// ProgressFunc is called as a stage makes measurable progress.
type ProgressFunc func(stage models.StageName, completed, total int)

// Deps carries everything the stage functions need. Oracle serves the
// structured one-shot calls; Rollout owns the interactive sessions.
type Deps struct {
	Store   *store.Store
	Oracle  oracle.OneShot
	Rollout *rollout.Engine
	Log     *slog.Logger

	// Progress, if set, receives per-item progress from the rollout and
	// judgment stages.
	Progress ProgressFunc
}

func (d Deps) logger() *slog.Logger {
	if d.Log != nil {
		return d.Log
	}
	return slog.Default()
}

func (d Deps) progress(stage models.StageName, completed, total int) {
	if d.Progress != nil {
		d.Progress(stage, completed, total)
	}
}

// markRunning stamps a stage record as started.
func markRunning(rec *models.StageRecord) {
	now := time.Now().UTC()
	rec.Status = models.StatusRunning
	rec.StartedAt = &now
}

// markCompleted stamps a stage record as finished.
func markCompleted(rec *models.StageRecord) {
	now := time.Now().UTC()
	rec.Status = models.StatusCompleted
	rec.CompletedAt = &now
}

// updateStage applies a mutation to one stage record of a stored evaluation.
func (d Deps) updateStage(ctx context.Context, evalID string, stage models.StageName, mutate func(*models.StageRecord)) error {
	_, err := d.Store.UpdateEvaluation(ctx, evalID, func(ev *models.Evaluation) {
		mutate(ev.Stages.Record(stage))
	})
	if err != nil {
		return fmt.Errorf("updating %s stage: %w", stage, err)
	}
	return nil
}

// failStage records a stage error and returns the original error wrapped
// with the stage name.
func (d Deps) failStage(ctx context.Context, evalID string, stage models.StageName, stageErr error) error {
	if err := d.updateStage(ctx, evalID, stage, func(rec *models.StageRecord) {
		rec.Status = models.StatusError
		rec.Error = stageErr.Error()
	}); err != nil {
		d.logger().Error("recording stage failure", "evaluation", evalID, "stage", stage, "error", err)
	}
	return fmt.Errorf("%s stage: %w", stage, stageErr)
}
