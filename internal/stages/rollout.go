package stages

import (
	"context"
	"fmt"

	"github.com/mangleddev/behaviorlab/internal/models"
)

// RunRollout executes every scenario against the agent under test and
// persists the transcripts. Individual scenario failures are recorded on
// their transcripts; the stage itself only fails on store errors.
func (d Deps) RunRollout(ctx context.Context, evalID string, scenarios []models.Scenario) ([]models.Transcript, error) {
	ev, err := d.Store.GetEvaluation(ctx, evalID)
	if err != nil {
		return nil, fmt.Errorf("loading evaluation: %w", err)
	}

	log := d.logger()
	log.Info("rollout stage starting", "evaluation", evalID, "scenarios", len(scenarios), "maxTurns", ev.Config.MaxTurns)
	err = d.updateStage(ctx, evalID, models.StageRollout, func(rec *models.StageRecord) {
		markRunning(rec)
		rec.Completed = 0
		rec.Total = len(scenarios)
	})
	if err != nil {
		return nil, err
	}

	transcripts := d.Rollout.Run(ctx, scenarios, ev.PromptConfig, ev.Config.MaxTurns, func(completed, total int) {
		d.progress(models.StageRollout, completed, total)
		err := d.updateStage(ctx, evalID, models.StageRollout, func(rec *models.StageRecord) {
			rec.Completed = completed
			rec.Total = total
		})
		if err != nil {
			log.Error("persisting rollout progress", "evaluation", evalID, "error", err)
		}
	})

	err = d.updateStage(ctx, evalID, models.StageRollout, func(rec *models.StageRecord) {
		markCompleted(rec)
		rec.Completed = len(scenarios)
		rec.Total = len(scenarios)
		rec.Transcripts = transcripts
	})
	if err != nil {
		return nil, err
	}
	log.Info("rollout stage completed", "evaluation", evalID)
	return transcripts, nil
}
