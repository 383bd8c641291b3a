package stages

import (
	"context"
	"fmt"
	"strings"

	"github.com/mangleddev/behaviorlab/internal/models"
	"github.com/mangleddev/behaviorlab/internal/oracle"
	"github.com/mangleddev/behaviorlab/internal/prompts"
	"github.com/mangleddev/behaviorlab/internal/validation"
)

// RunIdeation generates the scenario set from the behavior understanding and
// persists it on the ideation stage record. The oracle may return fewer or
// more scenarios than requested; the actual count is recorded and used
// downstream.
func (d Deps) RunIdeation(ctx context.Context, evalID string, und *models.Understanding) ([]models.Scenario, error) {
	ev, err := d.Store.GetEvaluation(ctx, evalID)
	if err != nil {
		return nil, fmt.Errorf("loading evaluation: %w", err)
	}

	log := d.logger()
	log.Info("ideation stage starting", "evaluation", evalID, "scenarios", ev.Config.NumScenarios)
	if err := d.updateStage(ctx, evalID, models.StageIdeation, markRunning); err != nil {
		return nil, err
	}

	prompt, err := prompts.Render(prompts.Ideation, map[string]any{
		"understanding": und,
		"numScenarios":  ev.Config.NumScenarios,
		"diversity":     ev.Config.Diversity,
	})
	if err != nil {
		return nil, d.failStage(ctx, evalID, models.StageIdeation, err)
	}

	raw, err := oracle.InvokeJSON(ctx, d.Oracle, prompt, oracle.InvokeOptions{Timeout: IdeationTimeout})
	if err != nil {
		return nil, d.failStage(ctx, evalID, models.StageIdeation, err)
	}
	if errs := validation.ValidateScenarios(raw); len(errs) > 0 {
		return nil, d.failStage(ctx, evalID, models.StageIdeation,
			fmt.Errorf("scenarios payload invalid: %s", strings.Join(errs, "; ")))
	}

	var payload struct {
		Scenarios []models.Scenario `mapstructure:"scenarios"`
	}
	if err := oracle.DecodeInto(raw, &payload); err != nil {
		return nil, d.failStage(ctx, evalID, models.StageIdeation, err)
	}
	scenarios := payload.Scenarios

	err = d.updateStage(ctx, evalID, models.StageIdeation, func(rec *models.StageRecord) {
		markCompleted(rec)
		rec.ScenarioCount = len(scenarios)
		rec.Scenarios = scenarios
	})
	if err != nil {
		return nil, err
	}
	log.Info("ideation stage completed", "evaluation", evalID, "scenarios", len(scenarios))
	return scenarios, nil
}
