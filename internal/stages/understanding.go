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

// RunUnderstanding asks the oracle for a structured analysis of the
// evaluation's behavior and persists it on the understanding stage record.
func (d Deps) RunUnderstanding(ctx context.Context, evalID string) (*models.Understanding, error) {
	ev, err := d.Store.GetEvaluation(ctx, evalID)
	if err != nil {
		return nil, fmt.Errorf("loading evaluation: %w", err)
	}

	log := d.logger()
	log.Info("understanding stage starting", "evaluation", evalID, "behavior", ev.BehaviorKey)
	if err := d.updateStage(ctx, evalID, models.StageUnderstanding, markRunning); err != nil {
		return nil, err
	}

	behavior, err := d.Store.GetBehavior(ctx, ev.BehaviorKey)
	if err != nil {
		return nil, d.failStage(ctx, evalID, models.StageUnderstanding, fmt.Errorf("behavior %q: %w", ev.BehaviorKey, err))
	}

	prompt, err := prompts.Render(prompts.Understanding, map[string]any{
		"behaviorKey":         behavior.Key,
		"behaviorDescription": behavior.Description,
	})
	if err != nil {
		return nil, d.failStage(ctx, evalID, models.StageUnderstanding, err)
	}

	raw, err := oracle.InvokeJSON(ctx, d.Oracle, prompt, oracle.InvokeOptions{Timeout: UnderstandingTimeout})
	if err != nil {
		return nil, d.failStage(ctx, evalID, models.StageUnderstanding, err)
	}
	if errs := validation.ValidateUnderstanding(raw); len(errs) > 0 {
		return nil, d.failStage(ctx, evalID, models.StageUnderstanding,
			fmt.Errorf("understanding payload invalid: %s", strings.Join(errs, "; ")))
	}

	var und models.Understanding
	if err := oracle.DecodeInto(raw, &und); err != nil {
		return nil, d.failStage(ctx, evalID, models.StageUnderstanding, err)
	}

	err = d.updateStage(ctx, evalID, models.StageUnderstanding, func(rec *models.StageRecord) {
		markCompleted(rec)
		rec.Result = &und
	})
	if err != nil {
		return nil, err
	}
	log.Info("understanding stage completed", "evaluation", evalID)
	return &und, nil
}
