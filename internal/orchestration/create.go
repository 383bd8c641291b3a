package orchestration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mangleddev/behaviorlab/internal/config"
	"github.com/mangleddev/behaviorlab/internal/models"
	"github.com/mangleddev/behaviorlab/internal/store"
)

// NewEvaluationParams are the caller-supplied fields for a new evaluation.
// Unset config fields resolve from the tier default table.
type NewEvaluationParams struct {
	Name         string
	BehaviorKey  string
	PromptConfig models.PromptConfig
	Tier         string
	Overrides    config.Overrides
}

// NewComparisonParams describe an A/B comparison: one behavior, one scale
// configuration, two prompt configs.
type NewComparisonParams struct {
	Name          string
	BehaviorKey   string
	Tier          string
	Overrides     config.Overrides
	PromptConfigA models.PromptConfig
	PromptConfigB models.PromptConfig
}

// CreateEvaluation validates the parameters, resolves the configuration and
// persists a pending evaluation. Unknown behavior keys are rejected before
// any stage runs.
func (o *Orchestrator) CreateEvaluation(ctx context.Context, p NewEvaluationParams) (*models.Evaluation, error) {
	if p.BehaviorKey == "" {
		return nil, models.NewValidationError("behaviorKey", "behavior key is required")
	}
	if _, err := o.store.GetBehavior(ctx, p.BehaviorKey); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, models.NewValidationError("behaviorKey", "unknown behavior: %s", p.BehaviorKey)
		}
		return nil, fmt.Errorf("looking up behavior: %w", err)
	}

	ev := &models.Evaluation{
		ID:           uuid.NewString(),
		Name:         p.Name,
		BehaviorKey:  p.BehaviorKey,
		PromptConfig: p.PromptConfig,
		Config:       config.Resolve(p.Tier, p.Overrides),
		Status:       models.StatusPending,
		Stages:       pendingStages(),
		CreatedAt:    time.Now().UTC(),
	}
	if ev.Name == "" {
		ev.Name = fmt.Sprintf("%s (%s)", p.BehaviorKey, ev.Config.Tier)
	}

	if err := o.store.CreateEvaluation(ctx, ev); err != nil {
		return nil, fmt.Errorf("creating evaluation: %w", err)
	}
	o.log.Info("evaluation created", "evaluation", ev.ID, "behavior", ev.BehaviorKey, "tier", ev.Config.Tier)
	return ev, nil
}

// CreateComparison creates the two underlying evaluations and the comparison
// record pointing at them. Both sides share the behavior and scale
// configuration and differ only in prompt config.
func (o *Orchestrator) CreateComparison(ctx context.Context, p NewComparisonParams) (*models.Comparison, error) {
	name := p.Name
	if name == "" {
		name = p.BehaviorKey + " comparison"
	}

	evalA, err := o.CreateEvaluation(ctx, NewEvaluationParams{
		Name:         name + " / A",
		BehaviorKey:  p.BehaviorKey,
		PromptConfig: p.PromptConfigA,
		Tier:         p.Tier,
		Overrides:    p.Overrides,
	})
	if err != nil {
		return nil, err
	}
	evalB, err := o.CreateEvaluation(ctx, NewEvaluationParams{
		Name:         name + " / B",
		BehaviorKey:  p.BehaviorKey,
		PromptConfig: p.PromptConfigB,
		Tier:         p.Tier,
		Overrides:    p.Overrides,
	})
	if err != nil {
		return nil, err
	}

	c := &models.Comparison{
		ID:          uuid.NewString(),
		Name:        name,
		EvaluationA: evalA.ID,
		EvaluationB: evalB.ID,
		BehaviorKey: p.BehaviorKey,
		Status:      models.StatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	if err := o.store.CreateComparison(ctx, c); err != nil {
		return nil, fmt.Errorf("creating comparison: %w", err)
	}
	o.log.Info("comparison created", "comparison", c.ID, "behavior", c.BehaviorKey)
	return c, nil
}

func pendingStages() models.Stages {
	pending := models.StageRecord{Status: models.StatusPending}
	return models.Stages{
		Understanding: pending,
		Ideation:      pending,
		Rollout:       pending,
		Judgment:      pending,
	}
}
