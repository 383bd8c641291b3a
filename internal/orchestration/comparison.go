package orchestration

import (
	"context"
	"fmt"
	"time"

	"github.com/mangleddev/behaviorlab/internal/judge"
	"github.com/mangleddev/behaviorlab/internal/models"
)

// RunComparison runs evaluation A to completion, then evaluation B, then
// diffs their overall scores. The two runs are strictly sequential. Either
// side failing, or completing without a score, fails the comparison while
// leaving the per-evaluation records intact.
func (o *Orchestrator) RunComparison(ctx context.Context, comparisonID string) (*models.Comparison, error) {
	c, err := o.store.GetComparison(ctx, comparisonID)
	if err != nil {
		return nil, fmt.Errorf("loading comparison: %w", err)
	}

	if err := o.register(comparisonID); err != nil {
		return nil, err
	}
	defer o.unregister(comparisonID)

	o.log.Info("comparison starting", "comparison", comparisonID, "evaluationA", c.EvaluationA, "evaluationB", c.EvaluationB)
	if _, err := o.store.UpdateComparison(ctx, comparisonID, func(c *models.Comparison) {
		c.Status = models.StatusRunning
	}); err != nil {
		return nil, fmt.Errorf("marking comparison running: %w", err)
	}
	o.notify(ProgressEvent{EventType: EventComparisonStart, ComparisonID: comparisonID, Status: models.StatusRunning})

	results, runErr := o.runBothSides(ctx, c)
	if runErr != nil {
		o.log.Error("comparison failed", "comparison", comparisonID, "error", runErr)
		if _, err := o.store.UpdateComparison(ctx, comparisonID, func(c *models.Comparison) {
			c.Status = models.StatusError
			c.Error = runErr.Error()
		}); err != nil {
			o.log.Error("recording comparison failure", "comparison", comparisonID, "error", err)
		}
		o.notify(ProgressEvent{EventType: EventComparisonError, ComparisonID: comparisonID, Status: models.StatusError, Error: runErr.Error()})
		return nil, runErr
	}

	final, err := o.store.UpdateComparison(ctx, comparisonID, func(c *models.Comparison) {
		now := time.Now().UTC()
		c.Status = models.StatusCompleted
		c.CompletedAt = &now
		c.Results = results
	})
	if err != nil {
		return nil, fmt.Errorf("marking comparison completed: %w", err)
	}

	o.log.Info("comparison completed", "comparison", comparisonID, "winner", results.Winner)
	o.notify(ProgressEvent{EventType: EventComparisonComplete, ComparisonID: comparisonID, Status: models.StatusCompleted})
	return final, nil
}

func (o *Orchestrator) runBothSides(ctx context.Context, c *models.Comparison) (*models.ComparisonResults, error) {
	evalA, err := o.RunEvaluation(ctx, c.EvaluationA)
	if err != nil {
		return nil, fmt.Errorf("evaluation A: %w", err)
	}
	evalB, err := o.RunEvaluation(ctx, c.EvaluationB)
	if err != nil {
		return nil, fmt.Errorf("evaluation B: %w", err)
	}

	scoreA, err := overallScore(evalA)
	if err != nil {
		return nil, fmt.Errorf("evaluation A: %w", err)
	}
	scoreB, err := overallScore(evalB)
	if err != nil {
		return nil, fmt.Errorf("evaluation B: %w", err)
	}
	return judge.CompareScores(scoreA, scoreB), nil
}

// overallScore rejects evaluations whose judges produced no valid scores; a
// comparison between score-less runs has no meaningful winner.
func overallScore(ev *models.Evaluation) (float64, error) {
	if ev.Results == nil || ev.Results.OverallScore == nil {
		return 0, fmt.Errorf("evaluation %s produced no overall score", ev.ID)
	}
	return *ev.Results.OverallScore, nil
}
