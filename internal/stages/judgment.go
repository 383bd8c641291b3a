package stages

import (
	"context"
	"fmt"
	"strings"

	"github.com/mangleddev/behaviorlab/internal/judge"
	"github.com/mangleddev/behaviorlab/internal/models"
	"github.com/mangleddev/behaviorlab/internal/oracle"
	"github.com/mangleddev/behaviorlab/internal/prompts"
	"github.com/mangleddev/behaviorlab/internal/validation"
)

// RunJudgment scores every transcript with the configured judge panel,
// aggregates the results, and completes the evaluation. Transcripts that
// failed before producing any output are skipped without an oracle call.
func (d Deps) RunJudgment(ctx context.Context, evalID string, transcripts []models.Transcript, und *models.Understanding) (*models.EvaluationResults, error) {
	ev, err := d.Store.GetEvaluation(ctx, evalID)
	if err != nil {
		return nil, fmt.Errorf("loading evaluation: %w", err)
	}
	behavior, err := d.Store.GetBehavior(ctx, ev.BehaviorKey)
	if err != nil {
		return nil, d.failStage(ctx, evalID, models.StageJudgment, fmt.Errorf("behavior %q: %w", ev.BehaviorKey, err))
	}

	log := d.logger()
	log.Info("judgment stage starting", "evaluation", evalID, "transcripts", len(transcripts), "judges", ev.Config.NumJudges)
	err = d.updateStage(ctx, evalID, models.StageJudgment, func(rec *models.StageRecord) {
		markRunning(rec)
		rec.Completed = 0
		rec.Total = len(transcripts)
	})
	if err != nil {
		return nil, err
	}

	judgments := make([]models.Judgment, 0, len(transcripts))
	for i, tr := range transcripts {
		judgments = append(judgments, d.judgeTranscript(ctx, tr, behavior, und, ev.Config.NumJudges))

		d.progress(models.StageJudgment, i+1, len(transcripts))
		err := d.updateStage(ctx, evalID, models.StageJudgment, func(rec *models.StageRecord) {
			rec.Completed = i + 1
			rec.Total = len(transcripts)
		})
		if err != nil {
			log.Error("persisting judgment progress", "evaluation", evalID, "error", err)
		}
	}

	results := judge.Aggregate(judgments)

	err = d.updateStage(ctx, evalID, models.StageJudgment, func(rec *models.StageRecord) {
		markCompleted(rec)
		rec.Completed = len(transcripts)
		rec.Total = len(transcripts)
		rec.Judgments = judgments
	})
	if err != nil {
		return nil, err
	}
	log.Info("judgment stage completed", "evaluation", evalID)
	return results, nil
}

// judgeTranscript runs the full judge panel for one transcript and combines
// the verdicts. A transcript with no turns and a rollout error is skipped; a
// panel that fails entirely yields a null-score judgment with the error.
func (d Deps) judgeTranscript(ctx context.Context, tr models.Transcript, behavior *models.Behavior, und *models.Understanding, numJudges int) models.Judgment {
	if tr.Error != "" && len(tr.Turns) == 0 {
		return judge.SkippedJudgment(tr.ScenarioID, tr.Error)
	}

	verdicts := make([]models.JudgeVerdict, 0, numJudges)
	for j := 0; j < numJudges; j++ {
		verdict, err := d.judgeOnce(ctx, tr, behavior, und)
		if err != nil {
			return judge.FailedJudgment(tr.ScenarioID, err)
		}
		verdicts = append(verdicts, *verdict)
	}
	return judge.CombineVerdicts(tr.ScenarioID, verdicts)
}

func (d Deps) judgeOnce(ctx context.Context, tr models.Transcript, behavior *models.Behavior, und *models.Understanding) (*models.JudgeVerdict, error) {
	prompt, err := prompts.Render(prompts.Judgment, map[string]any{
		"behaviorKey":         behavior.Key,
		"behaviorDescription": behavior.Description,
		"understanding":       und,
		"transcript":          prompts.TranscriptText(tr.Turns),
	})
	if err != nil {
		return nil, err
	}

	raw, err := oracle.InvokeJSON(ctx, d.Oracle, prompt, oracle.InvokeOptions{Timeout: JudgmentTimeout})
	if err != nil {
		return nil, err
	}
	if errs := validation.ValidateVerdict(raw); len(errs) > 0 {
		return nil, fmt.Errorf("verdict payload invalid: %s", strings.Join(errs, "; "))
	}

	var verdict models.JudgeVerdict
	if err := oracle.DecodeInto(raw, &verdict); err != nil {
		return nil, err
	}
	return &verdict, nil
}
