package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mangleddev/behaviorlab/internal/models"
	"github.com/mangleddev/behaviorlab/internal/orchestration"
	"github.com/mangleddev/behaviorlab/internal/spinner"
)

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <evaluation-id>",
		Short: "Run an evaluation through all four stages",
		Long: `Run an evaluation through all four stages.

The pipeline is understanding, ideation, rollout, judgment. Progress is
shown live; the final score summary is printed when judgment completes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer env.Close() //nolint:errcheck

			return driveEvaluation(cmd, env, args[0])
		},
	}
	return cmd
}

// driveEvaluation runs one evaluation with live progress and prints the
// result summary. Shared by run and new --run.
func driveEvaluation(cmd *cobra.Command, env *appEnv, evalID string) error {
	out := cmd.OutOrStdout()

	var spin *spinner.Spinner
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		spin = spinner.Start(out, "starting evaluation")
	}
	env.orch.OnProgress(func(event orchestration.ProgressEvent) {
		if spin == nil {
			return
		}
		switch event.EventType {
		case orchestration.EventStageProgress:
			spin.Update(fmt.Sprintf("%s: %d/%d", event.Stage, event.Completed, event.Total))
		case orchestration.EventEvaluationStart:
			spin.Update("understanding behavior")
		}
	})

	ev, runErr := env.orch.RunEvaluation(cmd.Context(), evalID)
	if spin != nil {
		spin.Stop()
	}
	if runErr != nil {
		return &RunFailedError{Message: fmt.Sprintf("evaluation %s failed: %v", evalID, runErr)}
	}

	printEvaluationSummary(cmd, ev)
	return nil
}

func printEvaluationSummary(cmd *cobra.Command, ev *models.Evaluation) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Evaluation %s (%s) %s\n", ev.ID, ev.BehaviorKey, ev.Status)
	if ev.Results == nil {
		return
	}

	if ev.Results.OverallScore != nil {
		fmt.Fprintf(out, "  overall score: %.2f\n", *ev.Results.OverallScore)
	} else {
		fmt.Fprintln(out, "  overall score: n/a (no valid judge scores)")
	}
	if dist := ev.Results.ScoreDistribution; dist != nil {
		fmt.Fprintf(out, "  distribution:  min %.2f / mean %.2f / max %.2f / std %.2f\n",
			dist.Min, dist.Mean, dist.Max, dist.Std)
	}
	if len(ev.Results.FailurePatterns) > 0 {
		fmt.Fprintln(out, "  failure patterns:")
		for _, p := range ev.Results.FailurePatterns {
			fmt.Fprintf(out, "    - %s\n", p)
		}
	}
	if len(ev.Results.KeyQuotes) > 0 {
		fmt.Fprintln(out, "  key quotes:")
		for _, q := range ev.Results.KeyQuotes {
			fmt.Fprintf(out, "    %q\n", truncateQuote(q.Quote))
		}
	}
}

func truncateQuote(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}
