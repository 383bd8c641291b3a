package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mangleddev/behaviorlab/internal/config"
	"github.com/mangleddev/behaviorlab/internal/models"
	"github.com/mangleddev/behaviorlab/internal/orchestration"
)

func newCompareCommand() *cobra.Command {
	var (
		name          string
		behaviorKey   string
		tier          string
		systemPromptA string
		systemPromptB string
		variantA      string
		variantB      string
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Run an A/B comparison of two prompt configurations",
		Long: `Run an A/B comparison of two prompt configurations.

Both sides share the behavior and tier configuration and differ only in
their prompt config. Side A runs to completion, then side B; the higher
overall score wins.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer env.Close() //nolint:errcheck

			c, err := env.orch.CreateComparison(ctx, orchestration.NewComparisonParams{
				Name:          name,
				BehaviorKey:   behaviorKey,
				Tier:          tier,
				PromptConfigA: models.PromptConfig{SystemPrompt: systemPromptA, Variant: variantA},
				PromptConfigB: models.PromptConfig{SystemPrompt: systemPromptB, Variant: variantB},
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created comparison %s (evaluations %s, %s)\n", c.ID, c.EvaluationA, c.EvaluationB)

			final, err := env.orch.RunComparison(ctx, c.ID)
			if err != nil {
				return &RunFailedError{Message: fmt.Sprintf("comparison %s failed: %v", c.ID, err)}
			}

			r := final.Results
			fmt.Fprintf(cmd.OutOrStdout(), "Winner: %s (A %.2f vs B %.2f, difference %.2f)\n",
				r.Winner, r.ScoreA, r.ScoreB, r.Difference)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Comparison name")
	cmd.Flags().StringVarP(&behaviorKey, "behavior", "b", "", "Behavior key to evaluate")
	cmd.Flags().StringVar(&tier, "tier", config.TierQuick, "Tier: quick, standard, comprehensive")
	cmd.Flags().StringVar(&systemPromptA, "system-prompt-a", "", "System prompt for side A")
	cmd.Flags().StringVar(&systemPromptB, "system-prompt-b", "", "System prompt for side B")
	cmd.Flags().StringVar(&variantA, "variant-a", "A", "Variant label for side A")
	cmd.Flags().StringVar(&variantB, "variant-b", "B", "Variant label for side B")
	cobra.CheckErr(cmd.MarkFlagRequired("behavior"))

	return cmd
}
