package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mangleddev/behaviorlab/internal/config"
	"github.com/mangleddev/behaviorlab/internal/models"
	"github.com/mangleddev/behaviorlab/internal/orchestration"
	"github.com/mangleddev/behaviorlab/internal/wizard"
)

func newNewCommand() *cobra.Command {
	var (
		name         string
		behaviorKey  string
		tier         string
		systemPrompt string
		variant      string
		numScenarios int
		numJudges    int
		maxTurns     int
		diversity    float64
		runNow       bool
	)

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a new evaluation",
		Long: `Create a new evaluation.

With a terminal attached and no --behavior flag, an interactive wizard
collects the parameters. Otherwise all parameters come from flags and the
evaluation is created non-interactively.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer env.Close() //nolint:errcheck

			// Flags take precedence; otherwise the defaults section of
			// .behaviorlab.yaml supplies tier and diversity.
			if !cmd.Flags().Changed("tier") && env.cfg.Defaults.Tier != "" {
				tier = env.cfg.Defaults.Tier
			}

			params := orchestration.NewEvaluationParams{
				Name:        name,
				BehaviorKey: behaviorKey,
				Tier:        tier,
				PromptConfig: models.PromptConfig{
					SystemPrompt: systemPrompt,
					Variant:      variant,
				},
			}
			if cmd.Flags().Changed("scenarios") {
				params.Overrides.NumScenarios = &numScenarios
			}
			if cmd.Flags().Changed("judges") {
				params.Overrides.NumJudges = &numJudges
			}
			if cmd.Flags().Changed("max-turns") {
				params.Overrides.MaxTurns = &maxTurns
			}
			if cmd.Flags().Changed("diversity") {
				params.Overrides.Diversity = &diversity
			} else if env.cfg.Defaults.Diversity != nil {
				params.Overrides.Diversity = env.cfg.Defaults.Diversity
			}

			isTTY := false
			if f, ok := cmd.InOrStdin().(*os.File); ok {
				isTTY = term.IsTerminal(int(f.Fd()))
			}

			if behaviorKey == "" && isTTY {
				behaviors, err := env.store.ListBehaviors(ctx)
				if err != nil {
					return err
				}
				spec, err := wizard.RunEvaluationWizard(cmd.InOrStdin(), cmd.OutOrStdout(), behaviors)
				if err != nil {
					return err
				}
				params.Name = spec.Name
				params.BehaviorKey = spec.BehaviorKey
				params.Tier = spec.Tier
				params.PromptConfig.SystemPrompt = spec.SystemPrompt
				params.Overrides.Diversity = spec.Diversity
			}

			ev, err := env.orch.CreateEvaluation(ctx, params)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created evaluation %s (%s, tier %s)\n", ev.ID, ev.BehaviorKey, ev.Config.Tier)

			if runNow {
				return driveEvaluation(cmd, env, ev.ID)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Run it with: behaviorlab run %s\n", ev.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Evaluation name (default: behavior and tier)")
	cmd.Flags().StringVarP(&behaviorKey, "behavior", "b", "", "Behavior key to evaluate")
	cmd.Flags().StringVar(&tier, "tier", config.TierStandard, "Tier: quick, standard, comprehensive")
	cmd.Flags().StringVar(&systemPrompt, "system-prompt", "", "System prompt applied to the agent under test")
	cmd.Flags().StringVar(&variant, "variant", "", "Prompt variant label")
	cmd.Flags().IntVar(&numScenarios, "scenarios", 0, "Override the tier's scenario count")
	cmd.Flags().IntVar(&numJudges, "judges", 0, "Override the tier's judge count")
	cmd.Flags().IntVar(&maxTurns, "max-turns", 0, "Override the tier's max conversation turns")
	cmd.Flags().Float64Var(&diversity, "diversity", config.DefaultDiversity, "Scenario diversity, 0 to 1")
	cmd.Flags().BoolVar(&runNow, "run", false, "Run the evaluation immediately after creating it")

	return cmd
}
