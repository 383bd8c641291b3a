package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List evaluations and comparisons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer env.Close() //nolint:errcheck

			evals, err := env.store.ListEvaluations(ctx)
			if err != nil {
				return err
			}
			comparisons, err := env.store.ListComparisons(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tBEHAVIOR\tTIER\tSTATUS\tSCORE\tNAME")
			for _, ev := range evals {
				score := "-"
				if ev.Results != nil && ev.Results.OverallScore != nil {
					score = fmt.Sprintf("%.2f", *ev.Results.OverallScore)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					ev.ID, ev.BehaviorKey, ev.Config.Tier, ev.Status, score, ev.Name)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if len(comparisons) == 0 {
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout())
			w = tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "COMPARISON\tBEHAVIOR\tSTATUS\tWINNER\tNAME")
			for _, c := range comparisons {
				winner := "-"
				if c.Results != nil {
					winner = c.Results.Winner
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.BehaviorKey, c.Status, winner, c.Name)
			}
			return w.Flush()
		},
	}
	return cmd
}
