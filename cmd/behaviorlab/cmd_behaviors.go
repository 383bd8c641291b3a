package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newBehaviorsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "behaviors",
		Short: "List and extend the behavior catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer env.Close() //nolint:errcheck

			behaviors, err := env.store.ListBehaviors(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tDESCRIPTION")
			for _, b := range behaviors {
				fmt.Fprintf(w, "%s\t%s\n", b.Key, b.Description)
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(newBehaviorsAddCommand())
	return cmd
}

func newBehaviorsAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <key> <description>",
		Short: "Add a custom behavior to the catalog",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer env.Close() //nolint:errcheck

			b, err := env.store.AddBehavior(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added behavior %s\n", b.Key)
			return nil
		},
	}
}
