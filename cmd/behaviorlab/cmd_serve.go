package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mangleddev/behaviorlab/internal/webapi"
	"github.com/mangleddev/behaviorlab/internal/webserver"
)

func newServeCommand() *cobra.Command {
	var (
		port      int
		noBrowser bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: `Start the REST API server.

Exposes evaluation, comparison and behavior CRUD, asynchronous run
triggers, status polling, and a WebSocket progress feed on /api/ws.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			env, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer env.Close() //nolint:errcheck

			if !cmd.Flags().Changed("port") {
				port = env.cfg.Server.Port
			}
			if !cmd.Flags().Changed("no-browser") && env.cfg.Server.NoBrowser != nil {
				noBrowser = *env.cfg.Server.NoBrowser
			}

			handlers := webapi.NewHandlers(env.store, env.orch, env.log)
			srv := webserver.New(webserver.Config{
				Port:      port,
				NoBrowser: noBrowser,
				Logger:    env.log,
			}, handlers)
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 3000, "Port to listen on")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Do not open the browser")

	return cmd
}
