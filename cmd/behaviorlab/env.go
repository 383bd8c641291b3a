package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mangleddev/behaviorlab/internal/oracle"
	"github.com/mangleddev/behaviorlab/internal/orchestration"
	"github.com/mangleddev/behaviorlab/internal/projectconfig"
	"github.com/mangleddev/behaviorlab/internal/rollout"
	"github.com/mangleddev/behaviorlab/internal/store"
)

// appEnv bundles the wired-up services every subcommand needs: project
// config, the record store, and the orchestrator with its oracle.
type appEnv struct {
	cfg   *projectconfig.ProjectConfig
	store *store.Store
	orch  *orchestration.Orchestrator
	log   *slog.Logger
}

// openEnv loads project configuration from the working directory and opens
// the record store. Callers must Close.
func openEnv(ctx context.Context) (*appEnv, error) {
	cfg, err := projectconfig.Load(".")
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("opening record store: %w", err)
	}

	log := slog.Default()
	cli := &oracle.CLIOracle{
		Command:   cfg.Oracle.Command,
		ExtraArgs: cfg.Oracle.ExtraArgs,
	}
	engine := rollout.NewEngine(cli, cli, log)

	return &appEnv{
		cfg:   cfg,
		store: st,
		orch:  orchestration.New(st, cli, engine, log),
		log:   log,
	}, nil
}

func (e *appEnv) Close() error {
	return e.store.Close()
}
