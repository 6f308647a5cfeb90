package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/programme-lv/trainer/internal/environment"
	"github.com/programme-lv/trainer/internal/logging"
	"github.com/programme-lv/trainer/internal/tester"
	"github.com/programme-lv/trainer/internal/toolchain"
	"github.com/programme-lv/trainer/internal/workspace"
	"github.com/urfave/cli/v3"
)

type app struct {
	cfg    *environment.Config
	env    *environment.EnvConfig
	log    *slog.Logger
	tester *tester.Tester
}

func setup(cmd *cli.Command) (*app, error) {
	env, err := environment.ReadEnvConfig()
	if err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(env.LogLevel)
	if err != nil {
		return nil, err
	}
	log := logging.New(os.Stderr, level)
	slog.SetDefault(log)

	cfgPath := environment.ResolveConfigPath(cmd.String("config"))
	cfg, err := environment.LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	if cfgPath != "" {
		log.Debug("loaded config", "path", cfgPath)
	}

	tc, err := cfg.Toolchain()
	if err != nil {
		return nil, err
	}
	drivers, err := toolchain.NewRegistryFromConfig(tc, log)
	if err != nil {
		return nil, fmt.Errorf("failed to set up toolchains: %w", err)
	}
	workspaces, err := workspace.NewManager(cfg.WorkspaceRoot, log)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:    cfg,
		env:    env,
		log:    log,
		tester: tester.NewTester(workspaces, drivers, log),
	}, nil
}
