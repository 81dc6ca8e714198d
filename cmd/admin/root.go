package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/yourusername/galoya-api/internal/bootstrap"
	"github.com/yourusername/galoya-api/internal/config"
	"github.com/yourusername/galoya-api/internal/logging"
)

// env はコマンドが使う外部依存です。テストでは差し替えます。
type env struct {
	loadConfig   func() (*config.Config, error)
	openStorage  func(ctx context.Context, cfg *config.Config, migrate bool, logger *zap.Logger) (*bootstrap.Storage, error)
	readPassword func(fd int) ([]byte, error)
	stdinFD      int
}

func defaultEnv() *env {
	return &env{
		loadConfig:   config.Load,
		openStorage:  bootstrap.OpenStorage,
		readPassword: term.ReadPassword,
		stdinFD:      int(os.Stdin.Fd()),
	}
}

// NewRootCmd は管理CLIのルートコマンドを作成します。
func NewRootCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "galoya-admin",
		Short:         "Administrative tasks for the Galoya API",
		SilenceUsage:  true,
	}

	cmd.AddCommand(newMigrateCmd(e))
	cmd.AddCommand(newCreateUserCmd(e))
	cmd.AddCommand(newSeedCmd(e))

	return cmd
}

// setup は設定・ロガー・ストレージをまとめて用意します。
func (e *env) setup(ctx context.Context, migrate bool) (*config.Config, *zap.Logger, *bootstrap.Storage, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := logging.New(cfg.GinMode, cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, err
	}
	storage, err := e.openStorage(ctx, cfg, migrate, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, storage, nil
}
