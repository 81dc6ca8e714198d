// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/galoya-api/internal/auth"
	"github.com/yourusername/galoya-api/internal/bootstrap"
	"github.com/yourusername/galoya-api/internal/config"
	"github.com/yourusername/galoya-api/internal/logging"
	"github.com/yourusername/galoya-api/internal/metrics"
	"github.com/yourusername/galoya-api/internal/password"
	"github.com/yourusername/galoya-api/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	logger, err := logging.New(cfg.GinMode, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	if err := run(cfg, logger); err != nil {
		logging.Error(logger, "server terminated", err)
		_ = logger.Sync()
		log.Fatal(err)
	}
	_ = logger.Sync()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storage, err := bootstrap.OpenStorage(ctx, cfg, true, logger)
	if err != nil {
		return err
	}
	defer storage.Close()

	sessions, closeSessions, err := bootstrap.NewSessionManager(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = closeSessions() }()

	notifier, closeNotifier, err := bootstrap.NewContactNotifier(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = closeNotifier() }()

	m := metrics.New()
	gateway := auth.NewGateway(
		storage.Users,
		password.NewHasher(cfg.BcryptCost),
		sessions,
		auth.LockoutPolicy{MaxAttempts: cfg.LoginMaxAttempts, Window: cfg.LoginWindow, Lock: cfg.LoginLock},
		m,
		logger,
	)

	router, err := server.NewRouter(server.Options{
		Logger:         logger,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		TrustedProxies: cfg.TrustedProxies,
		Sessions:       sessions,
		Gateway:        gateway,
		Catalog:        storage.Catalog,
		Contact:        notifier,
		Metrics:        m,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting API server", zap.String("addr", srv.Addr), zap.String("mode", cfg.GinMode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
