// Package bootstrap は設定に従って永続化・セッション・通知のバックエンドを組み立てます。
// APIサーバーと管理CLIの双方から使います。
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/yourusername/galoya-api/internal/catalog"
	"github.com/yourusername/galoya-api/internal/config"
	"github.com/yourusername/galoya-api/internal/contact"
	"github.com/yourusername/galoya-api/internal/database"
	"github.com/yourusername/galoya-api/internal/session"
	"github.com/yourusername/galoya-api/internal/users"
)

// Storage はユーザーとカタログの永続化先です。
type Storage struct {
	Users   users.Store
	Catalog *catalog.Repository
	pool    *pgxpool.Pool
}

// Pool は PostgreSQL の接続プールを返します。メモリ構成では nil です。
func (s *Storage) Pool() *pgxpool.Pool {
	return s.pool
}

// Close は接続プールを閉じます。
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// OpenStorage は STORAGE_DRIVER に応じてストアを作成します。
// postgres の場合、migrate が true ならマイグレーションも適用します。
func OpenStorage(ctx context.Context, cfg *config.Config, migrate bool, logger *zap.Logger) (*Storage, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		logger.Warn("using in-memory storage; data is lost on restart")
		return &Storage{
			Users:   users.NewMemoryStore(),
			Catalog: catalog.NewMemoryRepository(),
		}, nil
	case config.StorageDriverPostgres:
		pool, err := database.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := database.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
			logger.Info("database migrations applied")
		}
		return &Storage{
			Users:   users.NewPostgresStore(pool),
			Catalog: catalog.NewPostgresRepository(pool),
			pool:    pool,
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %q", cfg.StorageDriver)
	}
}

// NewSessionManager は SESSION_STORE に応じたストアでセッションマネージャーを作成します。
// 返却する close 関数で Redis クライアントを閉じます。
func NewSessionManager(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*session.Manager, func() error, error) {
	sameSite, err := config.ParseSameSite(cfg.CookieSameSite)
	if err != nil {
		return nil, nil, err
	}
	if cfg.SessionSecret == "" {
		logger.Warn("SESSION_SECRET is empty; session keys are not protected")
	}
	opts := session.Options{
		Cookie: session.CookieOptions{
			Name:     cfg.SessionCookieName,
			Domain:   cfg.CookieDomain,
			Secure:   cfg.CookieSecure,
			SameSite: sameSite,
		},
		TTL:    cfg.SessionTTL,
		Secret: []byte(cfg.SessionSecret),
	}

	var store session.Store
	closeFn := func() error { return nil }
	switch cfg.SessionStore {
	case config.SessionStoreMemory:
		logger.Warn("using in-memory session store; sessions are lost on restart")
		store = session.NewMemoryStore()
	case config.SessionStoreRedis:
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse redis url: %w", err)
		}
		rdb := redis.NewClient(opt)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		store = session.NewRedisStore(rdb)
		closeFn = rdb.Close
	default:
		return nil, nil, fmt.Errorf("unknown session store: %q", cfg.SessionStore)
	}
	return session.NewManager(store, opts, logger), closeFn, nil
}

// NewContactNotifier は CONTACT_DELIVERY に応じた通知手段を作成します。
// queue の場合はワーカーも起動し、返却する close 関数で停止します。
func NewContactNotifier(cfg *config.Config, logger *zap.Logger) (contact.Notifier, func() error, error) {
	noop := func() error { return nil }
	switch cfg.ContactDelivery {
	case config.ContactDeliveryLog:
		logger.Warn("contact messages are logged, not emailed")
		return contact.NewLogNotifier(logger), noop, nil
	case config.ContactDeliverySMTP, config.ContactDeliveryQueue:
		mailer := contact.NewMailer(contact.MailerConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			Timeout:  cfg.SMTPTimeout,
			To:       cfg.ContactEmailTo,
			CC:       cfg.ContactEmailCC,
		}, logger)
		if cfg.ContactDelivery == config.ContactDeliverySMTP {
			return mailer, noop, nil
		}
		queue, err := contact.NewQueue(cfg.RedisURL, mailer, logger)
		if err != nil {
			return nil, nil, err
		}
		queue.StartWorkers()
		return queue, queue.Shutdown, nil
	default:
		return nil, nil, fmt.Errorf("unknown contact delivery: %q", cfg.ContactDelivery)
	}
}
