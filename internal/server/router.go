// Package server はルーターの組み立て（公開ルートと保護ルートの振り分け）を行います。
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/galoya-api/internal/apperr"
	"github.com/yourusername/galoya-api/internal/auth"
	"github.com/yourusername/galoya-api/internal/catalog"
	"github.com/yourusername/galoya-api/internal/contact"
	"github.com/yourusername/galoya-api/internal/logging"
	"github.com/yourusername/galoya-api/internal/metrics"
	"github.com/yourusername/galoya-api/internal/session"
)

const serviceName = "galoya-api"

// Options はルーターの構築に必要な依存です。
type Options struct {
	Logger         *zap.Logger
	AllowedOrigins []string
	TrustedProxies []string
	Sessions       *session.Manager
	Gateway        *auth.Gateway
	Catalog        *catalog.Repository
	Contact        contact.Notifier
	Metrics        *metrics.Metrics
}

// NewRouter は gin.Engine を組み立てます。
func NewRouter(opts Options) (*gin.Engine, error) {
	if opts.Sessions == nil || opts.Gateway == nil || opts.Catalog == nil || opts.Contact == nil {
		return nil, errors.New("sessions, gateway, catalog and contact are required")
	}
	if len(opts.AllowedOrigins) == 0 {
		return nil, errors.New("at least one CORS origin is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	if err := router.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic recovered", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		apperr.Respond(c, nil, apperr.Backend("Internal server error", nil))
	}))
	router.Use(logging.Middleware(logger))
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware())
	}

	// Cookie を使うので資格情報付きの CORS を許可する
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = opts.AllowedOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))

	router.Use(opts.Sessions.Middleware())

	router.GET("/health", handleHealth)
	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	api := router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		authRoutes.POST("/login", opts.Gateway.Login)
		authRoutes.POST("/logout", opts.Gateway.Logout)
		authRoutes.GET("/me", opts.Gateway.Me)

		var observer contact.Observer
		if opts.Metrics != nil {
			observer = opts.Metrics
		}
		api.POST("/contact", contact.NewHandler(opts.Contact, observer, logger).Submit)

		// 参照系は公開、更新系は RequireAuthentication を通す
		opts.Catalog.RegisterRoutes(api, opts.Gateway.RequireAuthentication(), logger)
	}

	router.NoRoute(func(c *gin.Context) {
		apperr.Respond(c, nil, apperr.NotFound("Not found"))
	})
	return router, nil
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": serviceName,
	})
}
