// Package logging は zap ロガーの構築とリクエストログ用ミドルウェアを提供します。
package logging

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/oops"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New は実行モードに応じたロガーを作成します。
// release モードでは JSON 形式（info 以上）、それ以外は開発用フォーマット（debug 以上）で出力します。
// level が指定されていればモードの既定値より優先します。
func New(mode, level string) (*zap.Logger, error) {
	var cfg zap.Config
	if mode == gin.ReleaseMode {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	return cfg.Build()
}

// Middleware はリクエストごとにメソッド・ルート・ステータス・処理時間を記録します。
func Middleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("clientIp", c.ClientIP()),
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			logger.Warn("request completed with server error", fields...)
		default:
			logger.Debug("request completed", fields...)
		}
	}
}

// Error はエラーを構造化して記録します。
// oops エラーの場合はコードとコンテキストも出力します。
func Error(logger *zap.Logger, msg string, err error, fields ...zap.Field) {
	if oopsErr, ok := oops.AsOops(err); ok {
		fields = append(fields, zap.String("error", oopsErr.Error()))
		if code := oopsErr.Code(); code != nil {
			fields = append(fields, zap.Any("code", code))
		}
		if ctx := oopsErr.Context(); len(ctx) > 0 {
			fields = append(fields, zap.Any("context", ctx))
		}
		logger.Error(msg, fields...)
		return
	}
	logger.Error(msg, append(fields, zap.Error(err))...)
}
