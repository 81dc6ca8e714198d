// Package contact はお問い合わせフォームの受付と通知の配送を提供します。
package contact

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/galoya-api/internal/apperr"
)

// 配送結果（メトリクスのラベル）
const (
	ResultDelivered = "delivered"
	ResultInvalid   = "invalid"
	ResultFailed    = "failed"
)

// Message はお問い合わせの内容です。
type Message struct {
	Name    string `json:"name" binding:"required,max=200"`
	Email   string `json:"email" binding:"required,email,max=320"`
	Phone   string `json:"phone,omitempty" binding:"max=50"`
	Message string `json:"message" binding:"required,max=10000"`
}

// Notifier は問い合わせを担当者へ届けます。失敗しても自動で再送はしません。
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// Observer は受付結果を受け取ります。
type Observer interface {
	ObserveContact(result string)
}

// Handler は POST /api/contact のハンドラーです。
type Handler struct {
	notifier Notifier
	observer Observer
	logger   *zap.Logger
}

// NewHandler は Handler を作成します。observer は nil でも構いません。
func NewHandler(notifier Notifier, observer Observer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{notifier: notifier, observer: observer, logger: logger}
}

func (h *Handler) Submit(c *gin.Context) {
	var msg Message
	if err := c.ShouldBindJSON(&msg); err != nil {
		h.observe(ResultInvalid)
		apperr.Respond(c, h.logger, apperr.InvalidRequest("Missing required fields"))
		return
	}
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.TrimSpace(msg.Email)
	msg.Phone = strings.TrimSpace(msg.Phone)
	if msg.Name == "" || strings.TrimSpace(msg.Message) == "" {
		h.observe(ResultInvalid)
		apperr.Respond(c, h.logger, apperr.InvalidRequest("Missing required fields"))
		return
	}

	if err := h.notifier.Notify(c.Request.Context(), msg); err != nil {
		h.observe(ResultFailed)
		apperr.Respond(c, h.logger, apperr.NotificationFailure(err))
		return
	}

	h.observe(ResultDelivered)
	c.JSON(http.StatusOK, gin.H{
		"message": "Message sent successfully",
		"success": true,
	})
}

func (h *Handler) observe(result string) {
	if h.observer != nil {
		h.observer.ObserveContact(result)
	}
}

// LogNotifier は配送せずにログへ記録するだけの Notifier です（開発用）。
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier は LogNotifier を作成します。
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, msg Message) error {
	n.logger.Info("contact message received",
		zap.String("name", msg.Name),
		zap.String("email", msg.Email),
		zap.Bool("hasPhone", msg.Phone != ""),
		zap.Int("messageLength", len(msg.Message)),
	)
	return nil
}
