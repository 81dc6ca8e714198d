package catalog

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/galoya-api/internal/apperr"
)

// Handler はリソース1種類分のHTTPハンドラーです。
// I と P はリクエストボディのデコード先です。
type Handler[T Entity[T], I Input[T], P Patch[T]] struct {
	service *Service[T]
	label   string
	logger  *zap.Logger
}

// NewHandler は Handler を作成します。label はエラーメッセージに使う単数形の名前です。
func NewHandler[T Entity[T], I Input[T], P Patch[T]](service *Service[T], label string, logger *zap.Logger) *Handler[T, I, P] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler[T, I, P]{service: service, label: label, logger: logger}
}

// Register はルートを登録します。参照系は認証不要、更新系は guard を通します。
func (h *Handler[T, I, P]) Register(group *gin.RouterGroup, guard gin.HandlerFunc) {
	group.GET("", h.List)
	group.GET("/:slugOrId", h.Get)
	group.POST("", guard, h.Create)
	group.PUT("/:id", guard, h.Update)
	group.DELETE("/:id", guard, h.Delete)
}

func (h *Handler[T, I, P]) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		apperr.Respond(c, h.logger, apperr.Backend("Failed to fetch "+h.label+" list", err))
		return
	}
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler[T, I, P]) Get(c *gin.Context) {
	item, err := h.service.GetBySlugOrID(c.Request.Context(), c.Param("slugOrId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler[T, I, P]) Create(c *gin.Context) {
	var in I
	if err := c.ShouldBindJSON(&in); err != nil {
		apperr.Respond(c, h.logger, apperr.InvalidRequest("Invalid request body"))
		return
	}
	item, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.logger.Info("resource created",
		zap.String("resource", h.label),
		zap.String("id", item.Metadata().ID),
		zap.String("slug", item.Metadata().Slug),
	)
	c.JSON(http.StatusCreated, item)
}

func (h *Handler[T, I, P]) Update(c *gin.Context) {
	var patch P
	if err := c.ShouldBindJSON(&patch); err != nil {
		apperr.Respond(c, h.logger, apperr.InvalidRequest("Invalid request body"))
		return
	}
	item, err := h.service.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.logger.Info("resource updated", zap.String("resource", h.label), zap.String("id", item.Metadata().ID))
	c.JSON(http.StatusOK, item)
}

func (h *Handler[T, I, P]) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		apperr.Respond(c, h.logger, apperr.Backend("Failed to delete "+h.label, err))
		return
	}
	h.logger.Info("resource deleted", zap.String("resource", h.label), zap.String("id", id))
	c.JSON(http.StatusOK, gin.H{"message": h.label + " deleted successfully"})
}

func (h *Handler[T, I, P]) respondError(c *gin.Context, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		apperr.Respond(c, h.logger, apperr.Validation("VALIDATION_ERROR", verr.Error()))
	case errors.Is(err, ErrSlugConflict):
		apperr.Respond(c, h.logger, apperr.Validation("SLUG_CONFLICT", "Slug already exists"))
	case errors.Is(err, ErrNotFound):
		apperr.Respond(c, h.logger, apperr.NotFound(h.label+" not found"))
	default:
		apperr.Respond(c, h.logger, err)
	}
}
