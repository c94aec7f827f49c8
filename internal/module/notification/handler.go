package notification

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campushub/server/internal/shared/response"
	"github.com/campushub/server/internal/utils/pagination"
)

// Handler serves the notification HTTP API.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a notification handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes mounts the notification routes. All of them require auth.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	notifications := rg.Group("/notifications")
	{
		notifications.GET("", h.List)
		notifications.GET("/unread-count", h.UnreadCount)
		notifications.POST("/read-all", h.MarkAllRead)
		notifications.POST("/:id/read", h.MarkRead)
	}
}

type listQuery struct {
	pagination.Pagination
	UnreadOnly bool `form:"unread_only"`
}

// List handles GET /notifications.
func (h *Handler) List(c *gin.Context) {
	userID := response.RequireUser(c)
	if userID == uuid.Nil {
		return
	}

	var query listQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}

	ns, total, err := h.service.List(c.Request.Context(), userID, ListCriteria{
		UnreadOnly: query.UnreadOnly,
		Limit:      query.Limit(),
		Offset:     query.Offset(),
	})
	if err != nil {
		h.logger.Error("list notifications failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "internal_error", "failed to list notifications")
		return
	}

	response.OK(c, gin.H{
		"notifications": ns,
		"pagination":    query.Info(total),
	})
}

// UnreadCount handles GET /notifications/unread-count.
func (h *Handler) UnreadCount(c *gin.Context) {
	userID := response.RequireUser(c)
	if userID == uuid.Nil {
		return
	}

	count, err := h.service.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("unread count failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "internal_error", "failed to count notifications")
		return
	}

	response.OK(c, gin.H{"unread_count": count})
}

// MarkRead handles POST /notifications/:id/read.
func (h *Handler) MarkRead(c *gin.Context) {
	userID := response.RequireUser(c)
	if userID == uuid.Nil {
		return
	}

	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_id", "invalid notification id")
		return
	}

	err = h.service.MarkRead(c.Request.Context(), userID, notificationID)
	switch {
	case errors.Is(err, ErrNotificationNotFound):
		response.Error(c, http.StatusNotFound, "not_found", "notification not found")
	case errors.Is(err, ErrNotRecipient):
		response.Error(c, http.StatusForbidden, "forbidden", "notification belongs to another user")
	case err != nil:
		h.logger.Error("mark read failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "internal_error", "failed to mark notification read")
	default:
		response.OK(c, gin.H{"status": "read"})
	}
}

// MarkAllRead handles POST /notifications/read-all.
func (h *Handler) MarkAllRead(c *gin.Context) {
	userID := response.RequireUser(c)
	if userID == uuid.Nil {
		return
	}

	if err := h.service.MarkAllRead(c.Request.Context(), userID); err != nil {
		h.logger.Error("mark all read failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "internal_error", "failed to mark notifications read")
		return
	}

	response.OK(c, gin.H{"status": "read"})
}
