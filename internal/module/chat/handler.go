package chat

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campushub/server/internal/shared/response"
	"github.com/campushub/server/internal/utils/pagination"
)

// Handler serves the chat history REST endpoint. Sending and read receipts go
// over the websocket.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a chat handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes mounts the chat routes under the authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/messages", h.ListConversation)
}

// ListConversation handles GET /messages?with=<userID>.
func (h *Handler) ListConversation(c *gin.Context) {
	userID := response.RequireUser(c)
	if userID == uuid.Nil {
		return
	}

	otherID, err := uuid.Parse(c.Query("with"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_query", "query parameter 'with' must be a user id")
		return
	}

	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}

	ms, total, err := h.service.ListConversation(c.Request.Context(), userID, otherID, page.Limit(), page.Offset())
	if err != nil {
		h.logger.Error("list conversation failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "internal_error", "failed to list messages")
		return
	}

	response.OK(c, gin.H{
		"messages":   ms,
		"pagination": page.Info(total),
	})
}
