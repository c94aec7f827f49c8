package project

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campushub/server/internal/shared/response"
	"github.com/campushub/server/internal/utils/pagination"
)

// Handler serves the project HTTP API.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a project handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes mounts the project routes under the authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	projects := rg.Group("/projects")
	{
		projects.POST("", h.Create)
		projects.GET("/:id", h.Get)
		projects.GET("", h.ListMine)
	}
}

// Create handles POST /projects.
func (h *Handler) Create(c *gin.Context) {
	userID := response.RequireUser(c)
	if userID == uuid.Nil {
		return
	}

	var input CreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	p, err := h.service.CreateProject(c.Request.Context(), userID, input.Title, input.Description, input.FundingGoal)
	switch {
	case errors.Is(err, ErrEmptyTitle):
		response.Error(c, http.StatusUnprocessableEntity, "empty_title", "project title is required")
	case errors.Is(err, ErrInvalidGoal):
		response.Error(c, http.StatusUnprocessableEntity, "invalid_goal", "funding goal cannot be negative")
	case err != nil:
		h.logger.Error("create project failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "internal_error", "failed to create project")
	default:
		response.Created(c, p)
	}
}

// Get handles GET /projects/:id.
func (h *Handler) Get(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_id", "invalid project id")
		return
	}

	p, stats, err := h.service.GetProject(c.Request.Context(), projectID)
	switch {
	case errors.Is(err, ErrProjectNotFound):
		response.Error(c, http.StatusNotFound, "not_found", "project not found")
	case err != nil:
		h.logger.Error("get project failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "internal_error", "failed to get project")
	default:
		response.OK(c, Detail{Project: p, Stats: stats})
	}
}

// ListMine handles GET /projects, scoped to the caller's projects.
func (h *Handler) ListMine(c *gin.Context) {
	userID := response.RequireUser(c)
	if userID == uuid.Nil {
		return
	}

	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}

	ps, total, err := h.service.ListByOwner(c.Request.Context(), userID, page.Limit(), page.Offset())
	if err != nil {
		h.logger.Error("list projects failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "internal_error", "failed to list projects")
		return
	}

	response.OK(c, gin.H{
		"projects":   ps,
		"pagination": page.Info(total),
	})
}
