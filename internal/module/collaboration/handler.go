package collaboration

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campushub/server/internal/shared/response"
	"github.com/campushub/server/internal/utils/pagination"
)

// Handler serves the collaboration HTTP API.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a collaboration handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes mounts the collaboration routes under the authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	projects := rg.Group("/projects/:id")
	{
		projects.POST("/collaboration-requests", h.CreateRequest)
		projects.GET("/collaboration-requests", h.ListRequests)
		projects.GET("/collaborators", h.ListCollaborators)
		projects.DELETE("/collaborators/:userID", h.RemoveCollaborator)
	}
	requests := rg.Group("/collaboration-requests/:id")
	{
		requests.POST("/approve", h.ApproveRequest)
		requests.POST("/reject", h.RejectRequest)
	}
}

// CreateRequest handles POST /projects/:id/collaboration-requests.
func (h *Handler) CreateRequest(c *gin.Context) {
	userID := response.RequireUser(c)
	if userID == uuid.Nil {
		return
	}
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_id", "invalid project id")
		return
	}

	var input CreateRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	req, err := h.service.RequestCollaboration(c.Request.Context(), projectID, userID, input.Message)
	switch {
	case errors.Is(err, ErrProjectNotFound):
		response.Error(c, http.StatusNotFound, "not_found", "project not found")
	case errors.Is(err, ErrOwnProject):
		response.Error(c, http.StatusUnprocessableEntity, "own_project", "project owner cannot request collaboration")
	case errors.Is(err, ErrAlreadyCollaborator):
		response.Error(c, http.StatusUnprocessableEntity, "already_collaborator", "user is already a collaborator")
	case errors.Is(err, ErrDuplicateRequest):
		response.Error(c, http.StatusUnprocessableEntity, "duplicate_request", "a pending request already exists")
	case err != nil:
		h.logger.Error("create collaboration request failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "internal_error", "failed to create request")
	default:
		response.Created(c, req)
	}
}

// ApproveRequest handles POST /collaboration-requests/:id/approve.
func (h *Handler) ApproveRequest(c *gin.Context) {
	userID := response.RequireUser(c)
	if userID == uuid.Nil {
		return
	}
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_id", "invalid request id")
		return
	}

	req, err := h.service.ApproveRequest(c.Request.Context(), requestID, userID)
	switch {
	case errors.Is(err, ErrRequestNotFound):
		response.Error(c, http.StatusNotFound, "not_found", "collaboration request not found")
	case errors.Is(err, ErrNotProjectOwner):
		response.Error(c, http.StatusForbidden, "forbidden", "only the project owner may approve")
	case errors.Is(err, ErrAlreadyProcessed):
		response.Error(c, http.StatusUnprocessableEntity, "already_processed", "request is not pending")
	case err != nil:
		h.logger.Error("approve collaboration request failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "internal_error", "failed to approve request")
	default:
		response.OK(c, req)
	}
}

// RejectRequest handles POST /collaboration-requests/:id/reject.
func (h *Handler) RejectRequest(c *gin.Context) {
	userID := response.RequireUser(c)
	if userID == uuid.Nil {
		return
	}
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_id", "invalid request id")
		return
	}

	err = h.service.RejectRequest(c.Request.Context(), requestID, userID)
	switch {
	case errors.Is(err, ErrRequestNotFound):
		response.Error(c, http.StatusNotFound, "not_found", "collaboration request not found")
	case errors.Is(err, ErrNotProjectOwner):
		response.Error(c, http.StatusForbidden, "forbidden", "only the project owner may reject")
	case errors.Is(err, ErrAlreadyProcessed):
		response.Error(c, http.StatusUnprocessableEntity, "already_processed", "request is not pending")
	case err != nil:
		h.logger.Error("reject collaboration request failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "internal_error", "failed to reject request")
	default:
		response.OK(c, gin.H{"status": "rejected"})
	}
}

// ListRequests handles GET /projects/:id/collaboration-requests.
func (h *Handler) ListRequests(c *gin.Context) {
	userID := response.RequireUser(c)
	if userID == uuid.Nil {
		return
	}
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_id", "invalid project id")
		return
	}

	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}
	status := RequestStatus(c.Query("status"))

	reqs, total, err := h.service.ListProjectRequests(c.Request.Context(), projectID, userID, status, page.Limit(), page.Offset())
	switch {
	case errors.Is(err, ErrProjectNotFound):
		response.Error(c, http.StatusNotFound, "not_found", "project not found")
	case errors.Is(err, ErrNotProjectOwner):
		response.Error(c, http.StatusForbidden, "forbidden", "only the project owner may list requests")
	case err != nil:
		h.logger.Error("list collaboration requests failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "internal_error", "failed to list requests")
	default:
		response.OK(c, gin.H{
			"requests":   reqs,
			"pagination": page.Info(total),
		})
	}
}

// ListCollaborators handles GET /projects/:id/collaborators.
func (h *Handler) ListCollaborators(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_id", "invalid project id")
		return
	}

	cs, err := h.service.ListCollaborators(c.Request.Context(), projectID)
	if err != nil {
		h.logger.Error("list collaborators failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "internal_error", "failed to list collaborators")
		return
	}
	response.OK(c, gin.H{"collaborators": cs})
}

// RemoveCollaborator handles DELETE /projects/:id/collaborators/:userID.
func (h *Handler) RemoveCollaborator(c *gin.Context) {
	actorID := response.RequireUser(c)
	if actorID == uuid.Nil {
		return
	}
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_id", "invalid project id")
		return
	}
	userID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_id", "invalid user id")
		return
	}

	err = h.service.RemoveCollaborator(c.Request.Context(), projectID, userID, actorID)
	switch {
	case errors.Is(err, ErrProjectNotFound):
		response.Error(c, http.StatusNotFound, "not_found", "project not found")
	case errors.Is(err, ErrNotProjectOwner):
		response.Error(c, http.StatusForbidden, "forbidden", "only the project owner may remove collaborators")
	case errors.Is(err, ErrCannotRemoveOwner):
		response.Error(c, http.StatusUnprocessableEntity, "cannot_remove_owner", "project owner cannot be removed")
	case errors.Is(err, ErrNotCollaborator):
		response.Error(c, http.StatusNotFound, "not_found", "user is not a collaborator")
	case err != nil:
		h.logger.Error("remove collaborator failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "internal_error", "failed to remove collaborator")
	default:
		response.OK(c, gin.H{"status": "removed"})
	}
}
