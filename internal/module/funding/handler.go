package funding

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campushub/server/internal/shared/response"
	"github.com/campushub/server/internal/utils/pagination"
)

// Handler serves the funding HTTP API.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a funding handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes mounts the funding routes under the authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	projects := rg.Group("/projects/:id")
	{
		projects.POST("/funding-requests", h.Offer)
		projects.GET("/funding-requests", h.ListRequests)
		projects.GET("/funds", h.ListFunds)
	}
	requests := rg.Group("/funding-requests/:id")
	{
		requests.POST("/verify", h.Verify)
		requests.POST("/reject", h.Reject)
	}
}

// Offer handles POST /projects/:id/funding-requests.
func (h *Handler) Offer(c *gin.Context) {
	userID := response.RequireUser(c)
	if userID == uuid.Nil {
		return
	}
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_id", "invalid project id")
		return
	}

	var input OfferInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	req, err := h.service.OfferFunding(c.Request.Context(), projectID, userID, input.Amount, input.Note)
	switch {
	case errors.Is(err, ErrProjectNotFound):
		response.Error(c, http.StatusNotFound, "not_found", "project not found")
	case errors.Is(err, ErrInvalidAmount):
		response.Error(c, http.StatusUnprocessableEntity, "invalid_amount", "funding amount must be positive")
	case errors.Is(err, ErrDuplicateRequest):
		response.Error(c, http.StatusUnprocessableEntity, "duplicate_request", "a pending funding request already exists")
	case err != nil:
		h.logger.Error("offer funding failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "internal_error", "failed to create funding request")
	default:
		response.Created(c, req)
	}
}

// Verify handles POST /funding-requests/:id/verify.
func (h *Handler) Verify(c *gin.Context) {
	userID := response.RequireUser(c)
	if userID == uuid.Nil {
		return
	}
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_id", "invalid request id")
		return
	}

	req, err := h.service.VerifyRequest(c.Request.Context(), requestID, userID)
	switch {
	case errors.Is(err, ErrRequestNotFound):
		response.Error(c, http.StatusNotFound, "not_found", "funding request not found")
	case errors.Is(err, ErrNotProjectOwner):
		response.Error(c, http.StatusForbidden, "forbidden", "only the project owner may verify")
	case errors.Is(err, ErrAlreadyProcessed):
		response.Error(c, http.StatusUnprocessableEntity, "already_processed", "request is not pending")
	case err != nil:
		h.logger.Error("verify funding request failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "internal_error", "failed to verify funding request")
	default:
		response.OK(c, req)
	}
}

// Reject handles POST /funding-requests/:id/reject.
func (h *Handler) Reject(c *gin.Context) {
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
		response.Error(c, http.StatusNotFound, "not_found", "funding request not found")
	case errors.Is(err, ErrNotProjectOwner):
		response.Error(c, http.StatusForbidden, "forbidden", "only the project owner may reject")
	case errors.Is(err, ErrAlreadyProcessed):
		response.Error(c, http.StatusUnprocessableEntity, "already_processed", "request is not pending")
	case err != nil:
		h.logger.Error("reject funding request failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "internal_error", "failed to reject funding request")
	default:
		response.OK(c, gin.H{"status": "rejected"})
	}
}

// ListRequests handles GET /projects/:id/funding-requests.
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
		response.Error(c, http.StatusForbidden, "forbidden", "only the project owner may list funding requests")
	case err != nil:
		h.logger.Error("list funding requests failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "internal_error", "failed to list funding requests")
	default:
		response.OK(c, gin.H{
			"requests":   reqs,
			"pagination": page.Info(total),
		})
	}
}

// ListFunds handles GET /projects/:id/funds.
func (h *Handler) ListFunds(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_id", "invalid project id")
		return
	}

	funds, err := h.service.ListProjectFunds(c.Request.Context(), projectID)
	if err != nil {
		h.logger.Error("list funds failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "internal_error", "failed to list funds")
		return
	}
	response.OK(c, gin.H{"funds": funds})
}
