package handlers

import (
	"context"
	"net/http"

	"concierge/web/middleware"
	"concierge/web/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LeadCapturer stores a contact request for a tenant.
type LeadCapturer interface {
	Capture(ctx context.Context, tenantID, visitorID string, req types.LeadRequest) (uuid.UUID, error)
}

type LeadHandler struct {
	leads  LeadCapturer
	logger *zap.Logger
}

func NewLeadHandler(leads LeadCapturer, logger *zap.Logger) *LeadHandler {
	return &LeadHandler{leads: leads, logger: logger}
}

// CaptureLead handles POST /api/:tenant/lead.
func (h *LeadHandler) CaptureLead(c *gin.Context) {
	var req types.LeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithClientError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	tenantID := c.Param("tenant")
	id, err := h.leads.Capture(c.Request.Context(), tenantID, c.GetString(middleware.VisitorKey), req)
	if err != nil {
		respondWithServiceError(c, err, h.logger, zap.String("tenant_id", tenantID))
		return
	}
	c.JSON(http.StatusCreated, types.LeadResponse{ID: id.String()})
}
