package services

import (
	"context"
	"fmt"

	"concierge/database"
	apperrors "concierge/errors"
	"concierge/tenant"
	"concierge/web/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LeadSink persists captured leads.
type LeadSink interface {
	AppendLead(ctx context.Context, lead database.Lead) (uuid.UUID, error)
}

// LeadService tags leads with the tenant's sheet identifier before handing
// them to the sink.
type LeadService struct {
	tenants TenantProvider
	sink    LeadSink
	logger  *zap.Logger
}

func NewLeadService(tenants TenantProvider, sink LeadSink, logger *zap.Logger) *LeadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadService{tenants: tenants, sink: sink, logger: logger}
}

func (s *LeadService) Capture(ctx context.Context, tenantID, visitorID string, req types.LeadRequest) (uuid.UUID, error) {
	if !tenant.ValidID(tenantID) {
		return uuid.Nil, fmt.Errorf("%w: tenant id %q", apperrors.ErrInvalidInput, tenantID)
	}
	t, err := s.tenants.Get(tenantID)
	if err != nil {
		return uuid.Nil, err
	}

	id, err := s.sink.AppendLead(ctx, database.Lead{
		TenantID:  tenantID,
		SheetID:   t.Config.SheetID,
		VisitorID: visitorID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Message:   req.Message,
	})
	if err != nil {
		return uuid.Nil, err
	}
	s.logger.Info("Lead captured",
		zap.String("tenant_id", tenantID),
		zap.String("visitor_id", visitorID),
		zap.String("lead_id", id.String()))
	return id, nil
}
