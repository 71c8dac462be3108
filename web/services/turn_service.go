package services

import (
	"context"
	"fmt"

	apperrors "concierge/errors"
	"concierge/pipeline"
	"concierge/session"
	"concierge/tenant"

	"go.uber.org/zap"
)

// TenantProvider returns the latest valid configuration for a tenant.
type TenantProvider interface {
	Get(id string) (*tenant.Tenant, error)
}

// TurnService is the resolve-turn boundary: it validates the tenant, loads
// the visitor's session under a per-session lock, runs the pipeline and
// persists the session.
type TurnService struct {
	tenants TenantProvider
	memory  *session.Memory
	locker  *session.Locker
	engine  *pipeline.Engine
	logger  *zap.Logger
}

func NewTurnService(tenants TenantProvider, memory *session.Memory, locker *session.Locker, engine *pipeline.Engine, logger *zap.Logger) *TurnService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TurnService{
		tenants: tenants,
		memory:  memory,
		locker:  locker,
		engine:  engine,
		logger:  logger,
	}
}

// ResolveTurn returns ErrInvalidInput for malformed tenant ids and the
// registry's error for unknown or unparsable tenants. Once a tenant is
// found a reply is always produced.
func (s *TurnService) ResolveTurn(ctx context.Context, tenantID, visitorID, message string) (pipeline.Decision, error) {
	if !tenant.ValidID(tenantID) {
		return pipeline.Decision{}, fmt.Errorf("%w: tenant id %q", apperrors.ErrInvalidInput, tenantID)
	}
	t, err := s.tenants.Get(tenantID)
	if err != nil {
		return pipeline.Decision{}, err
	}

	unlock := s.locker.Lock(session.Key(visitorID, tenantID))
	defer unlock()

	state, err := s.memory.Load(ctx, visitorID, tenantID)
	if err != nil {
		s.logger.Error("Failed to load session, starting fresh",
			zap.String("tenant_id", tenantID),
			zap.String("visitor_id", visitorID),
			zap.Error(err))
		state = session.NewState(visitorID, tenantID)
	}

	decision := s.engine.Resolve(ctx, t, state, message)

	if err := s.memory.Save(ctx, state); err != nil {
		s.logger.Error("Failed to save session",
			zap.String("tenant_id", tenantID),
			zap.String("visitor_id", visitorID),
			zap.Error(err))
	}
	return decision, nil
}
