package session

import (
	"context"
	"fmt"
)

// Memory is the load-or-create factory over a Store. It holds no
// per-session state of its own.
type Memory struct {
	store Store
}

func NewMemory(store Store) *Memory {
	return &Memory{store: store}
}

// Load returns the stored state for the pair or a fresh zero-valued one.
func (m *Memory) Load(ctx context.Context, visitorID, tenantID string) (*State, error) {
	state, err := m.store.Get(ctx, Key(visitorID, tenantID))
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if state == nil {
		return NewState(visitorID, tenantID), nil
	}
	state.VisitorID = visitorID
	state.TenantID = tenantID
	return state, nil
}

// Save persists state after a turn.
func (m *Memory) Save(ctx context.Context, state *State) error {
	if err := m.store.Save(ctx, state); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
