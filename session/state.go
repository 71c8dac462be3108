package session

import (
	"strings"
	"time"
)

// Roles recorded in history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one role-tagged history entry.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// State is the dialogue memory of one (visitor, tenant) pair. It is owned by
// the caller for the duration of a turn and persisted through a Store.
type State struct {
	VisitorID            string    `json:"visitor_id"`
	TenantID             string    `json:"tenant_id"`
	History              []Turn    `json:"history"`
	HasAnsweredBefore    bool      `json:"has_answered_before"`
	FallbackAlreadyUsed  bool      `json:"fallback_already_used"`
	ErrorAlreadyNotified bool      `json:"error_already_notified"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// NewState returns the zero-valued state for a pair that has no history yet.
func NewState(visitorID, tenantID string) *State {
	return &State{
		VisitorID: visitorID,
		TenantID:  tenantID,
		History:   []Turn{},
	}
}

// Key identifies the state in a Store.
func (s *State) Key() string {
	return Key(s.VisitorID, s.TenantID)
}

// Key builds the store key for a (visitor, tenant) pair.
func Key(visitorID, tenantID string) string {
	return tenantID + ":" + visitorID
}

// AppendTurn pushes one entry and drops the oldest entries beyond limit.
// A limit below one keeps the whole history.
func (s *State) AppendTurn(role, content string, limit int) {
	s.History = append(s.History, Turn{Role: role, Content: content})
	if limit > 0 && len(s.History) > limit {
		trimmed := make([]Turn, limit)
		copy(trimmed, s.History[len(s.History)-limit:])
		s.History = trimmed
	}
}

// LastAssistant returns the most recent non-blank assistant entry.
func (s *State) LastAssistant() (string, bool) {
	for i := len(s.History) - 1; i >= 0; i-- {
		if s.History[i].Role == RoleAssistant && strings.TrimSpace(s.History[i].Content) != "" {
			return s.History[i].Content, true
		}
	}
	return "", false
}

// Tail returns a copy of the last n history entries.
func (s *State) Tail(n int) []Turn {
	if n <= 0 || n > len(s.History) {
		n = len(s.History)
	}
	out := make([]Turn, n)
	copy(out, s.History[len(s.History)-n:])
	return out
}

func (s *State) MarkAnswered() { s.HasAnsweredBefore = true }

func (s *State) MarkFallbackUsed() { s.FallbackAlreadyUsed = true }

// ClearFallback re-arms the first fallback after a successful answer.
func (s *State) ClearFallback() { s.FallbackAlreadyUsed = false }

func (s *State) MarkErrorNotified() { s.ErrorAlreadyNotified = true }
