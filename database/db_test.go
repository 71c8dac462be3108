package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	apperrors "concierge/errors"
)

func TestAppendLeadRequiresContact(t *testing.T) {
	store := &LeadStore{}
	tests := []struct {
		name string
		lead Lead
	}{
		{name: "empty", lead: Lead{TenantID: "acme"}},
		{name: "name_only", lead: Lead{TenantID: "acme", Name: "Ana"}},
		{name: "blank_contact", lead: Lead{TenantID: "acme", Email: "  ", Phone: "\t"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.AppendLead(context.Background(), tt.lead)
			if !apperrors.IsInvalidInput(err) {
				t.Errorf("AppendLead() error = %v, want invalid input", err)
			}
		})
	}
}

func TestAppendLeadUnreachableDatabase(t *testing.T) {
	// Nothing listens on port 1, so every connection attempt is refused.
	db, err := sql.Open("pgx", "postgres://concierge@127.0.0.1:1/concierge?connect_timeout=2")
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store := &LeadStore{DB: db}
	_, err = store.AppendLead(ctx, Lead{TenantID: "acme", Email: "ana@example.com"})
	if !apperrors.IsServiceUnavailable(err) {
		t.Errorf("AppendLead() error = %v, want service unavailable", err)
	}
}
