package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	apperrors "concierge/errors"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Lead is a contact request captured on behalf of a tenant.
type Lead struct {
	ID        uuid.UUID
	TenantID  string
	SheetID   string
	VisitorID string
	Name      string
	Email     string
	Phone     string
	Message   string
	CreatedAt time.Time
}

// LeadStore appends leads to Postgres. Each row carries the tenant's sheet
// identifier so downstream export jobs can route it.
type LeadStore struct {
	DB *sql.DB
}

func NewLeadStore(ctx context.Context, connStr string) (*LeadStore, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, apperrors.WrapError(err, "open lead database")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping lead database: %v", apperrors.ErrServiceUnavailable, err)
	}
	return &LeadStore{DB: db}, nil
}

// EnsureSchema creates the required tables if they do not already exist.
func (s *LeadStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS leads (
            id UUID PRIMARY KEY,
            tenant_id TEXT NOT NULL,
            sheet_id TEXT NOT NULL DEFAULT '',
            visitor_id TEXT NOT NULL DEFAULT '',
            name TEXT NOT NULL DEFAULT '',
            email TEXT NOT NULL DEFAULT '',
            phone TEXT NOT NULL DEFAULT '',
            message TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_leads_tenant_created_at ON leads(tenant_id, created_at DESC)`,
	}

	for _, stmt := range stmts {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: failed to execute schema statement: %v", apperrors.ErrDatabaseOperation, err)
		}
	}
	return nil
}

// AppendLead stores lead and returns its id.
func (s *LeadStore) AppendLead(ctx context.Context, lead Lead) (uuid.UUID, error) {
	if strings.TrimSpace(lead.Email) == "" && strings.TrimSpace(lead.Phone) == "" {
		return uuid.Nil, fmt.Errorf("%w: lead needs an email or phone", apperrors.ErrInvalidInput)
	}
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now()
	}

	query := `
        INSERT INTO leads (id, tenant_id, sheet_id, visitor_id, name, email, phone, message, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	_, err := s.DB.ExecContext(ctx, query,
		lead.ID, lead.TenantID, lead.SheetID, lead.VisitorID,
		strings.TrimSpace(lead.Name), strings.TrimSpace(lead.Email), strings.TrimSpace(lead.Phone),
		strings.TrimSpace(lead.Message), lead.CreatedAt)
	if err != nil {
		// A failed insert on a database that no longer answers is an outage,
		// not a bad row.
		if pingErr := s.DB.PingContext(ctx); pingErr != nil {
			return uuid.Nil, fmt.Errorf("%w: insert lead: %v", apperrors.ErrServiceUnavailable, err)
		}
		return uuid.Nil, fmt.Errorf("%w: insert lead: %v", apperrors.ErrDatabaseOperation, err)
	}
	return lead.ID, nil
}

func (s *LeadStore) Close() error {
	return s.DB.Close()
}
