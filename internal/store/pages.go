package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/replyloop-ai/messenger-platform/internal/model"
)

// PageStore manages page bindings.
type PageStore struct {
	db *pgxpool.Pool
}

// NewPageStore creates a new page store.
func NewPageStore(db *pgxpool.Pool) *PageStore {
	return &PageStore{db: db}
}

// GetActiveBinding returns the active binding for a platform page identifier,
// or nil when the page is not onboarded.
func (s *PageStore) GetActiveBinding(ctx context.Context, pageID string) (*model.PageBinding, error) {
	var b model.PageBinding
	err := s.db.QueryRow(ctx, `
		SELECT id, tenant_id, page_id, page_name, access_token, active, created_at, updated_at
		FROM page_bindings
		WHERE page_id = $1 AND active = true
		ORDER BY id
		LIMIT 1
	`, pageID).Scan(&b.ID, &b.TenantID, &b.PageID, &b.PageName, &b.AccessToken, &b.Active, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active binding: %w", err)
	}
	return &b, nil
}

// Get returns a tenant's binding for a page regardless of activation state.
func (s *PageStore) Get(ctx context.Context, tenantID, pageID string) (*model.PageBinding, error) {
	var b model.PageBinding
	err := s.db.QueryRow(ctx, `
		SELECT id, tenant_id, page_id, page_name, access_token, active, created_at, updated_at
		FROM page_bindings
		WHERE tenant_id = $1 AND page_id = $2
	`, tenantID, pageID).Scan(&b.ID, &b.TenantID, &b.PageID, &b.PageName, &b.AccessToken, &b.Active, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("get binding: %w", err)
	}
	return &b, nil
}

// Connect creates a binding or reactivates an existing one for the tenant.
func (s *PageStore) Connect(ctx context.Context, tenantID string, req *model.ConnectPageRequest) (*model.PageBinding, error) {
	var b model.PageBinding
	err := s.db.QueryRow(ctx, `
		INSERT INTO page_bindings (tenant_id, page_id, page_name, access_token, active)
		VALUES ($1, $2, $3, $4, true)
		ON CONFLICT (tenant_id, page_id) DO UPDATE SET
			page_name = EXCLUDED.page_name,
			access_token = EXCLUDED.access_token,
			active = true,
			updated_at = NOW()
		RETURNING id, tenant_id, page_id, page_name, access_token, active, created_at, updated_at
	`, tenantID, req.PageID, req.PageName, req.AccessToken).
		Scan(&b.ID, &b.TenantID, &b.PageID, &b.PageName, &b.AccessToken, &b.Active, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("connect page: %w", err)
	}
	return &b, nil
}

// Disconnect deactivates a binding. The row is kept so history stays
// attributable.
func (s *PageStore) Disconnect(ctx context.Context, tenantID, pageID string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE page_bindings SET active = false, updated_at = NOW()
		WHERE tenant_id = $1 AND page_id = $2
	`, tenantID, pageID)
	if err != nil {
		return fmt.Errorf("disconnect page: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// List returns all of a tenant's bindings, newest first.
func (s *PageStore) List(ctx context.Context, tenantID string) ([]model.PageBinding, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, tenant_id, page_id, page_name, access_token, active, created_at, updated_at
		FROM page_bindings
		WHERE tenant_id = $1
		ORDER BY created_at DESC
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()

	bindings := []model.PageBinding{}
	for rows.Next() {
		var b model.PageBinding
		if err := rows.Scan(&b.ID, &b.TenantID, &b.PageID, &b.PageName, &b.AccessToken, &b.Active, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan page binding: %w", err)
		}
		bindings = append(bindings, b)
	}
	return bindings, rows.Err()
}
