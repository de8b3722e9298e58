package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/replyloop-ai/messenger-platform/internal/model"
)

// HistoryStore appends and lists exchange history. Records are immutable;
// there is no update or delete path.
type HistoryStore struct {
	db *pgxpool.Pool
}

// NewHistoryStore creates a new history store.
func NewHistoryStore(db *pgxpool.Pool) *HistoryStore {
	return &HistoryStore{db: db}
}

// Append writes one history record.
func (s *HistoryStore) Append(ctx context.Context, rec *model.HistoryRecord) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO history_records (id, tenant_id, page_id, sender_id, message_text, response_text, response_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, rec.ID, rec.TenantID, rec.PageID, rec.SenderID, rec.MessageText, rec.ResponseText, rec.ResponseType, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// ListByPage returns a page's records newest first. A non-zero before id
// pages backwards through older records.
func (s *HistoryStore) ListByPage(ctx context.Context, tenantID, pageID string, limit int, before string) ([]model.HistoryRecord, bool, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, tenant_id, page_id, sender_id, message_text, response_text, response_type, created_at
		FROM history_records
		WHERE tenant_id = $1 AND page_id = $2
		  AND ($3 = '' OR created_at < (SELECT created_at FROM history_records WHERE id = $3::uuid))
		ORDER BY created_at DESC
		LIMIT $4
	`, tenantID, pageID, before, limit+1)
	if err != nil {
		return nil, false, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	records := []model.HistoryRecord{}
	for rows.Next() {
		var r model.HistoryRecord
		if err := rows.Scan(&r.ID, &r.TenantID, &r.PageID, &r.SenderID, &r.MessageText, &r.ResponseText, &r.ResponseType, &r.CreatedAt); err != nil {
			return nil, false, fmt.Errorf("scan history record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	hasMore := len(records) > limit
	if hasMore {
		records = records[:limit]
	}
	return records, hasMore, nil
}
