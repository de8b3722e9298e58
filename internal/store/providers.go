package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/replyloop-ai/messenger-platform/internal/model"
)

// AIConfigStore manages per-page AI provider configurations.
type AIConfigStore struct {
	db *pgxpool.Pool
}

// NewAIConfigStore creates a new AI config store.
func NewAIConfigStore(db *pgxpool.Pool) *AIConfigStore {
	return &AIConfigStore{db: db}
}

// GetActiveConfig returns the page's active configuration, or nil when none
// exists. Should the table ever hold more than one active row for a page,
// the lowest id wins so resolution stays deterministic.
func (s *AIConfigStore) GetActiveConfig(ctx context.Context, pageID string) (*model.AIProviderConfig, error) {
	var c model.AIProviderConfig
	err := s.db.QueryRow(ctx, `
		SELECT id, page_id, provider, api_key, model, temperature, system_prompt, active, created_at
		FROM ai_provider_configs
		WHERE page_id = $1 AND active = true
		ORDER BY id ASC
		LIMIT 1
	`, pageID).Scan(&c.ID, &c.PageID, &c.Provider, &c.APIKey, &c.Model, &c.Temperature, &c.SystemPrompt, &c.Active, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active ai config: %w", err)
	}
	return &c, nil
}

// Upsert deactivates any previous configuration for the page and inserts the
// new one as the single active row.
func (s *AIConfigStore) Upsert(ctx context.Context, pageID string, req *model.UpsertAIConfigRequest) (*model.AIProviderConfig, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		UPDATE ai_provider_configs SET active = false WHERE page_id = $1 AND active = true
	`, pageID); err != nil {
		return nil, fmt.Errorf("deactivate previous ai config: %w", err)
	}

	var c model.AIProviderConfig
	err = tx.QueryRow(ctx, `
		INSERT INTO ai_provider_configs (page_id, provider, api_key, model, temperature, system_prompt, active)
		VALUES ($1, $2, $3, $4, $5, $6, true)
		RETURNING id, page_id, provider, api_key, model, temperature, system_prompt, active, created_at
	`, pageID, req.Provider, req.APIKey, req.Model, req.Temperature, req.SystemPrompt).
		Scan(&c.ID, &c.PageID, &c.Provider, &c.APIKey, &c.Model, &c.Temperature, &c.SystemPrompt, &c.Active, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert ai config: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &c, nil
}

// Deactivate turns off the page's AI fallback.
func (s *AIConfigStore) Deactivate(ctx context.Context, pageID string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE ai_provider_configs SET active = false WHERE page_id = $1 AND active = true
	`, pageID)
	if err != nil {
		return fmt.Errorf("deactivate ai config: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
