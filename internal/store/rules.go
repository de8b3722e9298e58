package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/replyloop-ai/messenger-platform/internal/model"
)

// RuleStore manages keyword rules.
type RuleStore struct {
	db *pgxpool.Pool
}

// NewRuleStore creates a new rule store.
func NewRuleStore(db *pgxpool.Pool) *RuleStore {
	return &RuleStore{db: db}
}

// GetActiveRules returns a page's active rules in evaluation order:
// priority descending, then creation order for a stable tiebreak.
func (s *RuleStore) GetActiveRules(ctx context.Context, pageID string) ([]model.KeywordRule, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, page_id, keyword, reply, priority, active, created_at
		FROM keyword_rules
		WHERE page_id = $1 AND active = true
		ORDER BY priority DESC, id ASC
	`, pageID)
	if err != nil {
		return nil, fmt.Errorf("get active rules: %w", err)
	}
	defer rows.Close()

	return scanRules(rows)
}

// Create adds a keyword rule to a page.
func (s *RuleStore) Create(ctx context.Context, pageID string, req *model.CreateRuleRequest) (*model.KeywordRule, error) {
	var r model.KeywordRule
	err := s.db.QueryRow(ctx, `
		INSERT INTO keyword_rules (page_id, keyword, reply, priority, active)
		VALUES ($1, $2, $3, $4, true)
		RETURNING id, page_id, keyword, reply, priority, active, created_at
	`, pageID, req.Keyword, req.Reply, req.Priority).
		Scan(&r.ID, &r.PageID, &r.Keyword, &r.Reply, &r.Priority, &r.Active, &r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create rule: %w", err)
	}
	return &r, nil
}

// Get returns one rule by identifier, constrained to the tenant's pages.
func (s *RuleStore) Get(ctx context.Context, tenantID string, ruleID int64) (*model.KeywordRule, error) {
	var r model.KeywordRule
	err := s.db.QueryRow(ctx, `
		SELECT r.id, r.page_id, r.keyword, r.reply, r.priority, r.active, r.created_at
		FROM keyword_rules r
		JOIN page_bindings p ON p.page_id = r.page_id
		WHERE r.id = $1 AND p.tenant_id = $2
	`, ruleID, tenantID).Scan(&r.ID, &r.PageID, &r.Keyword, &r.Reply, &r.Priority, &r.Active, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("get rule: %w", err)
	}
	return &r, nil
}

// Update applies non-nil fields of the request to an existing rule.
func (s *RuleStore) Update(ctx context.Context, tenantID string, ruleID int64, req *model.UpdateRuleRequest) (*model.KeywordRule, error) {
	existing, err := s.Get(ctx, tenantID, ruleID)
	if err != nil {
		return nil, err
	}

	if req.Keyword != nil {
		existing.Keyword = *req.Keyword
	}
	if req.Reply != nil {
		existing.Reply = *req.Reply
	}
	if req.Priority != nil {
		existing.Priority = *req.Priority
	}
	if req.Active != nil {
		existing.Active = *req.Active
	}

	err = s.db.QueryRow(ctx, `
		UPDATE keyword_rules
		SET keyword = $2, reply = $3, priority = $4, active = $5
		WHERE id = $1
		RETURNING id, page_id, keyword, reply, priority, active, created_at
	`, ruleID, existing.Keyword, existing.Reply, existing.Priority, existing.Active).
		Scan(&existing.ID, &existing.PageID, &existing.Keyword, &existing.Reply, &existing.Priority, &existing.Active, &existing.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("update rule: %w", err)
	}
	return existing, nil
}

// Delete removes a rule, constrained to the tenant's pages.
func (s *RuleStore) Delete(ctx context.Context, tenantID string, ruleID int64) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM keyword_rules r
		USING page_bindings p
		WHERE r.id = $1 AND p.page_id = r.page_id AND p.tenant_id = $2
	`, ruleID, tenantID)
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListByPage returns all rules for a page in evaluation order.
func (s *RuleStore) ListByPage(ctx context.Context, pageID string) ([]model.KeywordRule, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, page_id, keyword, reply, priority, active, created_at
		FROM keyword_rules
		WHERE page_id = $1
		ORDER BY priority DESC, id ASC
	`, pageID)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	return scanRules(rows)
}

func scanRules(rows pgx.Rows) ([]model.KeywordRule, error) {
	rules := []model.KeywordRule{}
	for rows.Next() {
		var r model.KeywordRule
		if err := rows.Scan(&r.ID, &r.PageID, &r.Keyword, &r.Reply, &r.Priority, &r.Active, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}
