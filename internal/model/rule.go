package model

import (
	"time"
)

// KeywordRule maps a case-insensitive substring pattern to a canned reply,
// scoped to one page. Higher priority wins; equal priorities resolve by
// creation order.
type KeywordRule struct {
	ID        int64     `json:"id"`
	PageID    string    `json:"page_id"`
	Keyword   string    `json:"keyword"`
	Reply     string    `json:"reply"`
	Priority  int       `json:"priority"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateRuleRequest is the request to add a keyword rule to a page.
type CreateRuleRequest struct {
	Keyword  string `json:"keyword"`
	Reply    string `json:"reply"`
	Priority int    `json:"priority"`
}

// UpdateRuleRequest is the request to update an existing keyword rule.
// Nil fields are left unchanged.
type UpdateRuleRequest struct {
	Keyword  *string `json:"keyword,omitempty"`
	Reply    *string `json:"reply,omitempty"`
	Priority *int    `json:"priority,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}

// ListRulesResponse is the response for listing a page's keyword rules.
type ListRulesResponse struct {
	Rules []KeywordRule `json:"rules"`
	Total int           `json:"total"`
}
