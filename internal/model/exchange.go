package model

import (
	"time"
)

// ResponseType tags how an inbound message was resolved.
type ResponseType string

const (
	ResponseKeyword ResponseType = "keyword"
	ResponseAI      ResponseType = "ai"
	ResponseNone    ResponseType = "none"
)

// MessageEvent is one inbound message extracted from a webhook delivery.
// It lives for exactly one pipeline invocation.
type MessageEvent struct {
	PageID     string
	SenderID   string
	Text       string
	ReceivedAt time.Time
}

// ResolutionOutcome is the decision produced for one MessageEvent.
type ResolutionOutcome struct {
	Reply          string
	Type           ResponseType
	MatchedKeyword string
}

// HistoryRecord is the immutable audit row for one inbound/outbound exchange.
type HistoryRecord struct {
	ID           string       `json:"id"`
	TenantID     string       `json:"tenant_id"`
	PageID       string       `json:"page_id"`
	SenderID     string       `json:"sender_id"`
	MessageText  string       `json:"message_text"`
	ResponseText *string      `json:"response_text,omitempty"`
	ResponseType ResponseType `json:"response_type"`
	CreatedAt    time.Time    `json:"created_at"`
}

// ListHistoryResponse is the response for listing a page's exchange history.
type ListHistoryResponse struct {
	Records []HistoryRecord `json:"records"`
	HasMore bool            `json:"has_more"`
}
