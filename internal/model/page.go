// Package model defines data structures for the messenger automation platform.
package model

import (
	"time"
)

// PageBinding associates a tenant with one connected messaging page and
// carries the credential needed to send messages as that page.
type PageBinding struct {
	ID          int64     `json:"id"`
	TenantID    string    `json:"tenant_id"`
	PageID      string    `json:"page_id"`
	PageName    string    `json:"page_name"`
	AccessToken string    `json:"-"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ConnectPageRequest is the request to connect (or reconnect) a page.
type ConnectPageRequest struct {
	PageID      string `json:"page_id"`
	PageName    string `json:"page_name"`
	AccessToken string `json:"access_token"`
}

// ListPagesResponse is the response for listing a tenant's pages.
type ListPagesResponse struct {
	Pages []PageBinding `json:"pages"`
	Total int           `json:"total"`
}
