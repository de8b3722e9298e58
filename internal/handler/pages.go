package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/replyloop-ai/messenger-platform/internal/middleware"
	"github.com/replyloop-ai/messenger-platform/internal/model"
	"github.com/replyloop-ai/messenger-platform/internal/store"
	"github.com/replyloop-ai/messenger-platform/pkg/logger"
)

// PageHandler handles page binding endpoints.
type PageHandler struct {
	pages  *store.PageStore
	logger *logger.Logger
}

// NewPageHandler creates a new page handler.
func NewPageHandler(pages *store.PageStore, log *logger.Logger) *PageHandler {
	return &PageHandler{
		pages:  pages,
		logger: log,
	}
}

// Connect handles POST /api/v1/pages
func (h *PageHandler) Connect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middleware.GetTenantID(ctx)

	var req model.ConnectPageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidatePageID(req.PageID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.AccessToken == "" {
		writeError(w, http.StatusBadRequest, "access_token is required")
		return
	}

	binding, err := h.pages.Connect(ctx, tenantID, &req)
	if err != nil {
		h.logger.Error("failed to connect page")
		writeError(w, http.StatusInternalServerError, "failed to connect page")
		return
	}

	writeJSON(w, http.StatusCreated, binding)
}

// List handles GET /api/v1/pages
func (h *PageHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middleware.GetTenantID(ctx)

	pages, err := h.pages.List(ctx, tenantID)
	if err != nil {
		h.logger.Error("failed to list pages")
		writeError(w, http.StatusInternalServerError, "failed to list pages")
		return
	}

	writeJSON(w, http.StatusOK, &model.ListPagesResponse{
		Pages: pages,
		Total: len(pages),
	})
}

// Disconnect handles DELETE /api/v1/pages/{pageID}
func (h *PageHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middleware.GetTenantID(ctx)
	pageID := chi.URLParam(r, "pageID")

	if err := middleware.ValidatePageID(pageID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.pages.Disconnect(ctx, tenantID, pageID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "page not found")
			return
		}
		h.logger.Error("failed to disconnect page")
		writeError(w, http.StatusInternalServerError, "failed to disconnect page")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "disconnected"})
}
