package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/replyloop-ai/messenger-platform/internal/middleware"
	"github.com/replyloop-ai/messenger-platform/internal/model"
	"github.com/replyloop-ai/messenger-platform/internal/store"
	"github.com/replyloop-ai/messenger-platform/pkg/logger"
)

// HistoryHandler exposes the read-only exchange audit trail.
type HistoryHandler struct {
	history *store.HistoryStore
	pages   *store.PageStore
	logger  *logger.Logger
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(history *store.HistoryStore, pages *store.PageStore, log *logger.Logger) *HistoryHandler {
	return &HistoryHandler{
		history: history,
		pages:   pages,
		logger:  log,
	}
}

// List handles GET /api/v1/pages/{pageID}/history
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middleware.GetTenantID(ctx)
	pageID := chi.URLParam(r, "pageID")

	if err := middleware.ValidatePageID(pageID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.pages.Get(ctx, tenantID, pageID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "page not found")
			return
		}
		h.logger.Error("failed to verify page ownership")
		writeError(w, http.StatusInternalServerError, "failed to verify page")
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	before := r.URL.Query().Get("before")

	records, hasMore, err := h.history.ListByPage(ctx, tenantID, pageID, limit, before)
	if err != nil {
		h.logger.Error("failed to list history")
		writeError(w, http.StatusInternalServerError, "failed to list history")
		return
	}

	writeJSON(w, http.StatusOK, &model.ListHistoryResponse{
		Records: records,
		HasMore: hasMore,
	})
}
