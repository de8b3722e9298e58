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

// AIConfigHandler handles per-page AI provider configuration endpoints.
type AIConfigHandler struct {
	configs *store.AIConfigStore
	pages   *store.PageStore
	logger  *logger.Logger
}

// NewAIConfigHandler creates a new AI config handler.
func NewAIConfigHandler(configs *store.AIConfigStore, pages *store.PageStore, log *logger.Logger) *AIConfigHandler {
	return &AIConfigHandler{
		configs: configs,
		pages:   pages,
		logger:  log,
	}
}

func (h *AIConfigHandler) ownedPage(w http.ResponseWriter, r *http.Request) (string, bool) {
	pageID := chi.URLParam(r, "pageID")
	if err := middleware.ValidatePageID(pageID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	if _, err := h.pages.Get(r.Context(), middleware.GetTenantID(r.Context()), pageID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "page not found")
		} else {
			h.logger.Error("failed to verify page ownership")
			writeError(w, http.StatusInternalServerError, "failed to verify page")
		}
		return "", false
	}
	return pageID, true
}

// Upsert handles PUT /api/v1/pages/{pageID}/ai-config
func (h *AIConfigHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	pageID, ok := h.ownedPage(w, r)
	if !ok {
		return
	}

	var req model.UpsertAIConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !req.Provider.Valid() {
		writeError(w, http.StatusBadRequest, "unsupported provider")
		return
	}
	if req.APIKey == "" {
		writeError(w, http.StatusBadRequest, "api_key is required")
		return
	}
	if req.Model == "" {
		writeError(w, http.StatusBadRequest, "model is required")
		return
	}
	if err := middleware.ValidateTemperature(req.Temperature); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg, err := h.configs.Upsert(r.Context(), pageID, &req)
	if err != nil {
		h.logger.Error("failed to upsert ai config")
		writeError(w, http.StatusInternalServerError, "failed to save ai config")
		return
	}

	writeJSON(w, http.StatusOK, cfg)
}

// Get handles GET /api/v1/pages/{pageID}/ai-config
func (h *AIConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	pageID, ok := h.ownedPage(w, r)
	if !ok {
		return
	}

	cfg, err := h.configs.GetActiveConfig(r.Context(), pageID)
	if err != nil {
		h.logger.Error("failed to get ai config")
		writeError(w, http.StatusInternalServerError, "failed to get ai config")
		return
	}
	if cfg == nil {
		writeError(w, http.StatusNotFound, "no active ai config")
		return
	}

	writeJSON(w, http.StatusOK, cfg)
}

// Deactivate handles DELETE /api/v1/pages/{pageID}/ai-config
func (h *AIConfigHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	pageID, ok := h.ownedPage(w, r)
	if !ok {
		return
	}

	if err := h.configs.Deactivate(r.Context(), pageID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "no active ai config")
			return
		}
		h.logger.Error("failed to deactivate ai config")
		writeError(w, http.StatusInternalServerError, "failed to deactivate ai config")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}
