package handler

import (
	"encoding/json"
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

// RuleHandler handles keyword rule endpoints.
type RuleHandler struct {
	rules  *store.RuleStore
	pages  *store.PageStore
	logger *logger.Logger
}

// NewRuleHandler creates a new rule handler.
func NewRuleHandler(rules *store.RuleStore, pages *store.PageStore, log *logger.Logger) *RuleHandler {
	return &RuleHandler{
		rules:  rules,
		pages:  pages,
		logger: log,
	}
}

// ownedPage verifies the page belongs to the request's tenant. Cross-tenant
// access reads as not found.
func (h *RuleHandler) ownedPage(w http.ResponseWriter, r *http.Request) (string, bool) {
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

// Create handles POST /api/v1/pages/{pageID}/rules
func (h *RuleHandler) Create(w http.ResponseWriter, r *http.Request) {
	pageID, ok := h.ownedPage(w, r)
	if !ok {
		return
	}

	var req model.CreateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateKeyword(req.Keyword); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateReply(req.Reply); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rule, err := h.rules.Create(r.Context(), pageID, &req)
	if err != nil {
		h.logger.Error("failed to create rule")
		writeError(w, http.StatusInternalServerError, "failed to create rule")
		return
	}

	writeJSON(w, http.StatusCreated, rule)
}

// List handles GET /api/v1/pages/{pageID}/rules
func (h *RuleHandler) List(w http.ResponseWriter, r *http.Request) {
	pageID, ok := h.ownedPage(w, r)
	if !ok {
		return
	}

	rules, err := h.rules.ListByPage(r.Context(), pageID)
	if err != nil {
		h.logger.Error("failed to list rules")
		writeError(w, http.StatusInternalServerError, "failed to list rules")
		return
	}

	writeJSON(w, http.StatusOK, &model.ListRulesResponse{
		Rules: rules,
		Total: len(rules),
	})
}

// Update handles PUT /api/v1/rules/{ruleID}
func (h *RuleHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middleware.GetTenantID(ctx)

	ruleID, err := strconv.ParseInt(chi.URLParam(r, "ruleID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid rule ID")
		return
	}

	var req model.UpdateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Keyword != nil {
		if err := middleware.ValidateKeyword(*req.Keyword); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.Reply != nil {
		if err := middleware.ValidateReply(*req.Reply); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	rule, err := h.rules.Update(ctx, tenantID, ruleID, &req)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "rule not found")
			return
		}
		h.logger.Error("failed to update rule")
		writeError(w, http.StatusInternalServerError, "failed to update rule")
		return
	}

	writeJSON(w, http.StatusOK, rule)
}

// Delete handles DELETE /api/v1/rules/{ruleID}
func (h *RuleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middleware.GetTenantID(ctx)

	ruleID, err := strconv.ParseInt(chi.URLParam(r, "ruleID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid rule ID")
		return
	}

	if err := h.rules.Delete(ctx, tenantID, ruleID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "rule not found")
			return
		}
		h.logger.Error("failed to delete rule")
		writeError(w, http.StatusInternalServerError, "failed to delete rule")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
