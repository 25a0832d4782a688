package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tripveo/account-security-service/internal/domain"
	"github.com/tripveo/account-security-service/internal/ports"
)

func (h *Handler) adminUnlock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "admin_unlock", err)
		return
	}
	if strings.TrimSpace(req.Username) == "" {
		writeValidationError(r.Context(), w, "admin_unlock", errors.New("username is required"))
		return
	}

	res, err := h.service.Unlock(r.Context(), req.Username)
	if err != nil {
		writeMappedError(r.Context(), w, "admin_unlock", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) adminListLocked(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListLockedAccounts(r.Context())
	if err != nil {
		writeMappedError(r.Context(), w, "admin_list_locked", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"locked": items,
		"count":  len(items),
	})
}

func (h *Handler) adminListDormant(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListDormantAccounts(r.Context())
	if err != nil {
		writeMappedError(r.Context(), w, "admin_list_dormant", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"dormant": items,
		"count":   len(items),
	})
}

func (h *Handler) adminLoginHistory(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if username == "" {
		writeValidationError(r.Context(), w, "admin_login_history", errors.New("username query parameter is required"))
		return
	}
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, parseErr := strconv.Atoi(raw); parseErr == nil && parsed > 0 {
			limit = parsed
		}
	}

	items, err := h.service.LoginHistory(r.Context(), username, limit)
	if err != nil {
		writeMappedError(r.Context(), w, "admin_login_history", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"attempts": items,
		"count":    len(items),
	})
}

func (h *Handler) adminSetStatus(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuid.Parse(chi.URLParam(r, "account_id"))
	if err != nil {
		writeValidationError(r.Context(), w, "admin_set_status", errors.New("account_id must be a valid UUID"))
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "admin_set_status", err)
		return
	}

	info, err := h.service.SetStatus(r.Context(), accountID, domain.AccountStatus(req.Status))
	if err != nil {
		writeMappedError(r.Context(), w, "admin_set_status", err)
		return
	}
	writeSuccess(w, http.StatusOK, info)
}

func (h *Handler) adminReconcile(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.ReconcileAll(r.Context())
	if err != nil {
		writeMappedError(r.Context(), w, "admin_reconcile", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) adminRepairNeverLoggedIn(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.RepairNeverLoggedIn(r.Context())
	if err != nil {
		writeMappedError(r.Context(), w, "admin_repair_never_logged_in", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) adminUpdateSetting(w http.ResponseWriter, r *http.Request) {
	key := ports.SettingKey(chi.URLParam(r, "key"))

	var req struct {
		Value int `json:"value"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "admin_update_setting", err)
		return
	}

	if err := h.service.UpdateSetting(r.Context(), key, req.Value); err != nil {
		writeMappedError(r.Context(), w, "admin_update_setting", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"key":   key,
		"value": req.Value,
	})
}
