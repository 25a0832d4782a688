package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tripveo/account-security-service/internal/application"
	"github.com/tripveo/account-security-service/internal/domain"
)

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req application.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "login", err)
		return
	}

	if req.SourceAddress == "" {
		req.SourceAddress = readIP(r)
	}
	if req.UserAgent == "" {
		req.UserAgent = r.UserAgent()
	}

	res, err := h.service.Login(r.Context(), req)
	if err != nil {
		var denied *domain.LoginDeniedError
		if errors.As(err, &denied) {
			status, code, msg := mapDomainError(denied.Reason)
			logHTTPOperationError(r.Context(), "login", status, code, msg, err)
			writeLoginDenied(w, status, code, msg, denied.RemainingAttempts)
			return
		}
		writeMappedError(r.Context(), w, "login", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

// remainingAttempts is advisory only. Store trouble degrades to the
// configured maximum instead of surfacing a 5xx to the login form.
func (h *Handler) remainingAttempts(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if username == "" {
		writeValidationError(r.Context(), w, "remaining_attempts", errors.New("username query parameter is required"))
		return
	}
	writeSuccess(w, http.StatusOK, h.service.RemainingAttempts(r.Context(), username))
}

func (h *Handler) sessionCheck(w http.ResponseWriter, r *http.Request) {
	status, ok := sessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}
	writeSuccess(w, http.StatusOK, status)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	token, ok := tokenFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}
	if err := h.service.Logout(r.Context(), token); err != nil {
		writeMappedError(r.Context(), w, "logout", err)
		return
	}
	writeMessage(w, http.StatusOK, "logged out")
}
