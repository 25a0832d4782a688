package http

import (
	"context"
	"net/http"

	"github.com/tripveo/account-security-service/internal/domain"
)

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ok")
}

func (h *Handler) readyz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ready")
}

// sessionMiddleware gates a route on a live session. The token alone is
// never enough: the session record must still exist and be inside the
// idle window, which CheckSession verifies (and touches) on every call.
func (h *Handler) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := bearerTokenFromHeader(r.Header.Get("Authorization"))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
			return
		}

		status, err := h.service.CheckSession(r.Context(), raw)
		if err != nil {
			statusCode, code, msg := mapDomainError(err)
			writeError(w, statusCode, code, msg)
			return
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, ctxKeyTokenRaw, raw)
		ctx = context.WithValue(ctx, ctxKeySession, status)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireMainAdmin restricts a route group to main administrators.
func (h *Handler) requireMainAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status, ok := sessionFromContext(r.Context())
		if !ok || status.Role != string(domain.RoleMainAdmin) {
			writeError(w, http.StatusForbidden, "FORBIDDEN", "main administrator role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
