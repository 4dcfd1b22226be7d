package web

import (
	"context"
	"net/http"
)

// withUser resolves the session cookie to a user once per request and
// stores it in the request context. Anonymous requests pass through
// with no user set; only a store failure aborts the request.
func (h *Handler) withUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := h.sessions.User(r.Context(), r)
		if err != nil {
			h.serverError(w, r, err)
			return
		}
		if user != nil {
			r = r.WithContext(context.WithValue(r.Context(), userKey, user))
		}
		next.ServeHTTP(w, r)
	})
}
