package server

import (
	"context"
	"net/http"
	"strings"

	"todoboard/internal/service"
)

type ctxKey string

const userKey ctxKey = "user"

// requireUser rejects requests without a bearer token of the signed-in user.
func (s *Server) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}

		user, err := s.auth.Verify(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next(w, r.WithContext(ctx))
	}
}

// UserFromContext returns the user set by the bearer middleware.
func UserFromContext(ctx context.Context) (service.User, bool) {
	u, ok := ctx.Value(userKey).(service.User)
	return u, ok
}
