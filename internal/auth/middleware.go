package auth

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"reservas/pkg/logger"
)

type contextKey string

const userKey contextKey = "session_user"

// Guard wraps protected routes with a session check.
type Guard func(httprouter.Handle) httprouter.Handle

// SessionGuard returns a Guard that requires a valid session cookie and
// injects the authenticated user into the request context.
func SessionGuard(secret string, log *logger.Logger) Guard {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			cookie, err := r.Cookie(CookieName)
			if err != nil {
				unauthorized(w)
				return
			}

			user, err := ParseSessionToken(secret, cookie.Value)
			if err != nil {
				log.Warn("Rejected session token",
					"path", r.URL.Path,
					"error", err,
				)
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next(w, r.WithContext(ctx), ps)
		}
	}
}

// User returns the authenticated user stored by SessionGuard.
func User(ctx context.Context) string {
	if u, ok := ctx.Value(userKey).(string); ok {
		return u
	}
	return ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Authentication required"}`))
}
