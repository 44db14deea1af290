package auth

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	apperrors "reservas/pkg/errors"
	httputil "reservas/pkg/http"
	"reservas/pkg/logger"
)

type Handler struct {
	users  map[string]string
	secret string
	ttl    time.Duration
	log    *logger.Logger
}

func NewHandler(users map[string]string, secret string, ttl time.Duration, log *logger.Logger) *Handler {
	return &Handler{
		users:  users,
		secret: secret,
		ttl:    ttl,
		log:    log,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	User      string    `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Invalid request body")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Login", "error", writeErr)
		}
		return
	}

	if !h.checkCredentials(req.Username, req.Password) {
		h.log.Warn("Failed login attempt", "user", req.Username)
		if writeErr := httputil.WriteError(w, apperrors.Unauthorized("Invalid username or password")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Login", "error", writeErr)
		}
		return
	}

	token, exp, err := NewSessionToken(h.secret, req.Username, h.ttl)
	if err != nil {
		if writeErr := httputil.WriteError(w, apperrors.Internal("Failed to issue session", err)); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Login", "error", writeErr)
		}
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	h.log.Info("Staff user logged in", "user", req.Username)
	if err := httputil.WriteSuccess(w, loginResponse{User: req.Username, ExpiresAt: exp}); err != nil {
		h.log.Error("failed to write success response", "handler", "Login", "error", err)
	}
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	httputil.WriteNoContent(w)
}

func (h *Handler) checkCredentials(user, pass string) bool {
	stored, ok := h.users[user]
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(pass)) == 1
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/auth/login", h.Login)
	router.POST("/api/v1/auth/logout", h.Logout)
}
