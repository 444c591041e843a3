package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/okoval/giftbox/internal/ctxkeys"
	"github.com/okoval/giftbox/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	err := decodeJSON(r, &req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		slog.Error("login failed", "error", err)
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	token, err := h.authService.GenerateJWT(user)
	if err != nil {
		slog.Error("failed to generate token", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	h.authService.SetJWTCookie(w, token)
	respondJSON(w, http.StatusOK, map[string]string{"username": user.Username})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearJWTCookie(w)
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Session reports whether the current viewer is authenticated. The site
// uses this to decide whether secret content will be visible.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	if user == nil {
		respondJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"username":      user.Username,
	})
}
