package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mazurov/bloglist-server/internal/apierrors"
	"github.com/mazurov/bloglist-server/internal/auth"
	"github.com/mazurov/bloglist-server/internal/storage"
)

// LoginHandler issues tokens for valid credentials
type LoginHandler struct {
	store  storage.Store
	tokens *auth.Tokens
	logger *slog.Logger
}

// NewLoginHandler creates a new login handler
func NewLoginHandler(store storage.Store, tokens *auth.Tokens, logger *slog.Logger) *LoginHandler {
	return &LoginHandler{
		store:  store,
		tokens: tokens,
		logger: logger,
	}
}

// LoginRequest is the login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the successful login response
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Name     string `json:"name"`
	ID       string `json:"id"`
}

// Login handles POST /api/login
func (h *LoginHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	// Parse request body
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Failed to decode login request",
			"error", err,
			"remote_addr", r.RemoteAddr)
		apierrors.WriteError(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}

	user, err := h.store.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.logger.Warn("Login failed: unknown username",
				"username", req.Username,
				"remote_addr", r.RemoteAddr)
			apierrors.WriteError(w, http.StatusUnauthorized, apierrors.MsgBadCredentials)
			return
		}
		h.logger.Error("Failed to look up user", "username", req.Username, "error", err)
		apierrors.WriteError(w, http.StatusInternalServerError, apierrors.MsgInternal)
		return
	}

	// Verify password against the stored hash
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		h.logger.Warn("Login failed: wrong password",
			"username", req.Username,
			"remote_addr", r.RemoteAddr)
		apierrors.WriteError(w, http.StatusUnauthorized, apierrors.MsgBadCredentials)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		h.logger.Error("Failed to issue token", "user", user.ID, "error", err)
		apierrors.WriteError(w, http.StatusInternalServerError, apierrors.MsgInternal)
		return
	}

	h.logger.Info("Login succeeded",
		"user", user.ID,
		"username", user.Username,
		"remote_addr", r.RemoteAddr)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(LoginResponse{
		Token:    token,
		Username: user.Username,
		Name:     user.Name,
		ID:       user.ID,
	})
}
