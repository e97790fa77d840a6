package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mazurov/bloglist-server/internal/apierrors"
	"github.com/mazurov/bloglist-server/internal/auth"
	"github.com/mazurov/bloglist-server/internal/models"
	"github.com/mazurov/bloglist-server/internal/storage"
)

// UserHandler handles user registration and listing
type UserHandler struct {
	store  storage.Store
	logger *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(store storage.Store, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		store:  store,
		logger: logger,
	}
}

// CreateUser handles POST /api/users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.NewUserRequest

	// Parse request body
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Failed to decode registration request",
			"error", err,
			"remote_addr", r.RemoteAddr)
		apierrors.WriteError(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}

	// Validate registration input
	if err := models.ValidateNewUser(&req); err != nil {
		h.logger.Warn("Registration validation failed",
			"username", req.Username,
			"error", err,
			"remote_addr", r.RemoteAddr)
		apierrors.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Hash the password; the plaintext is never persisted
	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("Failed to hash password", "error", err)
		apierrors.WriteError(w, http.StatusInternalServerError, apierrors.MsgInternal)
		return
	}

	user := models.User{
		Username:     req.Username,
		Name:         req.Name,
		PasswordHash: passwordHash,
	}

	if err := h.store.CreateUser(r.Context(), &user); err != nil {
		if errors.Is(err, storage.ErrDuplicateUsername) {
			h.logger.Warn("Registration rejected: username taken",
				"username", req.Username,
				"remote_addr", r.RemoteAddr)
		} else {
			h.logger.Error("Failed to create user",
				"username", req.Username,
				"error", err)
		}
		status, msg := apierrors.MapStorageError(err, "user")
		apierrors.WriteError(w, status, msg)
		return
	}

	h.logger.Info("User registered",
		"user", user.ID,
		"username", user.Username,
		"remote_addr", r.RemoteAddr)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user.ToResponse())
}

// ListUsers handles GET /api/users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("Failed to list users", "error", err)
		apierrors.WriteError(w, http.StatusInternalServerError, apierrors.MsgInternal)
		return
	}

	h.logger.Debug("Users listed", "count", len(users))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(models.UserResponses(users))
}
