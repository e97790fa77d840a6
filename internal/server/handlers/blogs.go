package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mazurov/bloglist-server/internal/apierrors"
	"github.com/mazurov/bloglist-server/internal/auth"
	"github.com/mazurov/bloglist-server/internal/models"
	"github.com/mazurov/bloglist-server/internal/storage"
)

// BlogHandler handles blog CRUD operations
type BlogHandler struct {
	store  storage.Store
	logger *slog.Logger
}

// NewBlogHandler creates a new blog handler
func NewBlogHandler(store storage.Store, logger *slog.Logger) *BlogHandler {
	return &BlogHandler{
		store:  store,
		logger: logger,
	}
}

// ListBlogs handles GET /api/blogs
func (h *BlogHandler) ListBlogs(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.store.ListBlogs(r.Context())
	if err != nil {
		h.logger.Error("Failed to list blogs", "error", err)
		apierrors.WriteError(w, http.StatusInternalServerError, apierrors.MsgInternal)
		return
	}

	h.logger.Debug("Blogs listed", "count", len(blogs))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(models.BlogResponses(blogs))
}

// GetBlog handles GET /api/blogs/:id
func (h *BlogHandler) GetBlog(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := uuid.Validate(id); err != nil {
		apierrors.WriteError(w, http.StatusBadRequest, apierrors.MsgMalformattedID)
		return
	}

	blog, err := h.store.GetBlog(r.Context(), id)
	if err != nil {
		status, msg := apierrors.MapStorageError(err, "blog")
		if !errors.Is(err, storage.ErrNotFound) {
			h.logger.Error("Failed to get blog", "blog", id, "error", err)
		}
		apierrors.WriteError(w, status, msg)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(blog.ToResponse())
}

// CreateBlog handles POST /api/blogs
func (h *BlogHandler) CreateBlog(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	if !identity.Authenticated() {
		apierrors.WriteError(w, http.StatusUnauthorized, auth.ErrInvalidToken.Error())
		return
	}

	var req models.NewBlogRequest

	// Parse request body
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Failed to decode blog creation request",
			"error", err,
			"remote_addr", r.RemoteAddr)
		apierrors.WriteError(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}

	// Validate mandatory fields
	if err := models.ValidateNewBlog(&req); err != nil {
		h.logger.Warn("Blog validation failed",
			"title", req.Title,
			"error", err,
			"remote_addr", r.RemoteAddr)
		apierrors.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	blog := models.Blog{
		Title:  req.Title,
		Author: req.Author,
		URL:    req.URL,
		Likes:  req.Likes,
		UserID: identity.User.ID,
	}

	if err := h.store.CreateBlog(r.Context(), &blog); err != nil {
		h.logger.Error("Failed to create blog",
			"title", blog.Title,
			"error", err)
		apierrors.WriteError(w, http.StatusInternalServerError, apierrors.MsgInternal)
		return
	}

	h.logger.Info("Blog created",
		"blog", blog.ID,
		"user", identity.User.ID,
		"remote_addr", r.RemoteAddr)

	// Return created blog with the requester as populated owner
	blog.User = identity.User

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(blog.ToResponse())
}

// UpdateBlog handles PUT /api/blogs/:id
//
// Any authenticated user may update any blog; only title, author, url and
// likes are replaceable.
func (h *BlogHandler) UpdateBlog(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	if !identity.Authenticated() {
		apierrors.WriteError(w, http.StatusUnauthorized, auth.ErrInvalidToken.Error())
		return
	}

	id := chi.URLParam(r, "id")
	if err := uuid.Validate(id); err != nil {
		apierrors.WriteError(w, http.StatusBadRequest, apierrors.MsgMalformattedID)
		return
	}

	var req models.NewBlogRequest

	// Parse request body
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Failed to decode blog update request",
			"blog", id,
			"error", err,
			"remote_addr", r.RemoteAddr)
		apierrors.WriteError(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}

	blog := models.Blog{
		ID:     id,
		Title:  req.Title,
		Author: req.Author,
		URL:    req.URL,
		Likes:  req.Likes,
	}

	if err := h.store.UpdateBlog(r.Context(), &blog); err != nil {
		status, msg := apierrors.MapStorageError(err, "blog")
		if !errors.Is(err, storage.ErrNotFound) {
			h.logger.Error("Failed to update blog", "blog", id, "error", err)
		}
		apierrors.WriteError(w, status, msg)
		return
	}

	// Re-read for the populated owner
	updated, err := h.store.GetBlog(r.Context(), id)
	if err != nil {
		status, msg := apierrors.MapStorageError(err, "blog")
		apierrors.WriteError(w, status, msg)
		return
	}

	h.logger.Info("Blog updated",
		"blog", id,
		"user", identity.User.ID,
		"remote_addr", r.RemoteAddr)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(updated.ToResponse())
}

// DeleteBlog handles DELETE /api/blogs/:id
//
// Only the owning user may delete a blog.
func (h *BlogHandler) DeleteBlog(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	if !identity.Authenticated() {
		apierrors.WriteError(w, http.StatusUnauthorized, auth.ErrInvalidToken.Error())
		return
	}

	id := chi.URLParam(r, "id")
	if err := uuid.Validate(id); err != nil {
		apierrors.WriteError(w, http.StatusBadRequest, apierrors.MsgMalformattedID)
		return
	}

	blog, err := h.store.GetBlog(r.Context(), id)
	if err != nil {
		status, msg := apierrors.MapStorageError(err, "blog")
		if !errors.Is(err, storage.ErrNotFound) {
			h.logger.Error("Failed to load blog for deletion", "blog", id, "error", err)
		}
		apierrors.WriteError(w, status, msg)
		return
	}

	// Ownership check
	if blog.UserID != identity.User.ID {
		h.logger.Warn("Blog deletion rejected: requester is not the owner",
			"blog", id,
			"owner", blog.UserID,
			"requester", identity.User.ID,
			"remote_addr", r.RemoteAddr)
		apierrors.WriteError(w, http.StatusUnauthorized, apierrors.MsgNotOwner)
		return
	}

	if err := h.store.DeleteBlog(r.Context(), id); err != nil {
		status, msg := apierrors.MapStorageError(err, "blog")
		if !errors.Is(err, storage.ErrNotFound) {
			h.logger.Error("Failed to delete blog", "blog", id, "error", err)
		}
		apierrors.WriteError(w, status, msg)
		return
	}

	h.logger.Info("Blog deleted",
		"blog", id,
		"user", identity.User.ID,
		"remote_addr", r.RemoteAddr)

	// Return 204 No Content
	w.WriteHeader(http.StatusNoContent)
}
