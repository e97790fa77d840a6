package storage

import (
	"context"
	"errors"

	"github.com/mazurov/bloglist-server/internal/models"
)

var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrDuplicateUsername is returned when a username is already taken
	ErrDuplicateUsername = errors.New("username must be unique")

	// ErrStorageUnavailable is returned when storage operations fail
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Store defines the interface for storage operations
type Store interface {
	// Blog operations
	CreateBlog(ctx context.Context, b *models.Blog) error
	GetBlog(ctx context.Context, id string) (*models.Blog, error)
	UpdateBlog(ctx context.Context, b *models.Blog) error
	DeleteBlog(ctx context.Context, id string) error
	ListBlogs(ctx context.Context) ([]*models.Blog, error)

	// User operations
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)

	// Ping reports whether the backing database is reachable
	Ping(ctx context.Context) error

	// Close closes the storage
	Close() error
}
