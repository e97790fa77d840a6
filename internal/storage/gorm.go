package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mazurov/bloglist-server/internal/models"
)

// GormStore implements Store on top of a relational database.
// The DSN scheme selects the driver: sqlite:// for local files and tests,
// postgres:// for deployments.
type GormStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

// Open connects to the database selected by the DSN and runs schema migration
func Open(dsn string, logger *slog.Logger) (*GormStore, error) {
	dialector, err := dialectorFor(dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		// Unique-index violations surface as gorm.ErrDuplicatedKey on
		// both drivers with this enabled.
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}

	// An in-memory sqlite database exists per connection; a second pooled
	// connection would see an empty schema.
	if strings.Contains(dsn, ":memory:") {
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Blog{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	logger.Info("Database opened", "dsn", maskDSN(dsn))

	return &GormStore{db: db, logger: logger}, nil
}

// dialectorFor maps a DSN to a gorm driver based on its scheme
func dialectorFor(dsn string) (gorm.Dialector, error) {
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(dsn, "sqlite://")), nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database scheme in DSN %q (expected sqlite:// or postgres://)", maskDSN(dsn))
	}
}

// maskDSN hides credentials embedded in a DSN for logging
func maskDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	if at == -1 {
		return dsn
	}
	scheme := strings.Index(dsn, "://")
	if scheme == -1 {
		return dsn
	}
	return dsn[:scheme+3] + "***" + dsn[at:]
}

// CreateBlog inserts a blog row
func (s *GormStore) CreateBlog(ctx context.Context, b *models.Blog) error {
	if err := s.db.WithContext(ctx).Create(b).Error; err != nil {
		s.logger.Error("Storage write failed",
			"operation", "create_blog",
			"error", err)
		return ErrStorageUnavailable
	}

	s.logger.Info("Blog created", "blog", b.ID, "user", b.UserID)
	return nil
}

// GetBlog retrieves a blog by id with its owner populated
func (s *GormStore) GetBlog(ctx context.Context, id string) (*models.Blog, error) {
	var blog models.Blog
	err := s.db.WithContext(ctx).Preload("User").First(&blog, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		s.logger.Error("Storage read failed",
			"operation", "get_blog",
			"blog", id,
			"error", err)
		return nil, ErrStorageUnavailable
	}

	return &blog, nil
}

// UpdateBlog persists the replaceable fields of a blog
func (s *GormStore) UpdateBlog(ctx context.Context, b *models.Blog) error {
	result := s.db.WithContext(ctx).Model(&models.Blog{}).
		Where("id = ?", b.ID).
		Select("title", "author", "url", "likes").
		Updates(map[string]any{
			"title":  b.Title,
			"author": b.Author,
			"url":    b.URL,
			"likes":  b.Likes,
		})
	if result.Error != nil {
		s.logger.Error("Storage write failed",
			"operation", "update_blog",
			"blog", b.ID,
			"error", result.Error)
		return ErrStorageUnavailable
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Info("Blog updated", "blog", b.ID)
	return nil
}

// DeleteBlog removes a blog row
func (s *GormStore) DeleteBlog(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&models.Blog{}, "id = ?", id)
	if result.Error != nil {
		s.logger.Error("Storage write failed",
			"operation", "delete_blog",
			"blog", id,
			"error", result.Error)
		return ErrStorageUnavailable
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Info("Blog deleted", "blog", id)
	return nil
}

// ListBlogs returns all blogs with owners populated
func (s *GormStore) ListBlogs(ctx context.Context) ([]*models.Blog, error) {
	var blogs []*models.Blog
	if err := s.db.WithContext(ctx).Preload("User").Find(&blogs).Error; err != nil {
		s.logger.Error("Storage read failed",
			"operation", "list_blogs",
			"error", err)
		return nil, ErrStorageUnavailable
	}

	return blogs, nil
}

// CreateUser inserts a user row. A violated username unique index is
// reported as ErrDuplicateUsername.
func (s *GormStore) CreateUser(ctx context.Context, u *models.User) error {
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateUsername
		}
		s.logger.Error("Storage write failed",
			"operation", "create_user",
			"username", u.Username,
			"error", err)
		return ErrStorageUnavailable
	}

	s.logger.Info("User created", "user", u.ID, "username", u.Username)
	return nil
}

// GetUser retrieves a user by id
func (s *GormStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		s.logger.Error("Storage read failed",
			"operation", "get_user",
			"user", id,
			"error", err)
		return nil, ErrStorageUnavailable
	}

	return &user, nil
}

// GetUserByUsername retrieves a user by its unique username
func (s *GormStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "username = ?", username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		s.logger.Error("Storage read failed",
			"operation", "get_user_by_username",
			"username", username,
			"error", err)
		return nil, ErrStorageUnavailable
	}

	return &user, nil
}

// ListUsers returns all users with their owned blogs populated
func (s *GormStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	if err := s.db.WithContext(ctx).Preload("Blogs").Find(&users).Error; err != nil {
		s.logger.Error("Storage read failed",
			"operation", "list_users",
			"error", err)
		return nil, ErrStorageUnavailable
	}

	return users, nil
}

// Ping checks database connectivity
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection pool
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
