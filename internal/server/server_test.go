package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mazurov/bloglist-server/internal/auth"
	"github.com/mazurov/bloglist-server/internal/config"
	"github.com/mazurov/bloglist-server/internal/server/handlers"
	"github.com/mazurov/bloglist-server/internal/storage"
)

// newTestRouter wires a full server against an in-memory store, mirroring
// the production wiring in the CLI layer.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := storage.Open("sqlite://file::memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := &config.Config{
		Server:    config.ServerConfig{Port: 3003, Host: "127.0.0.1"},
		Database:  config.DatabaseConfig{DSN: "sqlite://file::memory:"},
		Auth:      config.AuthConfig{Secret: "sekret"},
		Logging:   config.LoggingConfig{Level: "error", Format: "text"},
		RateLimit: config.RateLimitConfig{RequestsPerMinute: 10000},
	}

	tokens := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	srv := NewServer(cfg, logger, store, tokens)

	blogHandler := handlers.NewBlogHandler(store, logger)
	userHandler := handlers.NewUserHandler(store, logger)
	loginHandler := handlers.NewLoginHandler(store, tokens, logger)
	healthHandler := handlers.NewHealthHandler(store, logger)

	srv.SetHandlers(HandlerSet{
		Health:     healthHandler.GetHealth,
		ListBlogs:  blogHandler.ListBlogs,
		GetBlog:    blogHandler.GetBlog,
		CreateBlog: blogHandler.CreateBlog,
		UpdateBlog: blogHandler.UpdateBlog,
		DeleteBlog: blogHandler.DeleteBlog,
		ListUsers:  userHandler.ListUsers,
		CreateUser: userHandler.CreateUser,
		Login:      loginHandler.Login,
	})

	return srv.Router()
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(data)
	}

	req := httptest.NewRequest(method, path, reqBody)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func registerAndLogin(t *testing.T, router http.Handler, username, name, password string) string {
	t.Helper()

	rr := doJSON(t, router, http.MethodPost, "/api/users", "", map[string]string{
		"username": username,
		"name":     name,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = doJSON(t, router, http.MethodPost, "/api/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestEndToEndBlogLifecycle(t *testing.T) {
	router := newTestRouter(t)

	token := registerAndLogin(t, router, "root", "Superuser", "salainen")

	// Create a blog as the logged-in user
	rr := doJSON(t, router, http.MethodPost, "/api/blogs", token, map[string]any{
		"title":  "Canonical string reduction",
		"author": "Edsger W. Dijkstra",
		"url":    "http://example.com/reduction",
		"likes":  5,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created struct {
		ID    string `json:"id"`
		Likes int    `json:"likes"`
		User  struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	assert.Equal(t, 5, created.Likes)
	assert.Equal(t, "root", created.User.Username)

	// The listing is public and carries the populated owner
	rr = doJSON(t, router, http.MethodGet, "/api/blogs", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var blogs []struct {
		ID   string `json:"id"`
		User struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&blogs))
	require.Len(t, blogs, 1)
	assert.Equal(t, "root", blogs[0].User.Username)

	// Bump the like count via full replacement
	rr = doJSON(t, router, http.MethodPut, "/api/blogs/"+created.ID, token, map[string]any{
		"title":  "Canonical string reduction",
		"author": "Edsger W. Dijkstra",
		"url":    "http://example.com/reduction",
		"likes":  6,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var updated struct {
		Likes int `json:"likes"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&updated))
	assert.Equal(t, 6, updated.Likes)

	// Owner deletes the blog
	rr = doJSON(t, router, http.MethodDelete, "/api/blogs/"+created.ID, token, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = doJSON(t, router, http.MethodGet, "/api/blogs", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())
}

func TestEndToEndAuthRejections(t *testing.T) {
	router := newTestRouter(t)

	token := registerAndLogin(t, router, "root", "Superuser", "salainen")

	blogBody := map[string]any{
		"title": "Protected",
		"url":   "http://example.com/protected",
	}

	// Creation without a token
	rr := doJSON(t, router, http.MethodPost, "/api/blogs", "", blogBody)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"jwt must be provided"}`, rr.Body.String())

	// Creation with a tampered token
	rr = doJSON(t, router, http.MethodPost, "/api/blogs", token+"x", blogBody)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"invalid signature"}`, rr.Body.String())

	// Create a blog, then have another account try to delete it
	rr = doJSON(t, router, http.MethodPost, "/api/blogs", token, blogBody)
	require.Equal(t, http.StatusCreated, rr.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))

	otherToken := registerAndLogin(t, router, "hellas", "Arto Hellas", "salainen")
	rr = doJSON(t, router, http.MethodDelete, "/api/blogs/"+created.ID, otherToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"unauthorized user request"}`, rr.Body.String())

	// Deletion without a token
	rr = doJSON(t, router, http.MethodDelete, "/api/blogs/"+created.ID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"jwt must be provided"}`, rr.Body.String())
}

func TestEndToEndMalformattedID(t *testing.T) {
	router := newTestRouter(t)

	token := registerAndLogin(t, router, "root", "Superuser", "salainen")

	// A Mongo-style hex id is not a valid identifier here
	rr := doJSON(t, router, http.MethodDelete, "/api/blogs/5a422a851b54a676234d17f0", token, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"malformatted id"}`, rr.Body.String())

	rr = doJSON(t, router, http.MethodGet, "/api/blogs/5a422a851b54a676234d17f0", "", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"malformatted id"}`, rr.Body.String())
}

func TestEndToEndUserListing(t *testing.T) {
	router := newTestRouter(t)

	token := registerAndLogin(t, router, "root", "Superuser", "salainen")

	for i := 0; i < 2; i++ {
		rr := doJSON(t, router, http.MethodPost, "/api/blogs", token, map[string]any{
			"title": fmt.Sprintf("Entry %d", i),
			"url":   fmt.Sprintf("http://example.com/%d", i),
		})
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := doJSON(t, router, http.MethodGet, "/api/users", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "passwordHash")

	var users []struct {
		Username string `json:"username"`
		Blogs    []struct {
			Title string `json:"title"`
		} `json:"blogs"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&users))
	require.Len(t, users, 1)
	assert.Equal(t, "root", users[0].Username)
	assert.Len(t, users[0].Blogs, 2)
}

func TestEndToEndUnknownEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rr := doJSON(t, router, http.MethodGet, "/api/nonsense", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"unknown endpoint"}`, rr.Body.String())

	// Wrong method on a known route reports the same way
	rr = doJSON(t, router, http.MethodPatch, "/api/blogs", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"unknown endpoint"}`, rr.Body.String())
}

func TestEndToEndDuplicateRegistration(t *testing.T) {
	router := newTestRouter(t)

	body := map[string]string{"username": "root", "name": "Superuser", "password": "salainen"}

	rr := doJSON(t, router, http.MethodPost, "/api/users", "", body)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doJSON(t, router, http.MethodPost, "/api/users", "", body)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"username must be unique"}`, rr.Body.String())
}

func TestEndToEndHealthAndMetrics(t *testing.T) {
	router := newTestRouter(t)

	rr := doJSON(t, router, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, router, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "bloglist_http_requests_total")
}

func TestEndToEndCORSPreflight(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/blogs", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
