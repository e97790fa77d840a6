package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mazurov/bloglist-server/internal/apierrors"
	"github.com/mazurov/bloglist-server/internal/auth"
	"github.com/mazurov/bloglist-server/internal/models"
	"github.com/mazurov/bloglist-server/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) *storage.GormStore {
	t.Helper()

	store, err := storage.Open("sqlite://file::memory:", testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func createTestUser(t *testing.T, store storage.Store, username string) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("salainen")
	require.NoError(t, err)
	user := &models.User{
		Username:     username,
		Name:         "Test User",
		PasswordHash: hash,
	}
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

// withIdentity attaches a resolved identity the way the middleware does
func withIdentity(r *http.Request, user *models.User) *http.Request {
	ctx := auth.ContextWithIdentity(r.Context(), auth.Identity{User: user, Token: "test"})
	return r.WithContext(ctx)
}

// withURLParam injects a chi route parameter for direct handler calls
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeError(t *testing.T, body *bytes.Buffer) string {
	t.Helper()

	var resp apierrors.ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp.Error
}

func TestBlogHandler_ListBlogs(t *testing.T) {
	store := newTestStore(t)
	handler := NewBlogHandler(store, testLogger())
	user := createTestUser(t, store, "root")

	require.NoError(t, store.CreateBlog(context.Background(), &models.Blog{
		Title:  "React patterns",
		Author: "Michael Chan",
		URL:    "https://reactpatterns.com/",
		Likes:  7,
		UserID: user.ID,
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/blogs", nil)
	rr := httptest.NewRecorder()
	handler.ListBlogs(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var blogs []models.BlogResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&blogs))
	require.Len(t, blogs, 1)
	assert.Equal(t, "React patterns", blogs[0].Title)
	assert.Equal(t, 7, blogs[0].Likes)
	require.NotNil(t, blogs[0].User)
	assert.Equal(t, "root", blogs[0].User.Username)
}

func TestBlogHandler_CreateBlog(t *testing.T) {
	store := newTestStore(t)
	handler := NewBlogHandler(store, testLogger())
	user := createTestUser(t, store, "root")

	body := `{"title":"Go to statement considered harmful","author":"Edsger W. Dijkstra","url":"http://example.com/harmful","likes":5}`
	req := httptest.NewRequest(http.MethodPost, "/api/blogs", bytes.NewBufferString(body))
	req = withIdentity(req, user)
	rr := httptest.NewRecorder()
	handler.CreateBlog(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var blog models.BlogResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&blog))
	assert.NotEmpty(t, blog.ID)
	assert.Equal(t, 5, blog.Likes)
	require.NotNil(t, blog.User)
	assert.Equal(t, "root", blog.User.Username)
}

func TestBlogHandler_CreateBlogDefaultsLikes(t *testing.T) {
	store := newTestStore(t)
	handler := NewBlogHandler(store, testLogger())
	user := createTestUser(t, store, "root")

	body := `{"title":"No likes yet","url":"http://example.com/unliked"}`
	req := httptest.NewRequest(http.MethodPost, "/api/blogs", bytes.NewBufferString(body))
	req = withIdentity(req, user)
	rr := httptest.NewRecorder()
	handler.CreateBlog(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var blog models.BlogResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&blog))
	assert.Equal(t, 0, blog.Likes)
}

func TestBlogHandler_CreateBlogValidation(t *testing.T) {
	store := newTestStore(t)
	handler := NewBlogHandler(store, testLogger())
	user := createTestUser(t, store, "root")

	tests := []struct {
		name   string
		body   string
		errMsg string
	}{
		{
			name:   "missing title",
			body:   `{"url":"http://example.com"}`,
			errMsg: "title is required",
		},
		{
			name:   "missing url",
			body:   `{"title":"Untitled"}`,
			errMsg: "url is required",
		},
		{
			name:   "invalid json",
			body:   `{not json`,
			errMsg: "invalid JSON in request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/blogs", bytes.NewBufferString(tt.body))
			req = withIdentity(req, user)
			rr := httptest.NewRecorder()
			handler.CreateBlog(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tt.errMsg, decodeError(t, rr.Body))
		})
	}
}

func TestBlogHandler_CreateBlogUnauthenticated(t *testing.T) {
	store := newTestStore(t)
	handler := NewBlogHandler(store, testLogger())

	body := `{"title":"Sneaky","url":"http://example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/blogs", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	handler.CreateBlog(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestBlogHandler_GetBlog(t *testing.T) {
	store := newTestStore(t)
	handler := NewBlogHandler(store, testLogger())
	user := createTestUser(t, store, "root")

	blog := &models.Blog{Title: "TDD harms architecture", URL: "http://example.com/tdd", UserID: user.ID}
	require.NoError(t, store.CreateBlog(context.Background(), blog))

	req := httptest.NewRequest(http.MethodGet, "/api/blogs/"+blog.ID, nil)
	req = withURLParam(req, "id", blog.ID)
	rr := httptest.NewRecorder()
	handler.GetBlog(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var got models.BlogResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, blog.ID, got.ID)
	require.NotNil(t, got.User)
	assert.Equal(t, "root", got.User.Username)
}

func TestBlogHandler_GetBlogMalformattedID(t *testing.T) {
	store := newTestStore(t)
	handler := NewBlogHandler(store, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/blogs/5a422a851b54a676234d17f0", nil)
	req = withURLParam(req, "id", "5a422a851b54a676234d17f0")
	rr := httptest.NewRecorder()
	handler.GetBlog(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "malformatted id", decodeError(t, rr.Body))
}

func TestBlogHandler_UpdateBlog(t *testing.T) {
	store := newTestStore(t)
	handler := NewBlogHandler(store, testLogger())
	owner := createTestUser(t, store, "root")
	other := createTestUser(t, store, "hellas")

	blog := &models.Blog{Title: "Type wars", URL: "http://example.com/typewars", Likes: 2, UserID: owner.ID}
	require.NoError(t, store.CreateBlog(context.Background(), blog))

	// Any authenticated user may bump likes, not just the owner
	body := `{"title":"Type wars","url":"http://example.com/typewars","likes":3}`
	req := httptest.NewRequest(http.MethodPut, "/api/blogs/"+blog.ID, bytes.NewBufferString(body))
	req = withIdentity(req, other)
	req = withURLParam(req, "id", blog.ID)
	rr := httptest.NewRecorder()
	handler.UpdateBlog(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var got models.BlogResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, 3, got.Likes)
	require.NotNil(t, got.User)
	assert.Equal(t, "root", got.User.Username)
}

func TestBlogHandler_UpdateBlogNotFound(t *testing.T) {
	store := newTestStore(t)
	handler := NewBlogHandler(store, testLogger())
	user := createTestUser(t, store, "root")

	id := "4f3a2c8e-0000-0000-0000-00000000dead"
	body := `{"title":"Ghost","url":"http://example.com/ghost"}`
	req := httptest.NewRequest(http.MethodPut, "/api/blogs/"+id, bytes.NewBufferString(body))
	req = withIdentity(req, user)
	req = withURLParam(req, "id", id)
	rr := httptest.NewRecorder()
	handler.UpdateBlog(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "blog not found", decodeError(t, rr.Body))
}

func TestBlogHandler_DeleteBlog(t *testing.T) {
	store := newTestStore(t)
	handler := NewBlogHandler(store, testLogger())
	owner := createTestUser(t, store, "root")

	blog := &models.Blog{Title: "Short lived", URL: "http://example.com/gone", UserID: owner.ID}
	require.NoError(t, store.CreateBlog(context.Background(), blog))

	req := httptest.NewRequest(http.MethodDelete, "/api/blogs/"+blog.ID, nil)
	req = withIdentity(req, owner)
	req = withURLParam(req, "id", blog.ID)
	rr := httptest.NewRecorder()
	handler.DeleteBlog(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)

	_, err := store.GetBlog(context.Background(), blog.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestBlogHandler_DeleteBlogNotOwner(t *testing.T) {
	store := newTestStore(t)
	handler := NewBlogHandler(store, testLogger())
	owner := createTestUser(t, store, "root")
	intruder := createTestUser(t, store, "hellas")

	blog := &models.Blog{Title: "Keep out", URL: "http://example.com/keepout", UserID: owner.ID}
	require.NoError(t, store.CreateBlog(context.Background(), blog))

	req := httptest.NewRequest(http.MethodDelete, "/api/blogs/"+blog.ID, nil)
	req = withIdentity(req, intruder)
	req = withURLParam(req, "id", blog.ID)
	rr := httptest.NewRecorder()
	handler.DeleteBlog(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "unauthorized user request", decodeError(t, rr.Body))

	// Blog survives the rejected attempt
	_, err := store.GetBlog(context.Background(), blog.ID)
	assert.NoError(t, err)
}

func TestBlogHandler_DeleteBlogNotFound(t *testing.T) {
	store := newTestStore(t)
	handler := NewBlogHandler(store, testLogger())
	user := createTestUser(t, store, "root")

	id := "4f3a2c8e-0000-0000-0000-00000000dead"
	req := httptest.NewRequest(http.MethodDelete, "/api/blogs/"+id, nil)
	req = withIdentity(req, user)
	req = withURLParam(req, "id", id)
	rr := httptest.NewRecorder()
	handler.DeleteBlog(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "blog not found", decodeError(t, rr.Body))
}
