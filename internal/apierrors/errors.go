package apierrors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mazurov/bloglist-server/internal/auth"
	"github.com/mazurov/bloglist-server/internal/storage"
)

// Standard error messages shared across handlers
const (
	MsgMalformattedID  = "malformatted id"
	MsgUnknownEndpoint = "unknown endpoint"
	MsgNotOwner        = "unauthorized user request"
	MsgBadCredentials  = "invalid username or password"
	MsgInternal        = "internal server error"
)

// ErrorResponse represents the standard error response format
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteError writes a standardized error response
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// MapStorageError maps storage errors to an HTTP status and message.
// resourceType names the entity for not-found messages.
func MapStorageError(err error, resourceType string) (int, string) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, resourceType + " not found"
	case errors.Is(err, storage.ErrDuplicateUsername):
		return http.StatusBadRequest, storage.ErrDuplicateUsername.Error()
	default:
		return http.StatusInternalServerError, MsgInternal
	}
}

// MapTokenError maps token verification errors to an HTTP status and message.
// Every token failure is an authentication failure; the message carries the
// underlying failure name.
func MapTokenError(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrTokenRequired),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrInvalidSignature),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, err.Error()
	default:
		return http.StatusUnauthorized, auth.ErrInvalidToken.Error()
	}
}
