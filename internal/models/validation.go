package models

import (
	"fmt"
)

const minPasswordLength = 3

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// NewBlogRequest is the request body for blog creation and update
type NewBlogRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
	Likes  int    `json:"likes"`
}

// NewUserRequest is the request body for user registration
type NewUserRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// ValidateNewBlog checks the mandatory blog fields. Likes carries no
// constraint: a missing value decodes to 0, which is the documented default.
func ValidateNewBlog(r *NewBlogRequest) error {
	if r.Title == "" {
		return &ValidationError{Field: "title", Message: "is required"}
	}
	if r.URL == "" {
		return &ValidationError{Field: "url", Message: "is required"}
	}
	return nil
}

// ValidateNewUser checks registration input. Username uniqueness is left to
// the store's unique index.
func ValidateNewUser(r *NewUserRequest) error {
	if r.Username == "" {
		return &ValidationError{Field: "username", Message: "is required"}
	}
	if r.Password == "" {
		return &ValidationError{Field: "password", Message: "is required"}
	}
	if len(r.Password) < minPasswordLength {
		return &ValidationError{Field: "password", Message: fmt.Sprintf("must be at least %d characters long", minPasswordLength)}
	}
	return nil
}
