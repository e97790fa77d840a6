package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a registered account that can own blogs
type User struct {
	ID           string `json:"id" gorm:"primaryKey;size:36"`
	Username     string `json:"username" gorm:"uniqueIndex;size:64;not null"`
	Name         string `json:"name"`
	PasswordHash string `json:"-" gorm:"not null"`
	Blogs        []Blog `json:"blogs" gorm:"foreignKey:UserID"`
}

// Blog represents a single blog entry
type Blog struct {
	ID     string `json:"id" gorm:"primaryKey;size:36"`
	Title  string `json:"title" gorm:"not null"`
	Author string `json:"author"`
	URL    string `json:"url" gorm:"not null"`
	Likes  int    `json:"likes"`
	UserID string `json:"-" gorm:"index;size:36"`
	User   *User  `json:"-"`
}

// BeforeCreate assigns a store identifier before the row is inserted
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// BeforeCreate assigns a store identifier before the row is inserted
func (b *Blog) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// BlogOwner is the partial user view embedded in blog responses
type BlogOwner struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// BlogResponse is the wire representation of a blog, with the owning
// user reference expanded to a partial user view
type BlogResponse struct {
	ID     string     `json:"id"`
	Title  string     `json:"title"`
	Author string     `json:"author"`
	URL    string     `json:"url"`
	Likes  int        `json:"likes"`
	User   *BlogOwner `json:"user,omitempty"`
}

// UserBlog is the partial blog view embedded in user responses
type UserBlog struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
	Likes  int    `json:"likes"`
}

// UserResponse is the wire representation of a user. The password hash
// is never part of it.
type UserResponse struct {
	ID       string     `json:"id"`
	Username string     `json:"username"`
	Name     string     `json:"name"`
	Blogs    []UserBlog `json:"blogs"`
}

// ToResponse converts a blog to its wire representation
func (b *Blog) ToResponse() BlogResponse {
	resp := BlogResponse{
		ID:     b.ID,
		Title:  b.Title,
		Author: b.Author,
		URL:    b.URL,
		Likes:  b.Likes,
	}
	if b.User != nil {
		resp.User = &BlogOwner{
			ID:       b.User.ID,
			Username: b.User.Username,
			Name:     b.User.Name,
		}
	}
	return resp
}

// ToResponse converts a user to its wire representation
func (u *User) ToResponse() UserResponse {
	blogs := make([]UserBlog, 0, len(u.Blogs))
	for _, b := range u.Blogs {
		blogs = append(blogs, UserBlog{
			ID:     b.ID,
			Title:  b.Title,
			Author: b.Author,
			URL:    b.URL,
			Likes:  b.Likes,
		})
	}
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Blogs:    blogs,
	}
}

// BlogResponses converts a list of blogs to wire representations
func BlogResponses(blogs []*Blog) []BlogResponse {
	out := make([]BlogResponse, 0, len(blogs))
	for _, b := range blogs {
		out = append(out, b.ToResponse())
	}
	return out
}

// UserResponses converts a list of users to wire representations
func UserResponses(users []*User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, u.ToResponse())
	}
	return out
}
