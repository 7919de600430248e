// Package testfixtures provides types used for testing the bridgegen packages.
package testfixtures

import "time"

// CreateUserRequest is a test fixture for generator tests.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password,omitempty"`
}

// User is a test fixture for generator tests.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      *Role     `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Role is reachable only through User.
type Role struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

// Post is a test fixture for generator tests.
type Post struct {
	ID        int64  `json:"id"`
	Author    User   `json:"author"`
	Title     string `json:"title"`
	Published bool   `json:"published"`
}

// Category references itself through its children.
type Category struct {
	Name     string      `json:"name"`
	Parent   *Category   `json:"parent,omitempty"`
	Children []*Category `json:"children"`
}
