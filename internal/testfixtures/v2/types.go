// Package v2 holds a User type whose name collides with v1.User.
package v2

type User struct {
	FullName string `json:"full_name"`
	Active   bool   `json:"active"`
}
