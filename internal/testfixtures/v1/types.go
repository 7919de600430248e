// Package v1 holds a User type whose name collides with v2.User.
package v1

type User struct {
	Name string `json:"name"`
}
