// Package models defines the data the Videoflix client exchanges with the
// backend and keeps in memory.
package models

import "strings"

// User is the profile snapshot returned by GET /auth/users/me/.
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// DisplayName prefers the full name and falls back to the username.
func (u User) DisplayName() string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full != "" {
		return full
	}
	return u.Username
}

// ProfileUpdate is the PATCH body for /auth/users/me/. Empty fields are left
// untouched on the server.
type ProfileUpdate struct {
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Credentials are the remember-me pair. They only pre-fill the login form and
// never imply an active session.
type Credentials struct {
	Username string
	Password string
}
