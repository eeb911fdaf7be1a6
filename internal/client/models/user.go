// Package models defines client-side data models used by the authdesk CLI:
// the user record returned by the Authentication API and the request payloads
// sent to it.
package models

import "strings"

// User is the server-authoritative snapshot of an account. It is always
// replaced as a whole, never patched field by field.
type User struct {
	ID        int64   `json:"id"`
	Email     string  `json:"email"`
	Username  string  `json:"username"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	IsActive  bool    `json:"is_active"`
	IsAdmin   bool    `json:"is_admin"`
}

// FullName joins first and last name, or returns "" when both are unset.
func (u *User) FullName() string {
	return strings.TrimSpace(deref(u.FirstName) + " " + deref(u.LastName))
}

// Clone returns a deep copy so callers cannot mutate session state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.FirstName = clonePtr(u.FirstName)
	c.LastName = clonePtr(u.LastName)
	c.Phone = clonePtr(u.Phone)
	return &c
}

// ProfileUpdate is a partial profile change; nil fields are not sent.
type ProfileUpdate struct {
	Email     *string `json:"email,omitempty"`
	Username  *string `json:"username,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

// IsEmpty reports whether no field is set.
func (p ProfileUpdate) IsEmpty() bool {
	return p.Email == nil && p.Username == nil && p.FirstName == nil && p.LastName == nil && p.Phone == nil
}

// AdminUserUpdate extends ProfileUpdate with the role and activation flags
// only an admin may change.
type AdminUserUpdate struct {
	ProfileUpdate
	IsActive *bool `json:"is_active,omitempty"`
	IsAdmin  *bool `json:"is_admin,omitempty"`
}

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the register and setup-admin request body.
type Registration struct {
	Email     string  `json:"email"`
	Username  string  `json:"username"`
	Password  string  `json:"password"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

// PasswordChange is the change-password request body.
type PasswordChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Token is the login response.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Message is the generic {"message": "..."} response.
type Message struct {
	Message string `json:"message"`
}

// Ptr returns a pointer to v; handy for building partial updates.
func Ptr[T any](v T) *T {
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
