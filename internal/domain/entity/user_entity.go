package entity

import (
	"time"
)

// User is an account. Email is stored trimmed and lowercased and is unique.
// PasswordHash is a bcrypt hash; an empty hash means the account cannot log in.
type User struct {
	ID           string
	Name         string
	Email        string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
}

// HasCredential reports whether the account can authenticate with a password.
func (u *User) HasCredential() bool {
	return u != nil && u.PasswordHash != ""
}

// Identity is the verified payload of an identity token, scoped to one request.
type Identity struct {
	UserID string
	Email  string
	Role   string
}
