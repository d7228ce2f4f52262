package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the dashboard role a user signs in with.
type Role string

const (
	RoleAgent      Role = "agent"
	RoleEnterprise Role = "enterprise"
	RoleResident   Role = "resident"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAgent, RoleEnterprise, RoleResident:
		return true
	}
	return false
}

// User represents a registered dashboard account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Username is the login name (unique).
	Username string

	// RealName is the user's legal name as shown in the dashboard header.
	RealName string

	// Role selects which dashboard the user sees.
	Role Role

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64
}

// NewUser creates a user with a fresh ID and creation time.
func NewUser(username, realName string, role Role, passwordHash string) *User {
	return &User{
		ID:           uuid.New().String(),
		Username:     username,
		RealName:     realName,
		Role:         role,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().Unix(),
	}
}
