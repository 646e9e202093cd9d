package models

import (
	"time"
)

type User struct {
	ID               string
	Username         string
	Email            string
	PasswordHash     string
	Role             string // "user", "power_user", "admin"
	ResetTokenHash   *string    // bcrypt digest of the outstanding reset token
	ResetTokenExpiry *time.Time // cleared together with ResetTokenHash
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasPendingReset reports whether a reset token has been issued and not yet consumed
func (u *User) HasPendingReset() bool {
	return u.ResetTokenHash != nil && *u.ResetTokenHash != ""
}

// ResetExpired reports whether the outstanding reset token is past its expiry at now
func (u *User) ResetExpired(now time.Time) bool {
	return u.ResetTokenExpiry == nil || now.After(*u.ResetTokenExpiry)
}

// UserInfo is the public view of a user account
type UserInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Info returns the public view of u
func (u *User) Info() UserInfo {
	return UserInfo{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}
