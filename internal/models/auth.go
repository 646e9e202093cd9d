package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims are the identity fields carried by a signed session token.
// They are never persisted.
type SessionClaims struct {
	UserID   string `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
