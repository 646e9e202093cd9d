package models

import (
	"time"
)

// MaxMagicLinkAttempts is the number of verifications a magic link allows
const MaxMagicLinkAttempts = 3

// MagicLink represents an onboarding invitation
type MagicLink struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	TokenHash string    `json:"-"` // Never expose token material
	ExpiresAt time.Time `json:"expires_at"`
	Attempts  int       `json:"attempts"`
	Expired   bool      `json:"expired"`
	CreatedAt time.Time `json:"created_at"`
}

// IsUsable checks whether the link can still be verified at now
func (l *MagicLink) IsUsable(now time.Time, maxAttempts int) bool {
	return !l.Expired && l.Attempts < maxAttempts && now.Before(l.ExpiresAt)
}
