package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultBcryptCost = 10 // matches the cost used for existing candidate hashes
	OpaqueTokenLength = 32 // 256 bits
	MaxPasswordLen    = 72 // bcrypt ignores input beyond 72 bytes
)

// PasswordValidationError is returned for passwords bcrypt cannot hash faithfully
type PasswordValidationError struct {
	Reason string
}

func (e *PasswordValidationError) Error() string {
	return "invalid password"
}

// BcryptHasher hashes and verifies secrets with a fixed bcrypt cost
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher returns a hasher, falling back to the default cost for out-of-range values
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{Cost: cost}
}

// Hash returns a salted bcrypt digest of plaintext
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	return HashPasswordWithCost(plaintext, h.Cost)
}

// Verify reports whether plaintext matches digest; malformed digests never match
func (h *BcryptHasher) Verify(plaintext, digest string) bool {
	return VerifyPassword(digest, plaintext)
}

func HashPassword(password string) (string, error) {
	return HashPasswordWithCost(password, DefaultBcryptCost)
}

func HashPasswordWithCost(password string, cost int) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

func ComparePassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// VerifyPassword is the boolean form of ComparePassword
func VerifyPassword(hashedPassword, password string) bool {
	if hashedPassword == "" {
		return false
	}
	return ComparePassword(hashedPassword, password) == nil
}

// GenerateOpaqueToken returns a URL-safe random token suitable for emailed links
func GenerateOpaqueToken() (string, error) {
	bytes := make([]byte, OpaqueTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// HashToken returns the hex SHA-256 digest used to index tokens that must be looked up directly
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ValidatePassword rejects passwords that cannot be stored
func ValidatePassword(password string) error {
	if password == "" {
		return &PasswordValidationError{Reason: "empty"}
	}
	if len(password) > MaxPasswordLen {
		return &PasswordValidationError{Reason: fmt.Sprintf("must be at most %d bytes", MaxPasswordLen)}
	}
	return nil
}
