package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name       string
		password   string
		shouldFail bool
	}{
		{name: "simple password", password: "hunter22", shouldFail: false},
		{name: "single character", password: "x", shouldFail: false},
		{name: "exactly 72 bytes", password: strings.Repeat("a", 72), shouldFail: false},
		{name: "empty", password: "", shouldFail: true},
		{name: "too long", password: strings.Repeat("a", 73), shouldFail: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)

			if tt.shouldFail {
				if err == nil {
					t.Errorf("expected error, got nil")
				} else if err.Error() != "invalid password" {
					t.Errorf("expected generic message, got: %v", err)
				}
			} else if err != nil {
				t.Errorf("expected no error, got: %v", err)
			}
		})
	}
}

func TestHashAndComparePassword(t *testing.T) {
	password := "SecureP@ss123"

	hash, err := HashPasswordWithCost(password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPasswordWithCost failed: %v", err)
	}

	if hash == "" {
		t.Error("hash should not be empty")
	}

	if hash == password {
		t.Error("hash should not equal plaintext password")
	}

	if err := ComparePassword(hash, password); err != nil {
		t.Errorf("ComparePassword with correct password failed: %v", err)
	}

	if err := ComparePassword(hash, "WrongPassword123!"); err == nil {
		t.Error("ComparePassword with wrong password should fail")
	}
}

func TestHashPassword_Empty(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Error("expected error for empty password")
	}
}

func TestVerifyPassword_MalformedDigest(t *testing.T) {
	if VerifyPassword("not-a-bcrypt-digest", "anything") {
		t.Error("malformed digest must not verify")
	}
	if VerifyPassword("", "anything") {
		t.Error("empty digest must not verify")
	}
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	digest, err := h.Hash("token-value")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	if !h.Verify("token-value", digest) {
		t.Error("Verify should accept the original plaintext")
	}
	if h.Verify("other-value", digest) {
		t.Error("Verify should reject a different plaintext")
	}

	cost, err := bcrypt.Cost([]byte(digest))
	if err != nil {
		t.Fatalf("bcrypt.Cost failed: %v", err)
	}
	if cost != bcrypt.MinCost {
		t.Errorf("cost = %d, want %d", cost, bcrypt.MinCost)
	}
}

func TestNewBcryptHasher_OutOfRangeCost(t *testing.T) {
	if h := NewBcryptHasher(0); h.Cost != DefaultBcryptCost {
		t.Errorf("cost = %d, want %d", h.Cost, DefaultBcryptCost)
	}
	if h := NewBcryptHasher(bcrypt.MaxCost + 1); h.Cost != DefaultBcryptCost {
		t.Errorf("cost = %d, want %d", h.Cost, DefaultBcryptCost)
	}
}

func TestGenerateOpaqueToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		token, err := GenerateOpaqueToken()
		if err != nil {
			t.Fatalf("GenerateOpaqueToken failed: %v", err)
		}
		if len(token) != 43 {
			t.Errorf("token length = %d, want 43", len(token))
		}
		if strings.ContainsAny(token, "+/=") {
			t.Errorf("token %q is not URL safe", token)
		}
		if seen[token] {
			t.Fatalf("duplicate token generated: %s", token)
		}
		seen[token] = true
	}
}

func TestHashToken(t *testing.T) {
	a := HashToken("abc")
	b := HashToken("abc")
	c := HashToken("abd")

	if a != b {
		t.Error("HashToken must be deterministic")
	}
	if a == c {
		t.Error("different tokens should hash differently")
	}
	if a != "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad" {
		t.Errorf("unexpected digest %s", a)
	}
}
