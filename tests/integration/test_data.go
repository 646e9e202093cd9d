//go:build integration

package integration

import (
	"fmt"
	"regexp"
	"time"
)

// TestUser generates unique test user credentials using timestamp
func TestUser(suffix string) (email, password string) {
	email = fmt.Sprintf("test-%d-%s@example.com", time.Now().UnixNano(), suffix)
	password = "TestPassword123!"
	return
}

var tokenParam = regexp.MustCompile(`token=([A-Za-z0-9_\-]+)`)

// ExtractTokenFromEmail returns the token query parameter of the first link in an email body
func ExtractTokenFromEmail(body string) string {
	m := tokenParam.FindStringSubmatch(body)
	if m == nil {
		return ""
	}
	return m[1]
}
