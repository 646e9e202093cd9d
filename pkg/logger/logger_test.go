package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizedEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"user@example.com", "u***@*******.com"},
		{"a@x.io", "a@*.io"},
		{"user@localhost", "u***@localhost"},
		{"not-an-email", "[invalid-email]"},
		{"@example.com", "[invalid-email]"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizedEmail(tt.in))
		})
	}
}

func TestSanitizeQueryString(t *testing.T) {
	assert.True(t, SanitizeQueryString("token=abc"))
	assert.True(t, SanitizeQueryString("Email=user%40x.com"))
	assert.False(t, SanitizeQueryString("page=2&limit=10"))
	assert.False(t, SanitizeQueryString(""))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestAuditLogger_MasksEmailAndSetsLevel(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLogger(New(&buf, "debug"))

	al.LogPasswordReset(AuditEvent{
		EventType:     "reset_requested",
		Email:         "user@example.com",
		Success:       false,
		FailureReason: "unknown_email",
	})

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.Equal(t, "audit", record["msg"])
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "password_reset", record["audit_type"])
	assert.Equal(t, "u***@*******.com", record["email"])
	assert.Equal(t, "unknown_email", record["failure_reason"])
	assert.NotContains(t, record, "user_id")
}
