//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/onevector/talenthub/internal/auth"
	"github.com/onevector/talenthub/internal/database"
	"github.com/onevector/talenthub/internal/handlers"
	middlewareCustom "github.com/onevector/talenthub/internal/middleware"
	"github.com/onevector/talenthub/internal/repositories"
	"github.com/onevector/talenthub/internal/routes"
	"github.com/onevector/talenthub/internal/services"
	pkglogger "github.com/onevector/talenthub/pkg/logger"
)

const (
	testJWTSecret   = "integration-secret-32-characters-long"
	testFrontendURL = "http://frontend.test"
)

// SentEmail represents a captured email message
type SentEmail struct {
	To      string
	Subject string
	Body    string
}

// CapturingMailer records outgoing email for test assertions
type CapturingMailer struct {
	mu   sync.Mutex
	sent []SentEmail
}

// Send records the email
func (m *CapturingMailer) Send(ctx context.Context, to, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, SentEmail{To: to, Subject: subject, Body: html})
	return nil
}

// LastEmail returns the most recent email sent, or nil
func (m *CapturingMailer) LastEmail() *SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sent) == 0 {
		return nil
	}
	return &m.sent[len(m.sent)-1]
}

// TestServer wraps httptest.Server wired to a real database and a capturing mailer
type TestServer struct {
	Server *httptest.Server
	DB     *database.DB
	Mailer *CapturingMailer
	Tokens *auth.TokenManager
}

// NewTestServer builds the full router the way cmd/api does, minus S3
func NewTestServer(db *database.DB) *TestServer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auditLogger := pkglogger.NewAuditLogger(logger)

	userRepo := repositories.NewUserRepository(db)
	magicLinkRepo := repositories.NewMagicLinkRepository(db)
	candidateRepo := repositories.NewCandidateRepository(db)

	hasher := TestHasher()
	tokens := auth.NewTokenManager(testJWTSecret, time.Hour)
	mailer := &CapturingMailer{}

	authService := services.NewAuthService(userRepo, hasher, tokens, time.Hour, nil, logger, auditLogger)
	resetService := services.NewPasswordResetService(userRepo, hasher, mailer, testFrontendURL, time.Hour, logger, auditLogger)
	magicLinkService := services.NewMagicLinkService(magicLinkRepo, mailer, testFrontendURL, 24*time.Hour, 3, logger, auditLogger)
	userService := services.NewUserService(userRepo, hasher, logger)
	candidateService := services.NewCandidateService(candidateRepo, nil, hasher, logger, auditLogger)

	router := chi.NewRouter()
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Recoverer)

	limit := middlewareCustom.RateLimitConfig{RequestsPerMinute: 1000}
	routes.RegisterRoutes(router, routes.Handlers{
		Auth:       handlers.NewAuthHandler(authService, resetService, nil),
		MagicLink:  handlers.NewMagicLinkHandler(magicLinkService),
		Candidates: handlers.NewCandidateHandler(candidateService, userService),
	}, tokens, limit, limit)
	router.Get("/health", handlers.Health(db))

	return &TestServer{
		Server: httptest.NewServer(router),
		DB:     db,
		Mailer: mailer,
		Tokens: tokens,
	}
}

// Close shuts the server down
func (ts *TestServer) Close() {
	ts.Server.Close()
}

// Do sends a JSON request and decodes a JSON response into out when non-nil
func (ts *TestServer) Do(t *testing.T, method, path, bearer string, body, out interface{}) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, &buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := ts.Server.Client().Do(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("failed to decode %s %s response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

// PostMultipart sends a prepared multipart body
func (ts *TestServer) PostMultipart(t *testing.T, path, contentType string, body io.Reader) int {
	t.Helper()

	resp, err := ts.Server.Client().Post(ts.Server.URL+path, contentType, body)
	if err != nil {
		t.Fatalf("multipart POST %s failed: %v", path, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode
}

// Login returns a session token for the given credentials
func (ts *TestServer) Login(t *testing.T, email, password string) string {
	t.Helper()

	var resp handlers.LoginResponse
	status := ts.Do(t, "POST", "/api/login", "", handlers.LoginRequest{Email: email, Password: password}, &resp)
	if status != http.StatusOK {
		t.Fatalf("login as %s: status %d", email, status)
	}
	return resp.Token
}
