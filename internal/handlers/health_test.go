package handlers_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/onevector/talenthub/internal/handlers"
	"github.com/stretchr/testify/assert"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	handlers.Health(pingerFunc(func(ctx context.Context) error { return nil }))(w, httptest.NewRequest("GET", "/health", nil))

	var resp handlers.HealthResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, "healthy", resp.Status)

	w = httptest.NewRecorder()
	handlers.Health(pingerFunc(func(ctx context.Context) error { return errors.New("down") }))(w, httptest.NewRequest("GET", "/health", nil))

	handlers.AssertJSONResponse(t, w, 503, &resp)
	assert.Equal(t, "down", resp.Database)
}
