package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GodofWar9000/tele-triage/internal/api/handler"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		db     handler.Pinger
		status int
		body   string
	}{
		{"no database", nil, http.StatusOK, `{"status":"ok","database":"disabled"}`},
		{"database up", pingerFunc(func(context.Context) error { return nil }), http.StatusOK,
			`{"status":"ok","database":"ok"}`},
		{"database down", pingerFunc(func(context.Context) error { return errors.New("refused") }),
			http.StatusServiceUnavailable, `{"status":"degraded","database":"unreachable"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.NewHealthHandler(tt.db).Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}
