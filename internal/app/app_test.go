package app_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i2y/intakeq-mcp/configs"
	"github.com/i2y/intakeq-mcp/internal/app"
	"github.com/i2y/intakeq-mcp/internal/usecase"
)

func testConfig(upstream string) *configs.Config {
	return &configs.Config{
		BaseURL:         upstream,
		APIKey:          "configured-key-0123456789",
		APITimeout:      configs.Seconds(5 * time.Second),
		AuthMode:        configs.AuthModeHeader,
		ServerName:      "intakeq-mcp-server",
		ServerVersion:   "1.0.0",
		DefaultPageSize: 100,
		MaxPageSize:     100,
		LogLevel:        "debug",
	}
}

func TestNew_RegistersEveryOperation(t *testing.T) {
	cfg := testConfig("")
	a := app.New(cfg, app.NewLogger(cfg, io.Discard))

	assert.Equal(t, 24, a.Tools)
	assert.Len(t, a.Registry.List(), a.Tools)
}

func TestWebHandlers_EndToEnd(t *testing.T) {
	var gotKey, gotUA string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Auth-Key")
		gotUA = r.Header.Get("User-Agent")
		assert.Equal(t, "/practitioners", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"Id":"p1"}]`))
	}))
	defer upstream.Close()

	cfg := testConfig(upstream.URL)
	a := app.New(cfg, app.NewLogger(cfg, io.Discard))
	h, err := a.WebHandlers(nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/questionnaires/practitioners", nil)
	req.Header.Set("X-Auth-Key", "caller-key")
	rec := httptest.NewRecorder()
	h.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `[{"Id":"p1"}]`, rec.Body.String())
	assert.Equal(t, "caller-key", gotKey)
	assert.Equal(t, "intakeq-mcp-server/1.0.0", gotUA)
}

func TestHTTPContextFunc(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set("X-Auth-Key", "header-key")

	cfg := testConfig("")
	a := app.New(cfg, app.NewLogger(cfg, io.Discard))
	ctx := a.HTTPContextFunc()(context.Background(), req)
	assert.Equal(t, "header-key", usecase.CredentialFromContext(ctx))

	cfg.AuthMode = configs.AuthModeBearer
	ctx = a.HTTPContextFunc()(context.Background(), req)
	assert.Empty(t, usecase.CredentialFromContext(ctx))
}
