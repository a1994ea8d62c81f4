package intakeq_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i2y/intakeq-mcp/internal/adapter/outbound/intakeq"
	"github.com/i2y/intakeq-mcp/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*intakeq.Client, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client := intakeq.NewClient(server.URL+"/api/v1", server.Client(), testLogger())
	return client, &calls
}

func TestClient_Invoke(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		handler     http.HandlerFunc
		req         intakeq.Request
		wantPayload any
		wantRaw     []byte
		wantKind    domain.Kind
		check       func(t *testing.T, err error)
	}{
		{
			name: "GET decodes JSON and sends auth headers",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/api/v1/appointments", r.URL.Path)
				assert.Equal(t, "client=Jane%20Doe&status=Confirmed", r.URL.RawQuery)
				assert.Equal(t, "secret-key", r.Header.Get("X-Auth-Key"))
				assert.Equal(t, "intakeq-mcp-server/1.0.0", r.Header.Get("User-Agent"))
				assert.Empty(t, r.Header.Get("Content-Type"))
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`[{"Id":"a1","ClientId":42}]`))
			},
			req: intakeq.Request{
				Method: http.MethodGet, Path: "/appointments", Credential: "secret-key",
				Query: map[string]string{"client": "Jane Doe", "status": "Confirmed", "page": ""},
			},
			wantPayload: []any{map[string]any{"Id": "a1", "ClientId": json.Number("42")}},
		},
		{
			name: "POST sends JSON body with content type",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				body, _ := io.ReadAll(r.Body)
				assert.JSONEq(t, `{"AppointmentId":"123"}`, string(body))
				w.WriteHeader(http.StatusOK)
			},
			req: intakeq.Request{
				Method: http.MethodPost, Path: "/appointments/cancellation", Credential: "k",
				Body: map[string]string{"AppointmentId": "123"},
			},
			wantPayload: nil,
		},
		{
			name: "201 accepted only when listed",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
				_, _ = w.Write([]byte(`{"Id":"new"}`))
			},
			req: intakeq.Request{
				Method: http.MethodPost, Path: "/appointments", Credential: "k",
				Success: []int{http.StatusOK, http.StatusCreated},
			},
			wantPayload: map[string]any{"Id": "new"},
		},
		{
			name: "201 rejected by default",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
			},
			req:      intakeq.Request{Method: http.MethodPost, Path: "/clients", Credential: "k"},
			wantKind: domain.KindUpstreamError,
		},
		{
			name: "raw request returns exact bytes",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/v1/notes/99/pdf", r.URL.Path)
				w.Header().Set("Content-Type", "application/pdf")
				_, _ = w.Write([]byte("%PDF-1.4\x00\x01binary"))
			},
			req:     intakeq.Request{Method: http.MethodGet, Path: "/notes/99/pdf", Credential: "k", Raw: true},
			wantRaw: []byte("%PDF-1.4\x00\x01binary"),
		},
		{
			name: "non-success status keeps status and body verbatim",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte("not found"))
			},
			req:      intakeq.Request{Method: http.MethodGet, Path: "/appointments/x", Credential: "k"},
			wantKind: domain.KindUpstreamError,
			check: func(t *testing.T, err error) {
				var de *domain.Error
				require.ErrorAs(t, err, &de)
				assert.Equal(t, 404, de.StatusCode)
				assert.Equal(t, "not found", de.Body)
			},
		},
		{
			name: "malformed JSON on 200 is an internal error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"broken":`))
			},
			req:      intakeq.Request{Method: http.MethodGet, Path: "/clients", Credential: "k"},
			wantKind: domain.KindInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, calls := newTestClient(t, tt.handler)

			res, err := client.Invoke(ctx, tt.req)

			assert.Equal(t, int32(1), calls.Load())
			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, domain.KindOf(err))
				assert.Nil(t, res)
				if tt.check != nil {
					tt.check(t, err)
				}
				return
			}
			require.NoError(t, err)
			require.NotNil(t, res)
			if tt.wantRaw != nil {
				assert.Equal(t, tt.wantRaw, res.Raw)
				assert.Nil(t, res.Payload)
				return
			}
			assert.Equal(t, tt.wantPayload, res.Payload)
		})
	}
}

func TestClient_Invoke_Unavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := intakeq.NewClient(url, nil, testLogger())
	_, err := client.Invoke(context.Background(), intakeq.Request{Method: http.MethodGet, Path: "/clients", Credential: "k"})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestClient_Invoke_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	client := intakeq.NewClient(server.URL, &http.Client{Timeout: 50 * time.Millisecond}, testLogger())
	_, err := client.Invoke(context.Background(), intakeq.Request{Method: http.MethodGet, Path: "/clients", Credential: "k"})

	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.KindUpstreamUnavailable, de.Kind)
	assert.True(t, de.Timeout)
}

type recordingObserver struct {
	method string
	code   int
}

func (o *recordingObserver) ObserveUpstream(method string, code int, _ time.Duration) {
	o.method, o.code = method, code
}

func TestClient_Invoke_ObserverAndUserAgent(t *testing.T) {
	obs := &recordingObserver{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "custom/2.0", r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusTeapot)
	}))
	t.Cleanup(server.Close)

	client := intakeq.NewClient(server.URL, server.Client(), testLogger(),
		intakeq.WithUserAgent("custom/2.0"), intakeq.WithObserver(obs))
	_, err := client.Invoke(context.Background(), intakeq.Request{Method: http.MethodGet, Path: "/x", Credential: "k"})

	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Equal(t, http.MethodGet, obs.method)
	assert.Equal(t, http.StatusTeapot, obs.code)
}

func TestEncodeQuery(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]string
		want string
	}{
		{"empty", nil, ""},
		{"sorted keys", map[string]string{"b": "2", "a": "1"}, "a=1&b=2"},
		{"spaces as %20", map[string]string{"search": "Jane Doe"}, "search=Jane%20Doe"},
		{"plus is escaped", map[string]string{"q": "a+b"}, "q=a%2Bb"},
		{"empty values dropped", map[string]string{"a": "", "b": "x"}, "b=x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, intakeq.EncodeQuery(tt.in))
		})
	}
}
