package mcptools_test

import (
	"context"
	"encoding/base64"
	"log/slog"
	"os"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/i2y/intakeq-mcp/internal/adapter/inbound/mcptools"
	"github.com/i2y/intakeq-mcp/internal/adapter/outbound/intakeq"
	"github.com/i2y/intakeq-mcp/internal/adapter/outbound/registry"
	"github.com/i2y/intakeq-mcp/internal/domain"
	"github.com/i2y/intakeq-mcp/internal/usecase"
)

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, name string, args domain.Args, credential string) (any, error) {
	a := m.Called(ctx, name, args, credential)
	return a.Get(0), a.Error(1)
}

// MockServer records AddTool calls.
type MockServer struct {
	tools []mcp.Tool
}

func (s *MockServer) AddTool(tool mcp.Tool, _ server.ToolHandlerFunc) {
	s.tools = append(s.tools, tool)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newRegistry() *registry.Registry {
	return registry.New(intakeq.NewService(nil), testLogger())
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "first content is %T", res.Content[0])
	return tc.Text
}

func TestAdapter_ToolsMirrorDescriptors(t *testing.T) {
	reg := newRegistry()
	adapter := mcptools.New(&MockDispatcher{}, usecase.CredentialResolver{}, testLogger())
	srv := &MockServer{}

	n := usecase.NewRegisterToolsUseCase(reg, adapter, srv, testLogger()).Execute()
	require.Equal(t, len(reg.List()), n)
	require.Len(t, srv.tools, n)

	for i, d := range reg.List() {
		tool := srv.tools[i]
		assert.Equal(t, d.Name, tool.Name)
		assert.ElementsMatch(t, d.RequiredParams(), tool.InputSchema.Required, d.Name)
		assert.Contains(t, tool.InputSchema.Properties, mcptools.CredentialArg, d.Name)
		for _, p := range d.Params {
			assert.Contains(t, tool.InputSchema.Properties, p.Name, d.Name)
		}
		require.NotNil(t, tool.Annotations.ReadOnlyHint)
		assert.Equal(t, d.ReadOnly, *tool.Annotations.ReadOnlyHint, d.Name)
	}
}

func TestAdapter_StringEnumsAreDeclared(t *testing.T) {
	reg := newRegistry()
	adapter := mcptools.New(&MockDispatcher{}, usecase.CredentialResolver{}, testLogger())

	op, err := reg.Find("list_appointments")
	require.NoError(t, err)
	tool := adapter.Tool(op.Descriptor)

	status, ok := tool.InputSchema.Properties["status"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "string", status["type"])
	assert.ElementsMatch(t, []string{"Confirmed", "Canceled", "WaitingConfirmation", "Declined", "Missed"}, status["enum"])
}

func TestAdapter_IntegerEnumsAreDeclared(t *testing.T) {
	reg := newRegistry()
	adapter := mcptools.New(&MockDispatcher{}, usecase.CredentialResolver{}, testLogger())

	op, err := reg.Find("list_note_summaries")
	require.NoError(t, err)
	tool := adapter.Tool(op.Descriptor)

	status, ok := tool.InputSchema.Properties["status"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "number", status["type"])
	assert.Equal(t, []any{int64(1), int64(2)}, status["enum"])
}

func TestAdapter_OpenBodyIsDescribed(t *testing.T) {
	reg := newRegistry()
	adapter := mcptools.New(&MockDispatcher{}, usecase.CredentialResolver{}, testLogger())

	op, err := reg.Find("update_appointment")
	require.NoError(t, err)
	assert.True(t, op.Descriptor.OpenBody)
	assert.Contains(t, adapter.Tool(op.Descriptor).Description, "additional fields")
}

func TestAdapter_NonStringCredentialIsRejected(t *testing.T) {
	for _, key := range []any{12345, map[string]any{"k": "v"}, []any{"a"}, true} {
		disp := new(MockDispatcher)
		adapter := mcptools.New(disp, usecase.CredentialResolver{Default: "default"}, testLogger())

		res, err := adapter.Handler(domain.OperationDescriptor{Name: "list_clients"})(
			context.Background(), callRequest("list_clients", map[string]any{"api_key": key}))

		require.NoError(t, err)
		require.NotNil(t, res)
		assert.True(t, res.IsError)
		assert.Contains(t, textOf(t, res), `InvalidArgument: invalid value for argument "api_key"`)
		disp.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestAdapter_Handler(t *testing.T) {
	ctx := context.Background()
	desc := domain.OperationDescriptor{Name: "get_note"}

	tests := []struct {
		name      string
		args      map[string]any
		ctx       context.Context
		def       string
		wantCred  string
		result    any
		err       error
		wantError bool
		check     func(t *testing.T, res *mcp.CallToolResult)
	}{
		{
			name:     "per-call key is used and stripped from the bag",
			args:     map[string]any{"id": "1", "api_key": "per-call"},
			ctx:      ctx,
			def:      "default",
			wantCred: "per-call",
			result:   map[string]any{"Id": "1"},
			check: func(t *testing.T, res *mcp.CallToolResult) {
				assert.JSONEq(t, `{"Id":"1"}`, textOf(t, res))
			},
		},
		{
			name:     "header credential from context",
			args:     map[string]any{"id": "1"},
			ctx:      usecase.WithCredential(ctx, "header-key"),
			def:      "default",
			wantCred: "header-key",
			result:   []any{},
			check: func(t *testing.T, res *mcp.CallToolResult) {
				assert.JSONEq(t, `[]`, textOf(t, res))
			},
		},
		{
			name:     "configured key as fallback",
			args:     map[string]any{"id": "1"},
			ctx:      ctx,
			def:      "default",
			wantCred: "default",
			result:   intakeq.Acknowledgement{Success: true, Message: "Tag added successfully"},
			check: func(t *testing.T, res *mcp.CallToolResult) {
				assert.JSONEq(t, `{"success":true,"message":"Tag added successfully"}`, textOf(t, res))
			},
		},
		{
			name:     "raw bytes become a blob resource",
			args:     map[string]any{"id": "99"},
			ctx:      ctx,
			def:      "default",
			wantCred: "default",
			result:   []byte("%PDF\x00"),
			check: func(t *testing.T, res *mcp.CallToolResult) {
				require.Len(t, res.Content, 2)
				er, ok := res.Content[1].(mcp.EmbeddedResource)
				require.True(t, ok, "second content is %T", res.Content[1])
				blob, ok := er.Resource.(mcp.BlobResourceContents)
				require.True(t, ok)
				assert.Equal(t, "application/pdf", blob.MIMEType)
				assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("%PDF\x00")), blob.Blob)
			},
		},
		{
			name:      "failures are error results with the kind",
			args:      map[string]any{"id": "x"},
			ctx:       ctx,
			def:       "default",
			wantCred:  "default",
			err:       domain.UpstreamError(404, "not found"),
			wantError: true,
			check: func(t *testing.T, res *mcp.CallToolResult) {
				assert.Equal(t, "UpstreamError: IntakeQ API returned HTTP 404: not found", textOf(t, res))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			disp := new(MockDispatcher)
			wantArgs := domain.Args(tt.args).Without(mcptools.CredentialArg)
			disp.On("Dispatch", mock.Anything, "get_note", wantArgs, tt.wantCred).Return(tt.result, tt.err).Once()

			adapter := mcptools.New(disp, usecase.CredentialResolver{Default: tt.def}, testLogger())
			res, err := adapter.Handler(desc)(tt.ctx, callRequest("get_note", tt.args))

			require.NoError(t, err)
			require.NotNil(t, res)
			assert.Equal(t, tt.wantError, res.IsError)
			tt.check(t, res)
			disp.AssertExpectations(t)
		})
	}
}
