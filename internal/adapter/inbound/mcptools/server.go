package mcptools

import (
	"context"
	"net/http"

	"github.com/mark3labs/mcp-go/server"

	"github.com/i2y/intakeq-mcp/internal/usecase"
)

const instructions = `Tools for the IntakeQ practice-management API: appointments, clients, invoices, treatment notes and intake questionnaires.
Every tool accepts an optional api_key argument; without it the server's configured IntakeQ key is used.
List tools return one page (up to 100 records); pass page to fetch more.`

// NewServer creates the mcp-go server the tools are registered on.
func NewServer(name, version string) *server.MCPServer {
	return server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)
}

// HeaderCredential copies the X-Auth-Key request header into the call
// context, for the SSE and streamable HTTP transports.
func HeaderCredential(ctx context.Context, r *http.Request) context.Context {
	return usecase.WithCredential(ctx, r.Header.Get("X-Auth-Key"))
}
