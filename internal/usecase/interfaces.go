package usecase

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpGoServer "github.com/mark3labs/mcp-go/server"

	"github.com/i2y/intakeq-mcp/internal/domain"
)

// OperationRegistry is the static operation table.
type OperationRegistry interface {
	// Find returns the named operation or an UnknownOperation error.
	Find(name string) (*domain.Operation, error)
	// List returns every descriptor, ordered by resource then name.
	List() []domain.OperationDescriptor
}

// --- MCP Server Abstraction ---

// MCPServerAdapter is the part of the mcp-go server used to register tools.
type MCPServerAdapter interface {
	AddTool(tool mcp.Tool, handlerFunc mcpGoServer.ToolHandlerFunc)
}

// ToolFactory turns an operation descriptor into an MCP tool and its handler.
type ToolFactory interface {
	Tool(d domain.OperationDescriptor) mcp.Tool
	Handler(d domain.OperationDescriptor) mcpGoServer.ToolHandlerFunc
}

// DispatchObserver counts dispatch outcomes. outcome is "ok" or an error kind.
type DispatchObserver interface {
	ObserveDispatch(operation, outcome string)
}
