package usecase

import (
	"log/slog"
)

// RegisterToolsUseCase publishes every registry operation as an MCP tool.
type RegisterToolsUseCase struct {
	registry OperationRegistry
	factory  ToolFactory
	server   MCPServerAdapter
	logger   *slog.Logger
}

// NewRegisterToolsUseCase creates a new RegisterToolsUseCase.
func NewRegisterToolsUseCase(registry OperationRegistry, factory ToolFactory, server MCPServerAdapter, logger *slog.Logger) *RegisterToolsUseCase {
	return &RegisterToolsUseCase{
		registry: registry,
		factory:  factory,
		server:   server,
		logger:   logger.With("usecase", "RegisterTools"),
	}
}

// Execute registers one tool per operation and returns how many were added.
func (uc *RegisterToolsUseCase) Execute() int {
	ops := uc.registry.List()
	for _, d := range ops {
		uc.server.AddTool(uc.factory.Tool(d), uc.factory.Handler(d))
		uc.logger.Debug("Registered tool", slog.String("tool_name", d.Name))
	}
	uc.logger.Info("Registered MCP tools", slog.Int("count", len(ops)))
	return len(ops)
}
