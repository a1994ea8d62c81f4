package mcptools

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/i2y/intakeq-mcp/internal/codec"
	"github.com/i2y/intakeq-mcp/internal/domain"
	"github.com/i2y/intakeq-mcp/internal/usecase"
)

// Dispatcher runs one operation.
type Dispatcher interface {
	Dispatch(ctx context.Context, name string, args domain.Args, credential string) (any, error)
}

// Adapter builds tools and their handlers on top of a Dispatcher.
type Adapter struct {
	dispatcher  Dispatcher
	credentials usecase.CredentialResolver
	pageSize    int
	logger      *slog.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithPageSize states the upstream page size in the page argument description.
func WithPageSize(n int) Option {
	return func(a *Adapter) { a.pageSize = n }
}

// New creates an Adapter. credentials supplies the fallback API key.
func New(dispatcher Dispatcher, credentials usecase.CredentialResolver, logger *slog.Logger, opts ...Option) *Adapter {
	a := &Adapter{
		dispatcher:  dispatcher,
		credentials: credentials,
		logger:      logger.With("component", "mcp_tools"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Handler returns the mcp-go handler for d. Failures are reported as
// error-flagged tool results, never as protocol errors.
func (a *Adapter) Handler(d domain.OperationDescriptor) server.ToolHandlerFunc {
	name := d.Name
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := domain.Args(req.GetArguments())
		perCall, err := credentialOf(args)
		if err != nil {
			a.logger.Debug("Rejected tool call", slog.String("tool_name", name), slog.Any("error", err))
			return failure(err), nil
		}
		credential := a.credentials.Resolve(ctx, perCall)

		a.logger.Debug("Tool called", slog.String("tool_name", name), slog.Int("arg_count", len(args)))
		result, err := a.dispatcher.Dispatch(ctx, name, args.Without(CredentialArg), credential)
		if err != nil {
			return failure(err), nil
		}
		return a.frame(name, result)
	}
}

// credentialOf returns the per-call key. Only a JSON string is accepted.
func credentialOf(args domain.Args) (string, error) {
	if !args.Has(CredentialArg) {
		return "", nil
	}
	key, ok := args[CredentialArg].(string)
	if !ok {
		return "", domain.InvalidArgument(CredentialArg, fmt.Errorf("expected a string, got %T", args[CredentialArg]))
	}
	return key, nil
}

func failure(err error) *mcp.CallToolResult {
	de := domain.AsError(err)
	return mcp.NewToolResultError(fmt.Sprintf("%s: %s", de.Kind, de.Message()))
}

func (a *Adapter) frame(name string, result any) (*mcp.CallToolResult, error) {
	if raw, ok := result.([]byte); ok {
		return mcp.NewToolResultResource(
			fmt.Sprintf("%s returned a PDF document (%d bytes).", name, len(raw)),
			mcp.BlobResourceContents{
				URI:      "intakeq://" + name,
				MIMEType: "application/pdf",
				Blob:     base64.StdEncoding.EncodeToString(raw),
			},
		), nil
	}
	text, err := codec.MarshalIndent(result, "", "  ")
	if err != nil {
		a.logger.Error("Failed to encode tool result", slog.String("tool_name", name), slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("%s: failed to encode result: %v", domain.KindInternalError, err)), nil
	}
	return mcp.NewToolResultText(string(text)), nil
}
