// Package app wires the configuration into the components shared by the
// binaries.
package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/i2y/intakeq-mcp/configs"
	"github.com/i2y/intakeq-mcp/internal/adapter/inbound/mcptools"
	"github.com/i2y/intakeq-mcp/internal/adapter/inbound/webapi"
	"github.com/i2y/intakeq-mcp/internal/adapter/outbound/intakeq"
	"github.com/i2y/intakeq-mcp/internal/adapter/outbound/registry"
	"github.com/i2y/intakeq-mcp/internal/telemetry"
	"github.com/i2y/intakeq-mcp/internal/usecase"
)

// App holds the long-lived components built from one Config.
type App struct {
	Config         *configs.Config
	Logger         *slog.Logger
	Metrics        *telemetry.Metrics
	Registry       *registry.Registry
	Dispatcher     *usecase.Dispatcher
	ListOperations *usecase.ListOperationsUseCase
	MCPServer      *server.MCPServer
	Tools          int
}

// New builds the upstream client, the registry, the dispatcher and the MCP
// server with every tool registered.
func New(cfg *configs.Config, logger *slog.Logger) *App {
	metrics := telemetry.NewMetrics()
	client := intakeq.NewClient(
		cfg.BaseURL,
		&http.Client{Timeout: cfg.APITimeout.Duration()},
		logger,
		intakeq.WithUserAgent(cfg.ServerName+"/"+cfg.ServerVersion),
		intakeq.WithObserver(metrics),
	)
	reg := registry.New(intakeq.NewService(client), logger)
	dispatcher := usecase.NewDispatcher(reg, logger, usecase.WithObserver(metrics))

	mcpSrv := mcptools.NewServer(cfg.ServerName, cfg.ServerVersion)
	tools := mcptools.New(dispatcher, usecase.CredentialResolver{Default: cfg.APIKey}, logger,
		mcptools.WithPageSize(cfg.DefaultPageSize))
	n := usecase.NewRegisterToolsUseCase(reg, tools, mcpSrv, logger).Execute()

	return &App{
		Config:         cfg,
		Logger:         logger,
		Metrics:        metrics,
		Registry:       reg,
		Dispatcher:     dispatcher,
		ListOperations: usecase.NewListOperationsUseCase(reg, logger),
		MCPServer:      mcpSrv,
		Tools:          n,
	}
}

// NewLogger creates the text logger at the configured level.
func NewLogger(cfg *configs.Config, w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.ParsedLogLevel()}))
}

// OpenLogFile opens the log file used while stdout carries the stdio
// protocol. It falls back to discarding logs when the file cannot be opened.
func OpenLogFile(cfg *configs.Config) (io.Writer, func()) {
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return io.Discard, func() {}
	}
	return f, func() { _ = f.Close() }
}

// HTTPContextFunc returns the request-to-context hook for the MCP HTTP
// transports: in header mode the X-Auth-Key header supplies the credential.
func (a *App) HTTPContextFunc() func(ctx context.Context, r *http.Request) context.Context {
	if a.Config.AuthMode == configs.AuthModeHeader {
		return mcptools.HeaderCredential
	}
	return func(ctx context.Context, _ *http.Request) context.Context { return ctx }
}

// StreamableHTTP returns the streamable MCP transport served at /mcp.
func (a *App) StreamableHTTP() *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(a.MCPServer,
		server.WithEndpointPath("/mcp"),
		server.WithHTTPContextFunc(a.HTTPContextFunc()),
	)
}

// WebHandlers builds the REST facade. mcp is mounted at /mcp when non-nil.
func (a *App) WebHandlers(mcp http.Handler) (*webapi.Handlers, error) {
	cfg := a.Config
	return webapi.NewHandlers(a.Dispatcher, a.Registry, a.ListOperations, webapi.Options{
		ServerName:        cfg.ServerName,
		ServerVersion:     cfg.ServerVersion,
		AuthMode:          webapi.AuthMode(cfg.AuthMode),
		BearerToken:       cfg.BearerToken,
		DefaultCredential: cfg.APIKey,
		AllowedOrigins:    cfg.AllowedOrigins,
		RateLimit:         cfg.RateLimitRequests,
		RatePeriod:        cfg.RateLimitPeriod.Duration(),
		MCPHandler:        mcp,
		Metrics:           a.Metrics,
	}, a.Logger)
}

// HTTPServer wraps handler with the configured address and timeouts.
func (a *App) HTTPServer(addr string, handler http.Handler) *http.Server {
	cfg := a.Config
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       cfg.ServerReadTimeout,
		ReadHeaderTimeout: cfg.ServerReadTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}
}

// Serve runs srv until ctx is done, then shuts it down gracefully.
func (a *App) Serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("HTTP server starting.", slog.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.Logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	a.Logger.Info("Server gracefully stopped")
	return nil
}

func (a *App) shutdownTimeout() time.Duration {
	if a.Config.ShutdownTimeout > 0 {
		return a.Config.ShutdownTimeout
	}
	return 5 * time.Second
}

// LogWarnings reports configuration problems that do not stop startup.
func (a *App) LogWarnings() {
	for _, w := range a.Config.Warnings() {
		a.Logger.Warn(w)
	}
}
