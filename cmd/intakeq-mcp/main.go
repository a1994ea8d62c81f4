package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	mcpGoServer "github.com/mark3labs/mcp-go/server"
	flag "github.com/spf13/pflag"

	"github.com/i2y/intakeq-mcp/configs"
	"github.com/i2y/intakeq-mcp/internal/app"
	"github.com/i2y/intakeq-mcp/internal/telemetry"
)

func main() {
	// === Command Line Flags ===
	var transport, addr string
	flag.StringVarP(&transport, "transport", "t", "stdio", "Transport mode: stdio, sse or http")
	flag.StringVar(&addr, "addr", "", "Listen address for sse and http (default HOST:PORT)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === Configuration ===
	cfg, err := configs.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if addr == "" {
		addr = cfg.ListenAddr()
	}

	// === Logging ===
	// In stdio mode stdout carries the protocol, so logs go to a file.
	var out io.Writer = os.Stderr
	if transport == "stdio" {
		var closeLog func()
		out, closeLog = app.OpenLogFile(cfg)
		defer closeLog()
	}
	logger := app.NewLogger(cfg, out)
	slog.SetDefault(logger)
	logger.Info("Logger initialized.", slog.String("level", cfg.ParsedLogLevel().String()), slog.String("transport", transport))

	// === OpenTelemetry Initialization ===
	shutdownOtel, err := telemetry.InitTracing(ctx, telemetry.OtelConfig{
		Endpoint:       cfg.OtelExporterOtlpEndpoint,
		Insecure:       cfg.OtelExporterOtlpInsecure,
		ServiceName:    cfg.ServerName,
		ServiceVersion: cfg.ServerVersion,
	}, logger)
	if err != nil {
		logger.Error("Failed to initialize OpenTelemetry.", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := shutdownOtel(context.Background()); err != nil {
			logger.Error("Failed to shutdown OpenTelemetry TracerProvider.", slog.Any("error", err))
		}
	}()

	// === Dependency Injection ===
	a := app.New(cfg, logger)
	a.LogWarnings()
	logger.Info("MCP server initialized.", slog.String("name", cfg.ServerName), slog.Int("tools", a.Tools))

	// === Transport Mode Selection ===
	switch transport {
	case "stdio":
		logger.Info("Starting in STDIO mode")
		stdioServer := mcpGoServer.NewStdioServer(a.MCPServer)
		if err := stdioServer.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("STDIO server error", slog.Any("error", err))
			os.Exit(1)
		}

	case "sse":
		logger.Info("Starting in SSE mode", slog.String("address", addr))
		sseServer := mcpGoServer.NewSSEServer(a.MCPServer,
			mcpGoServer.WithBaseURL("http://"+addr),
			mcpGoServer.WithSSEContextFunc(a.HTTPContextFunc()),
		)
		if err := a.Serve(ctx, a.HTTPServer(addr, sseServer)); err != nil {
			logger.Error("MCP SSE server failed.", slog.Any("error", err))
			os.Exit(1)
		}

	case "http":
		logger.Info("Starting in streamable HTTP mode", slog.String("address", addr))
		mux := http.NewServeMux()
		mux.Handle("/mcp", a.StreamableHTTP())
		mux.Handle("GET /metrics", a.Metrics.Handler())
		if err := a.Serve(ctx, a.HTTPServer(addr, mux)); err != nil {
			logger.Error("MCP HTTP server failed.", slog.Any("error", err))
			os.Exit(1)
		}

	default:
		logger.Error("Invalid transport mode", slog.String("transport", transport))
		os.Exit(1)
	}
}
