package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/i2y/intakeq-mcp/configs"
	"github.com/i2y/intakeq-mcp/internal/app"
	"github.com/i2y/intakeq-mcp/internal/telemetry"
)

func main() {
	var addr string
	var withMCP bool
	flag.StringVar(&addr, "addr", "", "Listen address (default HOST:PORT)")
	flag.BoolVar(&withMCP, "mcp", true, "Mount the streamable MCP endpoint at /mcp")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := configs.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if addr == "" {
		addr = cfg.ListenAddr()
	}

	logger := app.NewLogger(cfg, os.Stderr)
	slog.SetDefault(logger)

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

	a := app.New(cfg, logger)
	a.LogWarnings()

	var mcpHandler http.Handler
	if withMCP {
		mcpHandler = a.StreamableHTTP()
	}
	handlers, err := a.WebHandlers(mcpHandler)
	if err != nil {
		logger.Error("Failed to build HTTP handlers.", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("HTTP facade initialized.", slog.String("facade", handlers.String()), slog.Int("tools", a.Tools))

	if err := a.Serve(ctx, a.HTTPServer(addr, handlers.Handler())); err != nil {
		logger.Error("HTTP server failed.", slog.Any("error", err))
		os.Exit(1)
	}
}
