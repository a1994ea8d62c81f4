package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/i2y/intakeq-mcp/internal/domain"
)

// Dispatcher is the single entry point shared by all transports: it checks
// the credential, resolves the operation, validates required arguments and
// normalizes every failure into a *domain.Error.
type Dispatcher struct {
	registry OperationRegistry
	observer DispatchObserver
	tracer   trace.Tracer
	logger   *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithObserver counts every dispatch on o.
func WithObserver(o DispatchObserver) DispatcherOption {
	return func(d *Dispatcher) { d.observer = o }
}

// NewDispatcher creates a Dispatcher over registry.
func NewDispatcher(registry OperationRegistry, logger *slog.Logger, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		tracer:   otel.Tracer("github.com/i2y/intakeq-mcp/internal/usecase"),
		logger:   logger.With("usecase", "Dispatch"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch runs the named operation. The result is passed through unchanged:
// decoded JSON, raw bytes for PDF operations, or an acknowledgement. Every
// error returned is a *domain.Error.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args domain.Args, credential string) (result any, err error) {
	log := d.logger.With(slog.String("operation", name))
	start := time.Now()
	ctx, span := d.tracer.Start(ctx, "dispatch "+name,
		trace.WithAttributes(attribute.String("intakeq.operation", name)))

	defer func() {
		if r := recover(); r != nil {
			log.Error("Operation panicked", slog.Any("panic", r))
			result, err = nil, domain.InternalError(fmt.Errorf("panic: %v", r))
		}
		if err != nil {
			de := *domain.AsError(err)
			if de.Op == "" {
				de.Op = name
			}
			err = &de
		}
		d.record(span, log, name, err, time.Since(start))
		span.End()
	}()

	// 1. Credential before anything else.
	if credential == "" {
		return nil, domain.MissingCredential()
	}

	// 2. Resolve.
	op, err := d.registry.Find(name)
	if err != nil {
		return nil, err
	}

	// 3. Required arguments.
	for _, p := range op.Descriptor.Params {
		if p.Required && !args.Has(p.Name) {
			return nil, domain.MissingArgument(p.Name)
		}
	}

	// 4. Call.
	return op.Invoke(ctx, credential, args)
}

func (d *Dispatcher) record(span trace.Span, log *slog.Logger, name string, err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = string(domain.KindOf(err))
	}
	span.SetAttributes(attribute.String("intakeq.outcome", outcome))
	if d.observer != nil {
		label := name
		if outcome == string(domain.KindUnknownOperation) {
			label = "unknown" // caller-chosen names stay out of the label set
		}
		d.observer.ObserveDispatch(label, outcome)
	}
	if err != nil {
		span.SetStatus(codes.Error, outcome)
		log.Warn("Operation failed", slog.String("outcome", outcome), slog.Duration("elapsed", elapsed), slog.Any("error", err))
		return
	}
	log.Info("Operation completed", slog.Duration("elapsed", elapsed))
}
