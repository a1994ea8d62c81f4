// Package registry holds the static table of IntakeQ operations.
package registry

import (
	"log/slog"
	"sort"

	"github.com/i2y/intakeq-mcp/internal/adapter/outbound/intakeq"
	"github.com/i2y/intakeq-mcp/internal/domain"
)

// Registry maps operation names to bound operations. It is immutable after
// New returns and safe for concurrent use without locking.
type Registry struct {
	ops    map[string]*domain.Operation
	sorted []*domain.Operation
	logger *slog.Logger
}

// New binds every operation to svc.
func New(svc *intakeq.Service, logger *slog.Logger) *Registry {
	logger = logger.With("component", "registry")
	table := operations(svc)

	r := &Registry{
		ops:    make(map[string]*domain.Operation, len(table)),
		sorted: make([]*domain.Operation, 0, len(table)),
		logger: logger,
	}
	for i := range table {
		op := &table[i]
		if _, dup := r.ops[op.Descriptor.Name]; dup {
			logger.Warn("Skipping duplicate operation", slog.String("operation", op.Descriptor.Name))
			continue
		}
		r.ops[op.Descriptor.Name] = op
		r.sorted = append(r.sorted, op)
	}
	sort.SliceStable(r.sorted, func(i, j int) bool {
		a, b := r.sorted[i].Descriptor, r.sorted[j].Descriptor
		if a.Resource != b.Resource {
			return a.Resource < b.Resource
		}
		return a.Name < b.Name
	})
	logger.Info("Operation registry built", slog.Int("count", len(r.sorted)))
	return r
}

// Find returns the operation called name, or an UnknownOperation error.
func (r *Registry) Find(name string) (*domain.Operation, error) {
	op, ok := r.ops[name]
	if !ok {
		r.logger.Debug("Operation not found", slog.String("operation", name))
		return nil, domain.UnknownOperation(name)
	}
	return op, nil
}

// List returns all descriptors ordered by resource, then name.
func (r *Registry) List() []domain.OperationDescriptor {
	out := make([]domain.OperationDescriptor, len(r.sorted))
	for i, op := range r.sorted {
		out[i] = op.Descriptor
	}
	return out
}
