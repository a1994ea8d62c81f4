package usecase

import (
	"log/slog"

	"github.com/i2y/intakeq-mcp/internal/domain"
)

// ListOperationsUseCase lists the operations, optionally for one resource.
type ListOperationsUseCase struct {
	registry OperationRegistry
	logger   *slog.Logger
}

// NewListOperationsUseCase creates a new ListOperationsUseCase.
func NewListOperationsUseCase(registry OperationRegistry, logger *slog.Logger) *ListOperationsUseCase {
	return &ListOperationsUseCase{
		registry: registry,
		logger:   logger.With("usecase", "ListOperations"),
	}
}

// Execute returns the descriptors of resource, or all of them when resource
// is empty.
func (uc *ListOperationsUseCase) Execute(resource string) []domain.OperationDescriptor {
	all := uc.registry.List()
	if resource == "" {
		return all
	}
	out := make([]domain.OperationDescriptor, 0, len(all))
	for _, d := range all {
		if d.Resource == resource {
			out = append(out, d)
		}
	}
	uc.logger.Debug("Listed operations", slog.String("resource", resource), slog.Int("count", len(out)))
	return out
}
