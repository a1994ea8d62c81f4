package usecase_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/i2y/intakeq-mcp/internal/domain"
	"github.com/i2y/intakeq-mcp/internal/usecase"
)

// MockOperationRegistry is a mock implementation of usecase.OperationRegistry.
type MockOperationRegistry struct {
	mock.Mock
}

func (m *MockOperationRegistry) Find(name string) (*domain.Operation, error) {
	args := m.Called(name)
	result := args.Get(0)
	if result == nil {
		return nil, args.Error(1)
	}
	return result.(*domain.Operation), args.Error(1)
}

func (m *MockOperationRegistry) List() []domain.OperationDescriptor {
	args := m.Called()
	result := args.Get(0)
	if result == nil {
		return nil
	}
	return result.([]domain.OperationDescriptor)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestDispatcher_Dispatch(t *testing.T) {
	ctx := context.Background()

	var invoked int
	op := &domain.Operation{
		Descriptor: domain.OperationDescriptor{
			Name: "get_thing",
			Params: []domain.Param{
				{Name: "id", Required: true, Type: domain.TypeString},
				{Name: "flag", Type: domain.TypeBoolean},
			},
		},
		Invoke: func(_ context.Context, key string, args domain.Args) (any, error) {
			invoked++
			if args["id"] == "boom" {
				panic("kaboom")
			}
			if args["id"] == "plain" {
				return nil, errors.New("plain failure")
			}
			if args["id"] == "404" {
				return nil, domain.UpstreamError(404, "not found")
			}
			return map[string]any{"key": key, "id": args["id"]}, nil
		},
	}

	tests := []struct {
		name        string
		mockSetup   func(*MockOperationRegistry)
		operation   string
		args        domain.Args
		credential  string
		wantResult  any
		wantKind    domain.Kind
		wantField   string
		wantInvoked int
	}{
		{
			name: "Success - passes result through",
			mockSetup: func(r *MockOperationRegistry) {
				r.On("Find", "get_thing").Return(op, nil).Once()
			},
			operation:   "get_thing",
			args:        domain.Args{"id": "1"},
			credential:  "key",
			wantResult:  map[string]any{"key": "key", "id": "1"},
			wantInvoked: 1,
		},
		{
			name:       "Missing credential is checked before lookup",
			mockSetup:  func(r *MockOperationRegistry) {},
			operation:  "not_even_real",
			args:       domain.Args{"id": "1"},
			credential: "",
			wantKind:   domain.KindMissingCredential,
		},
		{
			name: "Unknown operation",
			mockSetup: func(r *MockOperationRegistry) {
				r.On("Find", "nope").Return(nil, domain.UnknownOperation("nope")).Once()
			},
			operation:  "nope",
			credential: "key",
			wantKind:   domain.KindUnknownOperation,
		},
		{
			name: "Missing required argument",
			mockSetup: func(r *MockOperationRegistry) {
				r.On("Find", "get_thing").Return(op, nil).Once()
			},
			operation:  "get_thing",
			args:       domain.Args{"flag": true},
			credential: "key",
			wantKind:   domain.KindMissingArgument,
			wantField:  "id",
		},
		{
			name: "Empty string counts as missing",
			mockSetup: func(r *MockOperationRegistry) {
				r.On("Find", "get_thing").Return(op, nil).Once()
			},
			operation:  "get_thing",
			args:       domain.Args{"id": ""},
			credential: "key",
			wantKind:   domain.KindMissingArgument,
			wantField:  "id",
		},
		{
			name: "Classified errors keep their kind",
			mockSetup: func(r *MockOperationRegistry) {
				r.On("Find", "get_thing").Return(op, nil).Once()
			},
			operation:   "get_thing",
			args:        domain.Args{"id": "404"},
			credential:  "key",
			wantKind:    domain.KindUpstreamError,
			wantInvoked: 1,
		},
		{
			name: "Unclassified errors become internal",
			mockSetup: func(r *MockOperationRegistry) {
				r.On("Find", "get_thing").Return(op, nil).Once()
			},
			operation:   "get_thing",
			args:        domain.Args{"id": "plain"},
			credential:  "key",
			wantKind:    domain.KindInternalError,
			wantInvoked: 1,
		},
		{
			name: "Panics are recovered",
			mockSetup: func(r *MockOperationRegistry) {
				r.On("Find", "get_thing").Return(op, nil).Once()
			},
			operation:   "get_thing",
			args:        domain.Args{"id": "boom"},
			credential:  "key",
			wantKind:    domain.KindInternalError,
			wantInvoked: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			invoked = 0
			reg := new(MockOperationRegistry)
			tt.mockSetup(reg)

			d := usecase.NewDispatcher(reg, testLogger())
			result, err := d.Dispatch(ctx, tt.operation, tt.args, tt.credential)

			assert.Equal(tt.wantInvoked, invoked)
			if tt.wantKind != "" {
				var de *domain.Error
				if assert.ErrorAs(err, &de) {
					assert.Equal(tt.wantKind, de.Kind)
					assert.Equal(tt.operation, de.Op)
					if tt.wantField != "" {
						assert.Equal(tt.wantField, de.Field)
					}
				}
				assert.Nil(result)
			} else {
				assert.NoError(err)
				assert.Equal(tt.wantResult, result)
			}
			reg.AssertExpectations(t)
		})
	}
}
