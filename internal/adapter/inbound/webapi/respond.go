package webapi

import (
	"log/slog"
	"net/http"

	"github.com/i2y/intakeq-mcp/internal/codec"
	"github.com/i2y/intakeq-mcp/internal/domain"
)

// ErrorDetail is the JSON shape of every failure response.
type ErrorDetail struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`
	Operation string `json:"operation,omitempty"`
	Status    int    `json:"status,omitempty"`
	Body      string `json:"body,omitempty"`
}

type errorResponse struct {
	Error ErrorDetail `json:"error"`
}

// StatusFor maps an error kind onto an HTTP status.
func StatusFor(e *domain.Error) int {
	switch e.Kind {
	case domain.KindMissingCredential:
		return http.StatusUnauthorized
	case domain.KindMissingArgument, domain.KindInvalidArgument:
		return http.StatusBadRequest
	case domain.KindUnknownOperation:
		return http.StatusNotFound
	case domain.KindUpstreamError:
		if e.StatusCode >= 400 && e.StatusCode < 500 {
			return e.StatusCode
		}
		return http.StatusBadGateway
	case domain.KindUpstreamUnavailable:
		if e.Timeout {
			return http.StatusGatewayTimeout
		}
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := codec.Marshal(v)
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	de := domain.AsError(err)
	status := StatusFor(de)
	h.logger.Warn("Request failed",
		slog.String("path", r.URL.Path),
		slog.String("request_id", requestID(r.Context())),
		slog.Int("status", status),
		slog.String("kind", string(de.Kind)),
	)
	writeJSON(w, status, errorResponse{Error: ErrorDetail{
		Kind:      string(de.Kind),
		Message:   de.Message(),
		Field:     de.Field,
		Operation: de.Op,
		Status:    de.StatusCode,
		Body:      de.Body,
	}})
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeJSON(w, http.StatusUnauthorized, errorResponse{Error: ErrorDetail{Kind: "Unauthorized", Message: message}})
}

func writeResult(w http.ResponseWriter, operation string, result any) {
	if raw, ok := result.([]byte); ok {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `inline; filename="`+operation+`.pdf"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(raw)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
