package webapi

import (
	"fmt"
	"io"
	"net/http"

	"github.com/i2y/intakeq-mcp/internal/codec"
	"github.com/i2y/intakeq-mcp/internal/domain"
)

const maxBodyBytes = 1 << 20

// binder turns a request into an argument bag. Path wildcards always win over
// query or body values of the same name.
type binder func(r *http.Request) (domain.Args, error)

func fromQuery(r *http.Request) (domain.Args, error) {
	args := domain.Args{}
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			args[k] = v[0]
		}
	}
	return args, nil
}

func fromBody(r *http.Request) (domain.Args, error) {
	v, err := readBody(r)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return domain.Args{}, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, domain.InvalidArgument("body", fmt.Errorf("expected a JSON object"))
	}
	return domain.Args(obj), nil
}

// bodyAs puts the whole JSON body under one argument name.
func bodyAs(name string) binder {
	return func(r *http.Request) (domain.Args, error) {
		v, err := readBody(r)
		if err != nil {
			return nil, err
		}
		return domain.Args{name: v}, nil
	}
}

// cancellationBody accepts the id and reason under the spellings voice
// agents tend to send.
func cancellationBody(r *http.Request) (domain.Args, error) {
	body, err := fromBody(r)
	if err != nil {
		return nil, err
	}
	args := domain.Args{}
	for _, k := range []string{"appointmentId", "appointment_id", "AppointmentId"} {
		if body.Has(k) {
			args["appointmentId"] = body[k]
			break
		}
	}
	for _, k := range []string{"reason", "Reason"} {
		if body.Has(k) {
			args["reason"] = body[k]
			break
		}
	}
	return args, nil
}

func readBody(r *http.Request) (any, error) {
	if r.Body == nil {
		return nil, nil
	}
	data, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err != nil {
		return nil, domain.InvalidArgument("body", err)
	}
	v, err := codec.DecodeValue(data)
	if err != nil {
		return nil, domain.InvalidArgument("body", fmt.Errorf("malformed JSON: %w", err))
	}
	return v, nil
}

func withPathValues(r *http.Request, rt route, args domain.Args) domain.Args {
	for _, name := range rt.wildcards() {
		if v := r.PathValue(name); v != "" {
			args[name] = v
		}
	}
	return args
}
