package intakeq

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// query collects upstream query parameters, skipping absent values.
type query map[string]string

func (q query) str(key, v string) {
	if v != "" {
		q[key] = v
	}
}

func (q query) int(key string, v *int64) {
	if v != nil {
		q[key] = strconv.FormatInt(*v, 10)
	}
}

func (q query) bool(key string, v *bool) {
	if v != nil {
		q[key] = strconv.FormatBool(*v)
	}
}

// Acknowledgement is the fixed result of operations whose upstream response
// carries nothing useful.
type Acknowledgement struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func ack(msg string) Acknowledgement {
	return Acknowledgement{Success: true, Message: msg}
}

// pathf substitutes escaped values into a {name} path template.
func pathf(template string, values ...string) string {
	out := template
	for _, v := range values {
		start := strings.IndexByte(out, '{')
		end := strings.IndexByte(out, '}')
		if start < 0 || end < start {
			break
		}
		out = out[:start] + url.PathEscape(v) + out[end+1:]
	}
	return out
}

// resource is embedded by every handler.
type resource struct {
	api Invoker
}

func (r resource) json(ctx context.Context, req Request) (any, error) {
	res, err := r.api.Invoke(ctx, req)
	if err != nil {
		return nil, err
	}
	return res.Payload, nil
}

func (r resource) raw(ctx context.Context, req Request) ([]byte, error) {
	req.Raw = true
	res, err := r.api.Invoke(ctx, req)
	if err != nil {
		return nil, err
	}
	return res.Raw, nil
}

func (r resource) ack(ctx context.Context, req Request, msg string) (any, error) {
	if _, err := r.api.Invoke(ctx, req); err != nil {
		return nil, err
	}
	return ack(msg), nil
}
