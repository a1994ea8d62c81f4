package domain

import (
	"context"
	"strconv"
)

// ParamType is the declared type of an operation argument.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeInteger ParamType = "integer"
	TypeBoolean ParamType = "boolean"
	TypeObject  ParamType = "object"
)

// Location says where an argument ends up in the upstream request.
type Location string

const (
	InQuery Location = "query"
	InPath  Location = "path"
	InBody  Location = "body"
	// AsBody means the argument value itself is the whole request body.
	AsBody Location = "bodyObject"
)

// ResponseKind describes what a successful operation returns.
type ResponseKind string

const (
	ResponseJSON ResponseKind = "json"
	ResponseRaw  ResponseKind = "raw"
	// ResponseAck is a fixed acknowledgement built locally after a 2xx.
	ResponseAck ResponseKind = "ack"
)

// Param describes one argument of an operation.
type Param struct {
	Name        string
	Wire        string // upstream field or query name; defaults to Name
	Type        ParamType
	Required    bool
	In          Location
	Description string
	Enum        []string
}

// WireName returns the upstream name for the parameter.
func (p Param) WireName() string {
	if p.Wire != "" {
		return p.Wire
	}
	return p.Name
}

// EnumValues returns Enum typed for the parameter: int64 values for an
// integer param, strings otherwise. An integer entry that does not parse is
// skipped.
func (p Param) EnumValues() []any {
	if len(p.Enum) == 0 {
		return nil
	}
	out := make([]any, 0, len(p.Enum))
	for _, e := range p.Enum {
		if p.Type != TypeInteger {
			out = append(out, e)
			continue
		}
		if n, err := strconv.ParseInt(e, 10, 64); err == nil {
			out = append(out, n)
		}
	}
	return out
}

// OperationDescriptor is the static, immutable description of one upstream
// operation.
type OperationDescriptor struct {
	Name        string
	Resource    string
	Summary     string
	Method      string
	Path        string
	Params      []Param
	Success     []int
	Response    ResponseKind
	ReadOnly    bool
	Destructive bool
	// OpenBody means body arguments no Param declares are forwarded upstream
	// as extra fields of the request object.
	OpenBody bool
}

// RequiredParams returns the names of all required parameters, in
// declaration order.
func (d OperationDescriptor) RequiredParams() []string {
	var names []string
	for _, p := range d.Params {
		if p.Required {
			names = append(names, p.Name)
		}
	}
	return names
}

// InvokeFunc decodes the argument bag into typed arguments and calls the
// handler. The credential is already resolved and non-empty.
type InvokeFunc func(ctx context.Context, credential string, args Args) (any, error)

// Operation binds a descriptor to its handler.
type Operation struct {
	Descriptor OperationDescriptor
	Invoke     InvokeFunc
}
