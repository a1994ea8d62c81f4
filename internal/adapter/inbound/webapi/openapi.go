package webapi

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/i2y/intakeq-mcp/internal/codec"
	"github.com/i2y/intakeq-mcp/internal/domain"
)

// document holds the rendered OpenAPI description of the route table.
type document struct {
	json []byte
	yaml []byte
}

func schemaFor(t domain.ParamType) *openapi3.Schema {
	switch t {
	case domain.TypeInteger:
		return openapi3.NewIntegerSchema()
	case domain.TypeBoolean:
		return openapi3.NewBoolSchema()
	case domain.TypeObject:
		return openapi3.NewObjectSchema().WithAnyAdditionalProperties()
	}
	return openapi3.NewStringSchema()
}

func paramSchema(p domain.Param) *openapi3.Schema {
	s := schemaFor(p.Type)
	s.Description = p.Description
	if values := p.EnumValues(); len(values) > 0 {
		s = s.WithEnum(values...)
	}
	return s
}

func errorSchema() *openapi3.Schema {
	detail := openapi3.NewObjectSchema().
		WithProperty("kind", openapi3.NewStringSchema()).
		WithProperty("message", openapi3.NewStringSchema()).
		WithProperty("field", openapi3.NewStringSchema()).
		WithProperty("operation", openapi3.NewStringSchema()).
		WithProperty("status", openapi3.NewIntegerSchema()).
		WithProperty("body", openapi3.NewStringSchema())
	detail.Required = []string{"kind", "message"}
	s := openapi3.NewObjectSchema().WithProperty("error", detail)
	s.Required = []string{"error"}
	return s
}

func responses(d domain.OperationDescriptor) *openapi3.Responses {
	ok := openapi3.NewResponse().WithDescription("Successful response")
	if d.Response == domain.ResponseRaw {
		ok = ok.WithContent(openapi3.NewContentWithSchema(
			openapi3.NewStringSchema().WithFormat("binary"), []string{"application/pdf"}))
	} else {
		ok = ok.WithJSONSchema(openapi3.NewSchema())
	}
	resps := openapi3.NewResponses()
	resps.Set("200", &openapi3.ResponseRef{Value: ok})
	resps.Set("default", &openapi3.ResponseRef{Value: openapi3.NewResponse().
		WithDescription("Error").WithJSONSchema(errorSchema())})
	return resps
}

func operationFor(rt route, d domain.OperationDescriptor) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = d.Name
	op.Summary = d.Summary
	op.Tags = []string{d.Resource}
	op.Responses = responses(d)

	inPath := rt.wildcards()
	for _, name := range inPath {
		p := openapi3.NewPathParameter(name).WithSchema(openapi3.NewStringSchema())
		op.AddParameter(p)
	}

	var bodyParams []domain.Param
	for _, p := range d.Params {
		if slices.Contains(inPath, p.Name) {
			continue
		}
		if rt.method == http.MethodGet || rt.method == http.MethodDelete {
			qp := openapi3.NewQueryParameter(p.Name).WithSchema(paramSchema(p))
			qp.Required = p.Required
			qp.Description = p.Description
			op.AddParameter(qp)
			continue
		}
		bodyParams = append(bodyParams, p)
	}

	if len(bodyParams) > 0 {
		var body *openapi3.Schema
		if len(bodyParams) == 1 && bodyParams[0].In == domain.AsBody {
			body = paramSchema(bodyParams[0])
		} else {
			body = openapi3.NewObjectSchema()
			for _, p := range bodyParams {
				body = body.WithProperty(p.Name, paramSchema(p))
				if p.Required {
					body.Required = append(body.Required, p.Name)
				}
			}
			if d.OpenBody {
				body = body.WithAnyAdditionalProperties()
			}
		}
		op.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().
			WithJSONSchema(body).WithRequired(len(body.Required) > 0)}
	}
	return op
}

func plainOperation(id, summary string, public bool) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = id
	op.Summary = summary
	op.Tags = []string{"system"}
	resps := openapi3.NewResponses()
	resps.Set("200", &openapi3.ResponseRef{Value: openapi3.NewResponse().
		WithDescription("Successful response").WithJSONSchema(openapi3.NewObjectSchema())})
	resps.Set("default", &openapi3.ResponseRef{Value: openapi3.NewResponse().
		WithDescription("Error").WithJSONSchema(errorSchema())})
	op.Responses = resps
	if public {
		op.Security = &openapi3.SecurityRequirements{}
	}
	return op
}

func addOperation(doc *openapi3.T, method, path string, op *openapi3.Operation) {
	item := doc.Paths.Value(path)
	if item == nil {
		item = &openapi3.PathItem{}
		doc.Paths.Set(path, item)
	}
	item.SetOperation(method, op)
}

// buildDocument describes the REST facade and validates the result.
func buildDocument(ctx context.Context, h *Handlers) (*openapi3.T, error) {
	scheme := "apiKey"
	security := &openapi3.SecurityScheme{
		Type: "apiKey", In: "header", Name: "X-Auth-Key",
		Description: "IntakeQ API key; the server's configured key is used when omitted.",
	}
	if h.opts.AuthMode == AuthBearer {
		scheme = "bearerAuth"
		security = &openapi3.SecurityScheme{Type: "http", Scheme: "bearer"}
	}

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       h.opts.ServerName,
			Version:     h.opts.ServerVersion,
			Description: "HTTP facade over the IntakeQ practice-management API.",
		},
		Paths: openapi3.NewPaths(),
		Components: &openapi3.Components{
			SecuritySchemes: openapi3.SecuritySchemes{scheme: &openapi3.SecuritySchemeRef{Value: security}},
		},
		Security: openapi3.SecurityRequirements{{scheme: []string{}}},
	}

	for _, rt := range operationRoutes {
		op, err := h.registry.Find(rt.operation)
		if err != nil {
			return nil, fmt.Errorf("route %s: %w", rt.pattern(), err)
		}
		addOperation(doc, rt.method, rt.path, operationFor(rt, op.Descriptor))
	}

	addOperation(doc, http.MethodGet, "/", plainOperation("server_info", "Server information", true))
	addOperation(doc, http.MethodGet, "/health", plainOperation("health", "Health check", true))
	addOperation(doc, http.MethodGet, "/operations", plainOperation("list_operations", "List the available operations", false))

	generic := plainOperation("dispatch_operation", "Run any operation with a JSON argument bag", false)
	generic.AddParameter(openapi3.NewPathParameter("name").WithSchema(openapi3.NewStringSchema()))
	generic.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().
		WithJSONSchema(openapi3.NewObjectSchema().WithAnyAdditionalProperties())}
	addOperation(doc, http.MethodPost, "/operations/{name}", generic)

	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI document: %w", err)
	}
	return doc, nil
}

func renderDocument(doc *openapi3.T) (*document, error) {
	data, err := doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal OpenAPI JSON: %w", err)
	}
	var tree any
	if err := codec.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to re-read OpenAPI JSON: %w", err)
	}
	y, err := yaml.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal OpenAPI YAML: %w", err)
	}
	return &document{json: data, yaml: y}, nil
}
