// Package mcptools exposes registry operations as MCP tools.
package mcptools

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/i2y/intakeq-mcp/internal/domain"
)

// CredentialArg is the optional tool argument carrying the IntakeQ API key.
const CredentialArg = domain.CredentialArg

// Tool builds the MCP tool declaration for d.
func (a *Adapter) Tool(d domain.OperationDescriptor) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(describe(d)),
		mcp.WithTitleAnnotation(d.Summary),
		mcp.WithReadOnlyHintAnnotation(d.ReadOnly),
		mcp.WithDestructiveHintAnnotation(d.Destructive),
		mcp.WithOpenWorldHintAnnotation(true),
	}
	for _, p := range d.Params {
		opts = append(opts, property(p, a.pageSize))
	}
	opts = append(opts, mcp.WithString(CredentialArg,
		mcp.Description("IntakeQ API key. Falls back to the server's configured key when omitted."),
	))
	return mcp.NewTool(d.Name, opts...)
}

func describe(d domain.OperationDescriptor) string {
	desc := fmt.Sprintf("%s (IntakeQ %s %s).", d.Summary, d.Method, d.Path)
	if d.OpenBody {
		desc += " Arguments not listed here are sent upstream as additional fields."
	}
	if d.Response == domain.ResponseRaw {
		desc += " Returns the PDF as an embedded resource."
	}
	return desc
}

func property(p domain.Param, pageSize int) mcp.ToolOption {
	desc := p.Description
	if p.Name == "page" && pageSize > 0 {
		desc = fmt.Sprintf("Page number; each page holds up to %d records", pageSize)
	}
	var popts []mcp.PropertyOption
	if p.Required {
		popts = append(popts, mcp.Required())
	}

	switch p.Type {
	case domain.TypeInteger:
		popts = append(popts, mcp.Description(desc))
		if values := p.EnumValues(); len(values) > 0 {
			popts = append(popts, enum(values))
		}
		return mcp.WithNumber(p.Name, popts...)
	case domain.TypeBoolean:
		return mcp.WithBoolean(p.Name, append(popts, mcp.Description(desc))...)
	case domain.TypeObject:
		return mcp.WithObject(p.Name, append(popts, mcp.Description(desc))...)
	default:
		popts = append(popts, mcp.Description(desc))
		if len(p.Enum) > 0 {
			popts = append(popts, mcp.Enum(p.Enum...))
		}
		return mcp.WithString(p.Name, popts...)
	}
}

// enum sets a typed enum on a property; mcp.Enum only takes strings.
func enum(values []any) mcp.PropertyOption {
	return func(schema map[string]any) {
		schema["enum"] = values
	}
}
