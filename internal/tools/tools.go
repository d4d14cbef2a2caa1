// Package tools describes the finance tools to hosts: a name, a JSON Schema
// for the arguments and a handler that decodes them and runs the service.
// The MCP server, the HTTP API and the CLI all dispatch through a Registry.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/seenimoa/finmcp/pkg/models"
)

// ErrToolNotFound is returned when a call names an unregistered tool.
var ErrToolNotFound = errors.New("tool not found")

// Tool is one callable operation.
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  *JSONSchema `json:"input_schema"`
	Handler     Handler     `json:"-"`
}

// Handler decodes raw JSON arguments and returns a JSON-serialisable report.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// JSONSchema is the subset of JSON Schema used for tool arguments.
type JSONSchema struct {
	Type                 string                 `json:"type"`
	Description          string                 `json:"description,omitempty"`
	Properties           map[string]*JSONSchema `json:"properties,omitempty"`
	Required             []string               `json:"required,omitempty"`
	Enum                 []string               `json:"enum,omitempty"`
	Items                *JSONSchema            `json:"items,omitempty"`
	Default              any                    `json:"default,omitempty"`
	Format               string                 `json:"format,omitempty"`
	Minimum              *float64               `json:"minimum,omitempty"`
	Maximum              *float64               `json:"maximum,omitempty"`
	MinItems             *int                   `json:"minItems,omitempty"`
	MaxItems             *int                   `json:"maxItems,omitempty"`
	AdditionalProperties *bool                  `json:"additionalProperties,omitempty"`
}

// ObjectSchema creates a closed object schema with the given properties.
func ObjectSchema(desc string, props map[string]*JSONSchema, required ...string) *JSONSchema {
	closed := false
	if required == nil {
		required = []string{}
	}
	return &JSONSchema{
		Type:                 "object",
		Description:          desc,
		Properties:           props,
		Required:             required,
		AdditionalProperties: &closed,
	}
}

// StringProp creates a string property.
func StringProp(desc string) *JSONSchema {
	return &JSONSchema{Type: "string", Description: desc}
}

// DateProp creates a YYYY-MM-DD string property.
func DateProp(desc string) *JSONSchema {
	return &JSONSchema{Type: "string", Description: desc, Format: "date"}
}

// NumberProp creates a number property.
func NumberProp(desc string) *JSONSchema {
	return &JSONSchema{Type: "number", Description: desc}
}

// IntProp creates an integer property bounded to [min, max].
func IntProp(desc string, min, max float64) *JSONSchema {
	return &JSONSchema{Type: "integer", Description: desc, Minimum: &min, Maximum: &max}
}

// EnumProp creates a string enum property.
func EnumProp(desc string, values ...string) *JSONSchema {
	return &JSONSchema{Type: "string", Description: desc, Enum: values}
}

// ArrayProp creates an array property holding between min and max items.
func ArrayProp(desc string, items *JSONSchema, min, max int) *JSONSchema {
	return &JSONSchema{Type: "array", Description: desc, Items: items, MinItems: &min, MaxItems: &max}
}

// WithDefault records the value used when the property is omitted.
func (s *JSONSchema) WithDefault(v any) *JSONSchema {
	s.Default = v
	return s
}

// Registry holds the tools in registration order.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool, replacing any tool of the same name in place.
func (r *Registry) Register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[tool.Name]; !ok {
		r.order = append(r.order, tool.Name)
	}
	r.tools[tool.Name] = tool
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// List returns the tools in registration order.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Names returns the tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Execute runs the named tool on raw JSON arguments.
func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) (any, error) {
	tool, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	if tool.Handler == nil {
		return nil, fmt.Errorf("tools: %q has no handler", name)
	}
	return tool.Handler(ctx, args)
}

// Decode strictly unmarshals tool arguments into v. Empty or null arguments
// leave v at its zero value. Unknown fields, wrong types and trailing data
// are InvalidArguments.
func Decode(args json.RawMessage, v any) error {
	trimmed := bytes.TrimSpace(args)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return decodeError(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return models.NewError(models.KindInvalidArguments, "", "arguments must be a single JSON object")
	}
	return nil
}

func decodeError(err error) error {
	var te *json.UnmarshalTypeError
	if errors.As(err, &te) {
		return models.NewError(models.KindInvalidArguments, te.Field,
			"%s must be %s, got JSON %s", fieldName(te.Field), typeName(te.Type.Kind().String()), te.Value)
	}
	var se *json.SyntaxError
	if errors.As(err, &se) {
		return models.NewError(models.KindInvalidArguments, "", "arguments are not valid JSON at offset %d", se.Offset)
	}
	msg := err.Error()
	if field, ok := strings.CutPrefix(msg, "json: unknown field "); ok {
		field = strings.Trim(field, `"`)
		return models.NewError(models.KindInvalidArguments, field, "unknown argument %q", field)
	}
	return models.WrapError(models.KindInvalidArguments, "", err)
}

func fieldName(f string) string {
	if f == "" {
		return "arguments"
	}
	return f
}

func typeName(kind string) string {
	switch kind {
	case "float64", "int", "int64":
		return "a number"
	case "slice":
		return "an array"
	case "struct", "map":
		return "an object"
	default:
		return "a " + kind
	}
}
