package oxy

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// ToolFunc is the signature of a plain Go function exposed as an operator.
type ToolFunc func(ctx context.Context, args map[string]any) (string, error)

// FunctionTool adapts a ToolFunc into an Oxy.
type FunctionTool struct {
	name   string
	desc   string
	schema json.RawMessage
	fn     ToolFunc
	logger *zap.Logger
}

// NewFunctionTool creates a function-backed operator. schema is the JSON
// Schema of the arguments; a nil schema defaults to a single "query" string.
func NewFunctionTool(name, desc string, schema json.RawMessage, fn ToolFunc, logger *zap.Logger) *FunctionTool {
	if logger == nil {
		logger = zap.NewNop()
	}
	if schema == nil {
		schema = DefaultQuerySchema
	}
	return &FunctionTool{
		name:   name,
		desc:   desc,
		schema: schema,
		fn:     fn,
		logger: logger.With(zap.String("tool", name)),
	}
}

// DefaultQuerySchema is the schema used when a tool declares none.
var DefaultQuerySchema = json.RawMessage(`{
	"type": "object",
	"properties": {"query": {"type": "string", "description": "Query question"}},
	"required": ["query"]
}`)

// Name implements Oxy.
func (t *FunctionTool) Name() string { return t.name }

// Desc implements Oxy.
func (t *FunctionTool) Desc() string { return t.desc }

// InputSchema implements Oxy.
func (t *FunctionTool) InputSchema() json.RawMessage { return t.schema }

// Execute implements Oxy.
func (t *FunctionTool) Execute(ctx context.Context, req *Request) (*Response, error) {
	out, err := t.fn(ctx, req.Arguments)
	if err != nil {
		t.logger.Warn("tool execution failed", zap.Error(err))
		return Failed(err.Error()), err
	}
	return Completed(out), nil
}
