package oxy

import (
	"context"
	"encoding/json"
	"fmt"
)

// Request carries one operator invocation: who is calling, who is called,
// with which arguments, under which trace. The call stack records the chain
// of callees leading here and guards against delegation cycles.
type Request struct {
	TraceID   string         `json:"trace_id"`
	Caller    string         `json:"caller,omitempty"`
	Callee    string         `json:"callee"`
	Arguments map[string]any `json:"arguments,omitempty"`
	CallStack []string       `json:"call_stack,omitempty"`

	dispatcher Dispatcher
}

// NewRequest creates a root request for the given callee.
func NewRequest(callee string, args map[string]any) *Request {
	if args == nil {
		args = map[string]any{}
	}
	return &Request{Callee: callee, Arguments: args}
}

// Bind attaches the dispatcher used for nested Call invocations.
// The dispatcher binds requests before executing them.
func (r *Request) Bind(d Dispatcher) { r.dispatcher = d }

// Dispatcher returns the dispatcher the request is bound to, or nil.
func (r *Request) Dispatcher() Dispatcher { return r.dispatcher }

// Call invokes another operator from within the current one. The child
// request inherits the trace ID and extends the call stack with the
// current callee.
func (r *Request) Call(ctx context.Context, callee string, args map[string]any) (*Response, error) {
	if r.dispatcher == nil {
		return nil, fmt.Errorf("request for %q is not bound to a dispatcher", r.Callee)
	}
	child := &Request{
		TraceID:    r.TraceID,
		Caller:     r.Callee,
		Callee:     callee,
		Arguments:  args,
		CallStack:  append(append([]string{}, r.CallStack...), r.Callee),
		dispatcher: r.dispatcher,
	}
	return r.dispatcher.Call(ctx, child)
}

// OnStack reports whether the given operator name is already on the call
// stack, i.e. calling it would create a delegation cycle.
func (r *Request) OnStack(name string) bool {
	for _, s := range r.CallStack {
		if s == name {
			return true
		}
	}
	return false
}

// StringArg returns the named argument as a string. Non-string values are
// rendered as compact JSON, matching the protocol's "stringify non-string
// answer/query arguments" rule.
func (r *Request) StringArg(name string) string {
	v, ok := r.Arguments[name]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// Query returns the conventional "query" argument.
func (r *Request) Query() string { return r.StringArg("query") }
