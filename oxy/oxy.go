// Package oxy defines the atomic operator model: every capability in the
// system (LLM endpoint, tool, agent) is an Oxy that can be registered and
// invoked by name through a Dispatcher.
package oxy

import (
	"context"
	"encoding/json"
)

// State represents the terminal state of an operator execution.
type State string

const (
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateCanceled  State = "canceled"
)

// Oxy is an atomic operator. LLM endpoints, tools, and agents all implement
// this interface so the dispatcher can treat them uniformly.
type Oxy interface {
	// Name returns the unique operator name used for dispatch.
	Name() string

	// Desc returns a short human/LLM readable description.
	Desc() string

	// InputSchema returns the JSON Schema of the operator's arguments.
	InputSchema() json.RawMessage

	// Execute runs the operator for the given request.
	Execute(ctx context.Context, req *Request) (*Response, error)
}

// Dispatcher routes a request to the operator named by Callee. The
// multi-agent system implements this; operators use it for nested calls
// and to inspect the operators available to them.
type Dispatcher interface {
	Call(ctx context.Context, req *Request) (*Response, error)
	Lookup(name string) (Oxy, bool)
}

// Response is the result of an operator execution.
type Response struct {
	State  State  `json:"state"`
	Output string `json:"output"`
	Err    string `json:"error,omitempty"`
}

// Completed returns a successful response with the given output.
func Completed(output string) *Response {
	return &Response{State: StateCompleted, Output: output}
}

// Failed returns a failed response with the given error message.
func Failed(msg string) *Response {
	return &Response{State: StateFailed, Err: msg}
}
