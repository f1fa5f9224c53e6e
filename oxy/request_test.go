package oxy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoDispatcher struct {
	last *Request
}

func (d *echoDispatcher) Call(_ context.Context, req *Request) (*Response, error) {
	d.last = req
	return Completed("echo:" + req.Callee), nil
}

func (d *echoDispatcher) Lookup(string) (Oxy, bool) { return nil, false }

func TestRequestCallInheritsTraceAndStack(t *testing.T) {
	d := &echoDispatcher{}
	req := NewRequest("master_agent", map[string]any{"query": "q"})
	req.TraceID = "trace-1"
	req.Bind(d)

	resp, err := req.Call(context.Background(), "wiki_summary", map[string]any{"title": "Go"})
	require.NoError(t, err)
	assert.Equal(t, "echo:wiki_summary", resp.Output)

	require.NotNil(t, d.last)
	assert.Equal(t, "trace-1", d.last.TraceID)
	assert.Equal(t, "master_agent", d.last.Caller)
	assert.Equal(t, []string{"master_agent"}, d.last.CallStack)
	assert.True(t, d.last.OnStack("master_agent"))
	assert.False(t, d.last.OnStack("wiki_summary"))
}

func TestRequestCallUnbound(t *testing.T) {
	req := NewRequest("a", nil)
	_, err := req.Call(context.Background(), "b", nil)
	require.Error(t, err)
}

func TestStringArgStringifiesNonStrings(t *testing.T) {
	req := NewRequest("x", map[string]any{
		"query":  map[string]any{"text": "count", "unit_info": "hundreds"},
		"answer": 42.0,
		"plain":  "already a string",
	})
	assert.JSONEq(t, `{"text":"count","unit_info":"hundreds"}`, req.StringArg("query"))
	assert.Equal(t, "42", req.StringArg("answer"))
	assert.Equal(t, "already a string", req.StringArg("plain"))
	assert.Equal(t, "", req.StringArg("missing"))
}

func TestFunctionToolExecute(t *testing.T) {
	tool := NewFunctionTool("upper", "uppercases", nil, func(_ context.Context, args map[string]any) (string, error) {
		return "OK:" + args["query"].(string), nil
	}, nil)

	resp, err := tool.Execute(context.Background(), NewRequest("upper", map[string]any{"query": "hi"}))
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, resp.State)
	assert.Equal(t, "OK:hi", resp.Output)
	assert.Equal(t, "upper", tool.Name())
	assert.NotEmpty(t, tool.InputSchema())
}
