package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jd-opensource/oxygent-go/llm"
	"github.com/jd-opensource/oxygent-go/oxy"
)

// scriptedProvider replays canned completions in order.
type scriptedProvider struct {
	replies  []string
	requests []*llm.ChatRequest
}

func (p *scriptedProvider) Completion(_ context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	p.requests = append(p.requests, req)
	reply := p.replies[0]
	if len(p.replies) > 1 {
		p.replies = p.replies[1:]
	}
	return &llm.ChatResponse{Content: reply}, nil
}

func (p *scriptedProvider) HealthCheck(context.Context) (*llm.HealthStatus, error) {
	return &llm.HealthStatus{Healthy: true}, nil
}

func (p *scriptedProvider) Name() string { return "scripted" }

// stubDispatcher answers every call with a fixed observation.
type stubDispatcher struct {
	tools map[string]oxy.Oxy
	calls []*oxy.Request
	reply string
}

func (d *stubDispatcher) Call(_ context.Context, req *oxy.Request) (*oxy.Response, error) {
	d.calls = append(d.calls, req)
	return oxy.Completed(d.reply), nil
}

func (d *stubDispatcher) Lookup(name string) (oxy.Oxy, bool) {
	o, ok := d.tools[name]
	return o, ok
}

func newBoundRequest(d oxy.Dispatcher, args map[string]any) *oxy.Request {
	req := oxy.NewRequest("searcher", args)
	req.TraceID = "trace-test"
	req.Bind(d)
	return req
}

func TestReActAgentDirectAnswer(t *testing.T) {
	provider := &scriptedProvider{replies: []string{
		`{"think": "easy", "tool_name": "final_answer", "arguments": {"answer": "Paris"}}`,
	}}
	a := NewReActAgent(Config{Name: "searcher", MaxRounds: 3}, provider, nil)

	resp, err := a.Execute(context.Background(), newBoundRequest(&stubDispatcher{}, map[string]any{"query": "capital of France"}))
	require.NoError(t, err)
	assert.Equal(t, oxy.StateCompleted, resp.State)
	assert.Equal(t, "Paris", resp.Output)
}

func TestReActAgentToolLoop(t *testing.T) {
	tool := oxy.NewFunctionTool("wiki_summary", "summaries", nil, func(context.Context, map[string]any) (string, error) {
		return "", nil
	}, nil)
	d := &stubDispatcher{
		tools: map[string]oxy.Oxy{"wiki_summary": tool},
		reply: "Mercedes Sosa released 3 studio albums between 2000 and 2009.",
	}
	provider := &scriptedProvider{replies: []string{
		"```json\n{\"think\": \"search\", \"tool_name\": \"wiki_summary\", \"arguments\": {\"query\": \"Mercedes Sosa\"}}\n```",
		`{"tool_name": "final_answer", "arguments": {"answer": "3"}}`,
	}}
	a := NewReActAgent(Config{Name: "searcher", Tools: []string{"wiki_summary"}, MaxRounds: 5}, provider, nil)

	resp, err := a.Execute(context.Background(), newBoundRequest(d, map[string]any{"query": "How many studio albums?"}))
	require.NoError(t, err)
	assert.Equal(t, "3", resp.Output)

	require.Len(t, d.calls, 1)
	assert.Equal(t, "wiki_summary", d.calls[0].Callee)
	assert.Equal(t, "searcher", d.calls[0].Caller)
	assert.Equal(t, "trace-test", d.calls[0].TraceID)

	// The observation must reach the model as a user message in round two.
	require.Len(t, provider.requests, 2)
	second := provider.requests[1].Messages
	require.GreaterOrEqual(t, len(second), 4)
	assert.Contains(t, second[len(second)-1].Content, "Observation: Mercedes Sosa released")
}

func TestReActAgentParseFailureFeedsCorrection(t *testing.T) {
	provider := &scriptedProvider{replies: []string{
		`{"think": "forgot the tool name", "arguments": {}}`,
		`{"tool_name": "final_answer", "arguments": {"answer": "fixed"}}`,
	}}
	a := NewReActAgent(Config{Name: "searcher", MaxRounds: 5}, provider, nil)

	resp, err := a.Execute(context.Background(), newBoundRequest(&stubDispatcher{}, map[string]any{"query": "q"}))
	require.NoError(t, err)
	assert.Equal(t, "fixed", resp.Output)

	second := provider.requests[1].Messages
	assert.Equal(t, msgBadFormat, second[len(second)-1].Content)
}

func TestReActAgentMaxRoundsReturnsLastOutput(t *testing.T) {
	raw := `{"think": "loop", "tool_name": "wiki_summary", "arguments": {"query": "x"}}`
	provider := &scriptedProvider{replies: []string{raw}}
	d := &stubDispatcher{reply: "nothing useful"}
	a := NewReActAgent(Config{Name: "searcher", Tools: []string{"wiki_summary"}, MaxRounds: 2}, provider, nil)

	resp, err := a.Execute(context.Background(), newBoundRequest(d, map[string]any{"query": "q"}))
	require.NoError(t, err)
	assert.Equal(t, oxy.StateCompleted, resp.State)
	assert.Equal(t, raw, resp.Output)
	assert.Len(t, provider.requests, 2)
}

func TestReActAgentRejectsUnlistedTool(t *testing.T) {
	provider := &scriptedProvider{replies: []string{
		`{"tool_name": "rm_rf", "arguments": {}}`,
		`{"tool_name": "final_answer", "arguments": {"answer": "ok"}}`,
	}}
	d := &stubDispatcher{}
	a := NewReActAgent(Config{Name: "searcher", Tools: []string{"wiki_summary"}, MaxRounds: 3}, provider, nil)

	_, err := a.Execute(context.Background(), newBoundRequest(d, map[string]any{"query": "q"}))
	require.NoError(t, err)
	assert.Empty(t, d.calls)

	second := provider.requests[1].Messages
	assert.Contains(t, second[len(second)-1].Content, "not available")
}

func TestReActAgentAppendsFileName(t *testing.T) {
	provider := &scriptedProvider{replies: []string{
		`{"tool_name": "final_answer", "arguments": {"answer": "done"}}`,
	}}
	a := NewReActAgent(Config{Name: "searcher", MaxRounds: 1}, provider, nil)

	_, err := a.Execute(context.Background(), newBoundRequest(&stubDispatcher{}, map[string]any{
		"query":     "Transcribe the attachment.",
		"file_name": "audio.mp3",
	}))
	require.NoError(t, err)

	first := provider.requests[0].Messages
	assert.Contains(t, first[len(first)-1].Content, "Transcribe the attachment.\nFile_Name:audio.mp3")
}

func TestChatAgentSingleCompletion(t *testing.T) {
	provider := &scriptedProvider{replies: []string{"a concise summary"}}
	a := NewChatAgent(Config{Name: "summarizer", Prompt: "Summarize."}, provider, nil)

	resp, err := a.Execute(context.Background(), newBoundRequest(&stubDispatcher{}, map[string]any{"query": "long text"}))
	require.NoError(t, err)
	assert.Equal(t, "a concise summary", resp.Output)
	assert.Len(t, provider.requests, 1)
}
