package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jd-opensource/oxygent-go/oxy"
	"github.com/jd-opensource/oxygent-go/types"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *HTTPLLM {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPLLM(Config{
		Name:        "deepseek-v3",
		APIKey:      "sk-test",
		BaseURL:     srv.URL,
		Model:       "deepseek-chat",
		Temperature: 0.01,
		Timeout:     5 * time.Second,
		MaxRetries:  2,
	}, nil)
}

func completionBody(content string) []byte {
	b, _ := json.Marshal(map[string]any{
		"id":      "cmpl-1",
		"model":   "deepseek-chat",
		"created": 1710000000,
		"choices": []map[string]any{
			{"index": 0, "finish_reason": "stop", "message": map[string]any{"role": "assistant", "content": content}},
		},
		"usage": map[string]any{"prompt_tokens": 12, "completion_tokens": 3, "total_tokens": 15},
	})
	return b
}

func TestCompletionSuccess(t *testing.T) {
	var gotAuth string
	var gotReq openAIRequest
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write(completionBody("hello"))
	})

	resp, err := p.Completion(context.Background(), &ChatRequest{
		Messages: []types.Message{types.NewUserMessage("hi")},
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "deepseek-chat", gotReq.Model)
	assert.InDelta(t, 0.01, gotReq.Temperature, 1e-6)
	assert.Equal(t, "hello", resp.Content)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, 15, resp.Usage.TotalTokens)
	assert.Equal(t, "deepseek-v3", resp.Provider)
}

func TestCompletionRetriesOn429(t *testing.T) {
	var calls atomic.Int32
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":{"message":"rate limited"}}`))
			return
		}
		w.Write(completionBody("recovered"))
	})
	p.policy.InitialDelay = time.Millisecond

	resp, err := p.Completion(context.Background(), &ChatRequest{
		Messages: []types.Message{types.NewUserMessage("hi")},
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", resp.Content)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCompletionDoesNotRetryAuthErrors(t *testing.T) {
	var calls atomic.Int32
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key"}}`))
	})

	_, err := p.Completion(context.Background(), &ChatRequest{
		Messages: []types.Message{types.NewUserMessage("hi")},
	})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, types.ErrAuthentication, types.GetErrorCode(err))
	assert.False(t, types.IsRetryable(err))
}

func TestExecuteAsOperator(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(completionBody("operator output"))
	})

	resp, err := p.Execute(context.Background(), oxy.NewRequest("deepseek-v3", map[string]any{"query": "what time is it"}))
	require.NoError(t, err)
	assert.Equal(t, oxy.StateCompleted, resp.State)
	assert.Equal(t, "operator output", resp.Output)
}

func TestExecuteRequiresQueryOrMessages(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(completionBody("unused"))
	})

	_, err := p.Execute(context.Background(), oxy.NewRequest("deepseek-v3", nil))
	require.Error(t, err)
	assert.Equal(t, types.ErrToolValidation, types.GetErrorCode(err))
}

func TestExecuteWithMessageHistory(t *testing.T) {
	var gotReq openAIRequest
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write(completionBody("ok"))
	})

	req := oxy.NewRequest("deepseek-v3", map[string]any{
		"messages": []any{
			map[string]any{"role": "system", "content": "be terse"},
			map[string]any{"role": "user", "content": "hello"},
		},
	})
	_, err := p.Execute(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "hello", gotReq.Messages[1].Content)
}

func TestMapHTTPErrorRetryability(t *testing.T) {
	cases := []struct {
		status    int
		code      types.ErrorCode
		retryable bool
	}{
		{http.StatusUnauthorized, types.ErrAuthentication, false},
		{http.StatusTooManyRequests, types.ErrRateLimited, true},
		{http.StatusServiceUnavailable, types.ErrModelOverloaded, true},
		{http.StatusGatewayTimeout, types.ErrUpstreamTimeout, true},
		{http.StatusInternalServerError, types.ErrUpstreamError, true},
		{http.StatusBadRequest, types.ErrInvalidRequest, false},
	}
	for _, tc := range cases {
		err := mapHTTPError(tc.status, "", "p")
		assert.Equal(t, tc.code, err.Code, "status %d", tc.status)
		assert.Equal(t, tc.retryable, err.Retryable, "status %d", tc.status)
	}
}
