package llm

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/jd-opensource/oxygent-go/types"
)

// OpenAI-compatible chat completions wire format. All three benchmark
// providers speak this dialect (natively or through a gateway).

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float32         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Stop        []string        `json:"stop,omitempty"`
}

type openAIChoice struct {
	Index        int           `json:"index"`
	FinishReason string        `json:"finish_reason"`
	Message      openAIMessage `json:"message"`
}

type openAIUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type openAIResponse struct {
	ID      string         `json:"id"`
	Model   string         `json:"model"`
	Created int64          `json:"created"`
	Choices []openAIChoice `json:"choices"`
	Usage   openAIUsage    `json:"usage"`
}

func convertMessages(msgs []types.Message) []openAIMessage {
	out := make([]openAIMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, openAIMessage{Role: string(m.Role), Content: m.Content})
	}
	return out
}

// readErrorMessage extracts a human-readable error from an upstream error
// body, falling back to the raw text.
func readErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}
	var wrapped struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Error.Message != "" {
		return wrapped.Error.Message
	}
	return strings.TrimSpace(string(data))
}

// mapHTTPError converts an upstream HTTP status to a structured error with
// the retryability the status implies.
func mapHTTPError(status int, msg, provider string) *types.Error {
	code := types.ErrUpstreamError
	retryable := false

	switch {
	case status == http.StatusUnauthorized:
		code = types.ErrAuthentication
	case status == http.StatusForbidden:
		code = types.ErrForbidden
	case status == http.StatusNotFound:
		code = types.ErrModelNotFound
	case status == http.StatusTooManyRequests:
		code = types.ErrRateLimited
		retryable = true
	case status == http.StatusRequestEntityTooLarge:
		code = types.ErrContextTooLong
	case status == http.StatusGatewayTimeout:
		code = types.ErrUpstreamTimeout
		retryable = true
	case status == http.StatusServiceUnavailable:
		code = types.ErrModelOverloaded
		retryable = true
	case status >= 500:
		retryable = true
	case status >= 400:
		code = types.ErrInvalidRequest
	}

	if msg == "" {
		msg = http.StatusText(status)
	}
	return types.NewError(code, msg).
		WithHTTPStatus(status).
		WithRetryable(retryable).
		WithProvider(provider)
}
