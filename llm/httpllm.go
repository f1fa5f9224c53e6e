package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/jd-opensource/oxygent-go/internal/metrics"
	"github.com/jd-opensource/oxygent-go/internal/retry"
	"github.com/jd-opensource/oxygent-go/oxy"
	"github.com/jd-opensource/oxygent-go/types"
)

// Config holds the configuration of one OpenAI-compatible HTTP provider.
type Config struct {
	// Name is the operator name the provider is registered under.
	Name string
	// Desc describes the provider to agents; optional.
	Desc string
	// APIKey is the bearer credential.
	APIKey string
	// BaseURL is the API root, e.g. "https://api.deepseek.com/v1".
	BaseURL string
	// Model is the upstream model identifier.
	Model string
	// Temperature applied to every request.
	Temperature float32
	// MaxTokens caps completions; 0 leaves it to the provider.
	MaxTokens int
	// Concurrency caps in-flight requests. Defaults to 4.
	Concurrency int
	// Timeout bounds a single request. Defaults to 240s.
	Timeout time.Duration
	// MaxRetries bounds retries on retryable upstream errors. Defaults to 3.
	MaxRetries int
	// EndpointPath is the completions path. Defaults to "/chat/completions".
	EndpointPath string
}

// HTTPLLM is an OpenAI-compatible chat-completions client. It implements
// both Provider (for agents) and oxy.Oxy (for direct dispatch), and caps
// in-flight requests with a weighted semaphore.
type HTTPLLM struct {
	cfg     Config
	client  *http.Client
	sem     *semaphore.Weighted
	policy  retry.Policy
	logger  *zap.Logger
	metrics *metrics.Collector
}

// NewHTTPLLM creates a provider from the given config.
func NewHTTPLLM(cfg Config, logger *zap.Logger) *HTTPLLM {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 240 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	} else if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/chat/completions"
	}
	policy := retry.DefaultPolicy()
	policy.MaxRetries = cfg.MaxRetries

	return &HTTPLLM{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		sem:     semaphore.NewWeighted(int64(cfg.Concurrency)),
		policy:  policy,
		logger:  logger.With(zap.String("provider", cfg.Name)),
		metrics: metrics.Default(),
	}
}

// Name implements Provider and oxy.Oxy.
func (p *HTTPLLM) Name() string { return p.cfg.Name }

// Desc implements oxy.Oxy.
func (p *HTTPLLM) Desc() string {
	if p.cfg.Desc != "" {
		return p.cfg.Desc
	}
	return fmt.Sprintf("LLM endpoint for model %s", p.cfg.Model)
}

// InputSchema implements oxy.Oxy.
func (p *HTTPLLM) InputSchema() json.RawMessage { return oxy.DefaultQuerySchema }

func (p *HTTPLLM) endpoint() string {
	return strings.TrimRight(p.cfg.BaseURL, "/") + p.cfg.EndpointPath
}

// Completion implements Provider.
func (p *HTTPLLM) Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire completion slot: %w", err)
	}
	defer p.sem.Release(1)

	start := time.Now()
	resp, err := retry.Do(ctx, p.policy, p.logger, func() (*ChatResponse, error) {
		return p.completeOnce(ctx, req)
	})
	status := "success"
	if err != nil {
		status = "error"
	}
	p.metrics.ObserveLLMRequest(p.cfg.Name, status, time.Since(start))
	if resp != nil {
		p.metrics.AddLLMTokens(p.cfg.Name, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	}
	return resp, err
}

func (p *HTTPLLM) completeOnce(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.cfg.MaxTokens
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = p.cfg.Temperature
	}

	body := openAIRequest{
		Model:       model,
		Messages:    convertMessages(req.Messages),
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Stop:        req.Stop,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, types.NewError(types.ErrUpstreamError, err.Error()).
			WithHTTPStatus(http.StatusBadGateway).
			WithRetryable(true).
			WithProvider(p.cfg.Name)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, mapHTTPError(resp.StatusCode, readErrorMessage(resp.Body), p.cfg.Name)
	}

	var oaResp openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&oaResp); err != nil {
		return nil, types.NewError(types.ErrUpstreamError, err.Error()).
			WithHTTPStatus(http.StatusBadGateway).
			WithRetryable(true).
			WithProvider(p.cfg.Name)
	}
	if len(oaResp.Choices) == 0 {
		return nil, types.NewError(types.ErrUpstreamError, "no choices in response").
			WithProvider(p.cfg.Name)
	}

	out := &ChatResponse{
		ID:           oaResp.ID,
		Provider:     p.cfg.Name,
		Model:        oaResp.Model,
		Content:      oaResp.Choices[0].Message.Content,
		FinishReason: oaResp.Choices[0].FinishReason,
		Usage: ChatUsage{
			PromptTokens:     oaResp.Usage.PromptTokens,
			CompletionTokens: oaResp.Usage.CompletionTokens,
			TotalTokens:      oaResp.Usage.TotalTokens,
		},
	}
	if oaResp.Created != 0 {
		out.CreatedAt = time.Unix(oaResp.Created, 0)
	}
	return out, nil
}

// HealthCheck implements Provider with a minimal one-token request.
func (p *HTTPLLM) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	start := time.Now()
	_, err := p.completeOnce(ctx, &ChatRequest{
		Messages:  []types.Message{types.NewUserMessage("ping")},
		MaxTokens: 1,
	})
	latency := time.Since(start)
	if err != nil {
		return &HealthStatus{Healthy: false, Latency: latency}, err
	}
	return &HealthStatus{Healthy: true, Latency: latency}, nil
}

// Execute implements oxy.Oxy: a direct single-turn completion of the
// "query" argument, or of "messages" when the caller provides a history.
func (p *HTTPLLM) Execute(ctx context.Context, req *oxy.Request) (*oxy.Response, error) {
	msgs, err := messagesFromArguments(req)
	if err != nil {
		return oxy.Failed(err.Error()), err
	}
	resp, err := p.Completion(ctx, &ChatRequest{Messages: msgs})
	if err != nil {
		return oxy.Failed(err.Error()), err
	}
	return oxy.Completed(resp.Content), nil
}

func messagesFromArguments(req *oxy.Request) ([]types.Message, error) {
	raw, ok := req.Arguments["messages"]
	if !ok {
		q := req.Query()
		if q == "" {
			return nil, types.NewError(types.ErrToolValidation, "llm call requires a query or messages argument")
		}
		return []types.Message{types.NewUserMessage(q)}, nil
	}

	items, ok := raw.([]any)
	if !ok {
		return nil, types.NewError(types.ErrToolValidation, "messages argument must be a list")
	}
	msgs := make([]types.Message, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			return nil, types.NewError(types.ErrToolValidation, "messages entries must be objects")
		}
		role, _ := m["role"].(string)
		content, _ := m["content"].(string)
		if role == "" {
			role = string(types.RoleUser)
		}
		msgs = append(msgs, types.Message{Role: types.Role(role), Content: content})
	}
	return msgs, nil
}
