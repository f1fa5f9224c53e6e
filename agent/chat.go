package agent

import (
	"context"

	"go.uber.org/zap"

	"github.com/jd-opensource/oxygent-go/llm"
	"github.com/jd-opensource/oxygent-go/oxy"
	"github.com/jd-opensource/oxygent-go/types"
)

// ChatAgent performs a single completion with its system prompt. It has no
// tool loop; it exists for summarization and reformulation roles.
type ChatAgent struct {
	BaseAgent
}

// NewChatAgent creates a single-shot chat agent backed by the given provider.
func NewChatAgent(cfg Config, provider llm.Provider, logger *zap.Logger) *ChatAgent {
	return &ChatAgent{BaseAgent: newBaseAgent(cfg, provider, logger)}
}

// Execute implements oxy.Oxy.
func (a *ChatAgent) Execute(ctx context.Context, req *oxy.Request) (*oxy.Response, error) {
	messages := []types.Message{
		types.NewSystemMessage(a.cfg.Prompt),
		types.NewUserMessage(buildQuery(req)),
	}
	if a.cfg.MaxContextTokens > 0 {
		messages = llm.TrimMessages("", messages, a.cfg.MaxContextTokens)
	}
	resp, err := a.provider.Completion(ctx, &llm.ChatRequest{Messages: messages})
	if err != nil {
		return nil, err
	}
	return oxy.Completed(resp.Content), nil
}
