package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jd-opensource/oxygent-go/llm"
	"github.com/jd-opensource/oxygent-go/oxy"
	"github.com/jd-opensource/oxygent-go/types"
)

// ReActAgent drives a reason/act loop: each round the model either calls a
// tool or sub-agent through the dispatcher or delivers a final answer via
// the final_answer pseudo-tool. Observations are fed back as user messages.
type ReActAgent struct {
	BaseAgent
}

// NewReActAgent creates a ReAct agent backed by the given provider.
func NewReActAgent(cfg Config, provider llm.Provider, logger *zap.Logger) *ReActAgent {
	return &ReActAgent{BaseAgent: newBaseAgent(cfg, provider, logger)}
}

// Execute implements oxy.Oxy.
func (a *ReActAgent) Execute(ctx context.Context, req *oxy.Request) (*oxy.Response, error) {
	query := buildQuery(req)
	messages := []types.Message{
		types.NewSystemMessage(a.cfg.Prompt + a.renderToolsSection(req.Dispatcher())),
		types.NewUserMessage(query),
	}

	lastRaw := ""
	for round := 1; round <= a.cfg.MaxRounds; round++ {
		if a.cfg.MaxContextTokens > 0 {
			messages = llm.TrimMessages("", messages, a.cfg.MaxContextTokens)
		}
		resp, err := a.provider.Completion(ctx, &llm.ChatRequest{Messages: messages})
		if err != nil {
			return nil, fmt.Errorf("agent %s round %d: %w", a.cfg.Name, round, err)
		}
		lastRaw = resp.Content

		parsed := ParseResponse(resp.Content)
		switch parsed.State {
		case types.LLMStateAnswer:
			a.logger.Debug("final answer", zap.Int("round", round))
			return oxy.Completed(parsed.Output), nil

		case types.LLMStateErrorParse:
			a.logger.Debug("unparseable response, feeding correction back",
				zap.Int("round", round))
			messages = append(messages,
				types.NewAssistantMessage(resp.Content),
				types.NewUserMessage(parsed.Output))

		case types.LLMStateToolCall:
			observation := a.invoke(ctx, req, parsed.Invocation)
			a.logger.Debug("tool call",
				zap.Int("round", round),
				zap.String("tool", parsed.Invocation.ToolName))
			messages = append(messages,
				types.NewAssistantMessage(resp.Content),
				types.NewUserMessage("Observation: "+observation))
		}
	}

	// Round budget exhausted: the last raw output is the best answer we have.
	a.logger.Warn("max rounds reached", zap.Int("max_rounds", a.cfg.MaxRounds))
	return oxy.Completed(lastRaw), nil
}

// invoke dispatches one tool call and renders the observation text. Failures
// become observations so the model can recover instead of aborting the loop.
func (a *ReActAgent) invoke(ctx context.Context, req *oxy.Request, inv *types.ToolInvocation) string {
	if !a.mayCall(inv.ToolName) {
		return fmt.Sprintf("Tool %q is not available to this agent.", inv.ToolName)
	}
	resp, err := req.Call(ctx, inv.ToolName, inv.Arguments)
	if err != nil {
		a.logger.Warn("tool call failed",
			zap.String("tool", inv.ToolName),
			zap.Error(err))
		return fmt.Sprintf("Tool %s failed: %v", inv.ToolName, err)
	}
	if resp.State != oxy.StateCompleted {
		return fmt.Sprintf("Tool %s failed: %s", inv.ToolName, resp.Err)
	}
	return resp.Output
}
