// Package agent implements the prompt-driven agents of the system: a plain
// chat agent and the ReAct agent that delegates to tools and sub-agents
// through the dispatcher using a JSON tool-call protocol.
package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jd-opensource/oxygent-go/llm"
	"github.com/jd-opensource/oxygent-go/oxy"
)

// Config configures an agent.
type Config struct {
	// Name is the operator name the agent is registered under.
	Name string
	// Desc describes the agent to its callers (including other agents).
	Desc string
	// Prompt is the agent's system prompt.
	Prompt string
	// Tools are operator names the agent may call.
	Tools []string
	// SubAgents are agent names the agent may delegate to. They are
	// dispatched exactly like tools.
	SubAgents []string
	// MaxRounds caps reasoning rounds. Defaults to 5.
	MaxRounds int
	// MaxContextTokens trims oldest non-system messages beyond this
	// budget. 0 disables trimming.
	MaxContextTokens int
}

// BaseAgent carries the state shared by all agent kinds.
type BaseAgent struct {
	cfg      Config
	provider llm.Provider
	logger   *zap.Logger
}

func newBaseAgent(cfg Config, provider llm.Provider, logger *zap.Logger) BaseAgent {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = 5
	}
	return BaseAgent{
		cfg:      cfg,
		provider: provider,
		logger:   logger.With(zap.String("agent", cfg.Name)),
	}
}

// Name implements oxy.Oxy.
func (a *BaseAgent) Name() string { return a.cfg.Name }

// Desc implements oxy.Oxy.
func (a *BaseAgent) Desc() string { return a.cfg.Desc }

// InputSchema implements oxy.Oxy.
func (a *BaseAgent) InputSchema() json.RawMessage { return oxy.DefaultQuerySchema }

// callables returns the operators the agent may invoke, tools first.
func (a *BaseAgent) callables() []string {
	out := make([]string, 0, len(a.cfg.Tools)+len(a.cfg.SubAgents))
	out = append(out, a.cfg.Tools...)
	out = append(out, a.cfg.SubAgents...)
	return out
}

func (a *BaseAgent) mayCall(name string) bool {
	for _, c := range a.callables() {
		if c == name {
			return true
		}
	}
	return false
}

// buildQuery assembles the task text from the request, appending the file
// reference when the task carries an attachment.
func buildQuery(req *oxy.Request) string {
	query := req.Query()
	if file := req.StringArg("file_name"); file != "" {
		query += "\nFile_Name:" + file
	}
	return query
}

// renderToolsSection describes the callable operators for the system
// prompt, using the dispatcher's registered metadata.
func (a *BaseAgent) renderToolsSection(d oxy.Dispatcher) string {
	names := a.callables()
	if len(names) == 0 || d == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\nAvailable tools:\n")
	for _, name := range names {
		o, ok := d.Lookup(name)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n  arguments schema: %s\n", o.Name(), o.Desc(), compactJSON(o.InputSchema()))
	}
	fmt.Fprintf(&b, "- %s: Deliver the final answer.\n  arguments schema: {\"answer\": \"<your answer>\"}\n", FinalAnswerTool)
	b.WriteString("\nRespond with a single JSON object: {\"think\": \"...\", \"tool_name\": \"...\", \"arguments\": {...}}")
	return b.String()
}

func compactJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
