package types

// LLMState classifies what a raw model response turned out to be after parsing.
type LLMState string

const (
	// LLMStateToolCall means the model requested a tool or sub-agent invocation.
	LLMStateToolCall LLMState = "tool_call"
	// LLMStateAnswer means the model produced a final answer.
	LLMStateAnswer LLMState = "answer"
	// LLMStateErrorParse means the response could not be parsed into the
	// expected JSON protocol; Output carries a corrective instruction to feed
	// back to the model.
	LLMStateErrorParse LLMState = "error_parse"
	// LLMStateSuccess means the upstream call itself succeeded.
	LLMStateSuccess LLMState = "success"
	// LLMStateErrorCall means the upstream call failed.
	LLMStateErrorCall LLMState = "error_call"
)

// ToolInvocation is a parsed tool-call request from a model response following
// the {"think": ..., "tool_name": ..., "arguments": {...}} protocol.
type ToolInvocation struct {
	Think     string         `json:"think,omitempty"`
	ToolName  string         `json:"tool_name"`
	Arguments map[string]any `json:"arguments"`
}

// LLMResponse is the parsed form of a raw model response.
type LLMResponse struct {
	State       LLMState        `json:"state"`
	Output      string          `json:"output"`
	Invocation  *ToolInvocation `json:"invocation,omitempty"`
	OriResponse string          `json:"ori_response,omitempty"`
}
