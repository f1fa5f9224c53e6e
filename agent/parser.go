package agent

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/jd-opensource/oxygent-go/types"
)

// FinalAnswerTool is the pseudo-tool models use to deliver their answer.
const FinalAnswerTool = "final_answer"

// Corrective instructions fed back to the model on protocol violations.
const (
	msgBadFormat = "Please answer strictly according to the format. If you want to call a tool, please provide tool_name."
	msgBadJSON   = "JSON cannot be parsed correctly. Please provide a valid answer."
)

var fencedJSONPattern = regexp.MustCompile("(?s)```\\n*json(.*?)```")

// ExtractFirstJSON extracts the first JSON object from a model response.
// Fenced ```json blocks are preferred; otherwise the text between the first
// "{" and the last "}" is taken.
func ExtractFirstJSON(text string) string {
	matches := fencedJSONPattern.FindAllStringSubmatch(text, -1)

	jsonText := text
	if len(matches) > 0 {
		jsonText = strings.TrimSpace(matches[0][1])
	}

	if !strings.HasPrefix(jsonText, "{") || !strings.HasSuffix(jsonText, "}") {
		if start, end := strings.Index(jsonText, "{"), strings.LastIndex(jsonText, "}"); start >= 0 && end > start {
			jsonText = jsonText[start : end+1]
		}
	}

	// With at most one fenced block the widest brace span of the whole
	// response wins; models frequently emit the object outside the fence.
	if len(matches) <= 1 {
		if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
			jsonText = text[start : end+1]
		}
	}

	return jsonText
}

// ParseResponse classifies a raw model response: a tool call, a final
// answer, or a protocol violation carrying a corrective instruction.
func ParseResponse(raw string) types.LLMResponse {
	var obj map[string]any
	if err := json.Unmarshal([]byte(ExtractFirstJSON(raw)), &obj); err != nil {
		if looksLikeToolCall(raw) {
			return types.LLMResponse{State: types.LLMStateErrorParse, Output: msgBadJSON, OriResponse: raw}
		}
		// Free-form text without the protocol markers is accepted as an answer.
		return types.LLMResponse{State: types.LLMStateAnswer, Output: raw, OriResponse: raw}
	}

	toolName, _ := obj["tool_name"].(string)
	if toolName == "" {
		return types.LLMResponse{State: types.LLMStateErrorParse, Output: msgBadFormat, OriResponse: raw}
	}

	args, _ := obj["arguments"].(map[string]any)
	if args == nil {
		args = map[string]any{}
	}
	// The protocol requires answer/query arguments to be strings.
	for _, key := range []string{"answer", "query"} {
		if v, ok := args[key]; ok {
			if _, isString := v.(string); !isString {
				b, err := json.Marshal(v)
				if err == nil {
					args[key] = string(b)
				}
			}
		}
	}
	think, _ := obj["think"].(string)

	inv := &types.ToolInvocation{Think: think, ToolName: toolName, Arguments: args}
	if toolName == FinalAnswerTool {
		answer, _ := args["answer"].(string)
		return types.LLMResponse{State: types.LLMStateAnswer, Output: answer, Invocation: inv, OriResponse: raw}
	}
	return types.LLMResponse{State: types.LLMStateToolCall, Invocation: inv, OriResponse: raw}
}

func looksLikeToolCall(raw string) bool {
	for _, tk := range []string{"tool_name", "arguments", "{", "}"} {
		if !strings.Contains(raw, tk) {
			return false
		}
	}
	return true
}
