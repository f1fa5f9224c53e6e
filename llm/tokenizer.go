package llm

import (
	"github.com/pkoukk/tiktoken-go"

	"github.com/jd-opensource/oxygent-go/types"
)

const fallbackEncoding = "cl100k_base"

// CountTokens counts tokens for the given model, falling back to the
// cl100k_base encoding and finally to a bytes/4 estimate for models
// tiktoken does not know.
func CountTokens(model, text string) int {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
	}
	if err != nil {
		return (len(text) + 3) / 4
	}
	return len(enc.Encode(text, nil, nil))
}

// CountMessages counts the tokens of a message list, including a small
// per-message overhead for role framing.
func CountMessages(model string, msgs []types.Message) int {
	const perMessageOverhead = 4
	total := 0
	for _, m := range msgs {
		total += CountTokens(model, m.Content) + perMessageOverhead
	}
	return total
}

// TrimMessages drops the oldest non-system messages until the list fits
// within maxTokens. System messages are always kept.
func TrimMessages(model string, msgs []types.Message, maxTokens int) []types.Message {
	if maxTokens <= 0 || CountMessages(model, msgs) <= maxTokens {
		return msgs
	}

	out := append([]types.Message{}, msgs...)
	for CountMessages(model, out) > maxTokens {
		dropped := false
		for i, m := range out {
			if m.Role != types.RoleSystem {
				out = append(out[:i], out[i+1:]...)
				dropped = true
				break
			}
		}
		if !dropped {
			break
		}
	}
	return out
}
