package chat

import (
	"encoding/json"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/pintaildata/pintail/internal/api"
)

// PreviewLength is the display width previews are truncated to.
const PreviewLength = 80

// ExtractText extracts displayable text from a message or event content
// value. Content arrives in several shapes depending on which agent produced
// it; the patterns below are tried in a fixed order and the first non-empty
// match wins:
//
//  1. a plain string (a JSON-encoded string is unwrapped first)
//  2. a map with a "text" string
//  3. a map with a "content" value, recursively
//  4. a list of blocks, taking the first block that yields text
//
// Anything else yields "".
func ExtractText(content any) string {
	switch v := content.(type) {
	case nil:
		return ""
	case string:
		return unwrapJSONString(v)
	case map[string]any:
		if text, ok := v["text"].(string); ok && text != "" {
			return text
		}
		if inner, ok := v["content"]; ok {
			return ExtractText(inner)
		}
		return ""
	case []any:
		for _, block := range v {
			if text := ExtractText(block); text != "" {
				return text
			}
		}
		return ""
	default:
		return ""
	}
}

// unwrapJSONString unwraps one level of JSON string encoding: `"hi"` becomes
// `hi`. A string that is not a JSON-encoded string is returned unchanged.
func unwrapJSONString(s string) string {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) >= 2 && trimmed[0] == '"' && trimmed[len(trimmed)-1] == '"' {
		var decoded string
		if err := json.Unmarshal([]byte(trimmed), &decoded); err == nil {
			return decoded
		}
	}
	return s
}

// Preview derives a short session preview from the most recent assistant
// message: the first non-empty text found walking backwards, truncated to
// PreviewLength display cells and flattened to one line.
func Preview(messages []api.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != api.RoleAssistant {
			continue
		}
		if text := ExtractText(messages[i].Content); text != "" {
			return TruncateDisplay(flatten(text), PreviewLength)
		}
	}
	return ""
}

// TruncateDisplay truncates s to width display cells, appending an ellipsis
// when anything was cut. Width is measured in terminal cells, not bytes, so
// wide runes truncate correctly.
func TruncateDisplay(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// flatten collapses whitespace runs (including newlines) into single spaces.
func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
