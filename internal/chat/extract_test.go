package chat

import (
	"strings"
	"testing"

	"github.com/pintaildata/pintail/internal/api"
)

func TestExtractTextShapes(t *testing.T) {
	tests := []struct {
		name    string
		content any
		want    string
	}{
		{"plain string", "hello", "hello"},
		{"json encoded string", `"hello"`, "hello"},
		{"text map", map[string]any{"text": "from text"}, "from text"},
		{"nested content", map[string]any{"content": "inner"}, "inner"},
		{"doubly nested", map[string]any{"content": map[string]any{"text": "deep"}}, "deep"},
		{"block list", []any{
			map[string]any{"type": "tool_use", "name": "x"},
			map[string]any{"type": "text", "text": "block text"},
		}, "block text"},
		{"nil", nil, ""},
		{"number", 42, ""},
		{"empty map", map[string]any{}, ""},
		{"empty list", []any{}, ""},
		{"unparseable quoted string", `"unterminated`, `"unterminated`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractText(tt.content); got != tt.want {
				t.Errorf("ExtractText(%v) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}

func TestExtractTextPrefersTextOverContent(t *testing.T) {
	content := map[string]any{
		"text":    "primary",
		"content": "secondary",
	}
	if got := ExtractText(content); got != "primary" {
		t.Errorf("ExtractText = %q, want the text field to win", got)
	}
}

func TestPreviewWalksBackwards(t *testing.T) {
	messages := []api.Message{
		{Role: api.RoleUser, Content: "first question"},
		{Role: api.RoleAssistant, Content: "early answer"},
		{Role: api.RoleUser, Content: "second question"},
		{Role: api.RoleAssistant, Content: "latest answer"},
	}
	if got := Preview(messages); got != "latest answer" {
		t.Errorf("Preview = %q, want the most recent assistant text", got)
	}
}

func TestPreviewSkipsEmptyAssistantContent(t *testing.T) {
	messages := []api.Message{
		{Role: api.RoleAssistant, Content: "useful"},
		{Role: api.RoleAssistant, Content: map[string]any{}},
	}
	if got := Preview(messages); got != "useful" {
		t.Errorf("Preview = %q, want fallback past empty content", got)
	}
}

func TestPreviewNoAssistantMessages(t *testing.T) {
	messages := []api.Message{
		{Role: api.RoleUser, Content: "just me"},
	}
	if got := Preview(messages); got != "" {
		t.Errorf("Preview = %q, want empty", got)
	}
}

func TestPreviewTruncatesAndFlattens(t *testing.T) {
	long := strings.Repeat("word ", 50) + "\nsecond line"
	messages := []api.Message{
		{Role: api.RoleAssistant, Content: long},
	}
	got := Preview(messages)
	if strings.Contains(got, "\n") {
		t.Error("preview should be a single line")
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("long preview should end with ellipsis, got %q", got)
	}
}

func TestTruncateDisplay(t *testing.T) {
	if got := TruncateDisplay("short", 10); got != "short" {
		t.Errorf("TruncateDisplay short = %q", got)
	}
	got := TruncateDisplay("a very long string that exceeds the width", 10)
	if !strings.HasSuffix(got, "…") {
		t.Errorf("truncated string should end with ellipsis, got %q", got)
	}
	// Wide runes count as two cells
	wide := TruncateDisplay("日本語のテキストです", 8)
	if wide == "日本語のテキストです" {
		t.Error("wide-rune string should have been truncated")
	}
}
