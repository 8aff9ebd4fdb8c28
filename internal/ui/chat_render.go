package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/pintaildata/pintail/internal/api"
	"github.com/pintaildata/pintail/internal/chat"
)

// highlightCode applies syntax highlighting to code using chroma
func highlightCode(code, language string) string {
	if language == "" {
		// Most answers in a data workspace embed SQL.
		language = "sql"
	}
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(CurrentTheme().GetChromaStyle())
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}

	return buf.String()
}

// renderMarkdown renders markdown content with syntax-highlighted code blocks
func renderMarkdown(content string, width int) string {
	if width <= 0 {
		width = DefaultWrapWidth
	}

	var result strings.Builder
	lines := strings.Split(content, "\n")
	inCodeBlock := false
	codeBlockLang := ""
	var codeBlockContent strings.Builder

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			if !inCodeBlock {
				inCodeBlock = true
				codeBlockLang = strings.TrimSpace(strings.TrimPrefix(line, "```"))
				codeBlockContent.Reset()
			} else {
				inCodeBlock = false
				highlighted := highlightCode(codeBlockContent.String(), codeBlockLang)
				result.WriteString(highlighted)
				result.WriteString("\n")
				codeBlockLang = ""
			}
			continue
		}

		if inCodeBlock {
			if codeBlockContent.Len() > 0 {
				codeBlockContent.WriteString("\n")
			}
			codeBlockContent.WriteString(line)
			continue
		}

		switch {
		case strings.HasPrefix(line, "### "):
			result.WriteString(MarkdownH3Style.Render(strings.TrimPrefix(line, "### ")))
		case strings.HasPrefix(line, "## "):
			result.WriteString(MarkdownH2Style.Render(strings.TrimPrefix(line, "## ")))
		case strings.HasPrefix(line, "# "):
			result.WriteString(MarkdownH1Style.Render(strings.TrimPrefix(line, "# ")))
		case strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* "):
			result.WriteString(MarkdownListBulletStyle.Render("• "))
			result.WriteString(line[2:])
		default:
			result.WriteString(line)
		}
		result.WriteString("\n")
	}

	// Ended while still inside a code block (mid-stream): render what we have
	if inCodeBlock {
		result.WriteString(highlightCode(codeBlockContent.String(), codeBlockLang))
	}

	return strings.TrimRight(result.String(), "\n")
}

// toolMarker returns the lifecycle marker for a grouped tool invocation.
func toolMarker(state chat.ToolCallState) string {
	switch state {
	case chat.ToolCompleted:
		return ToolCompletedStyle.Render("●")
	case chat.ToolError:
		return ToolErrorStyle.Render("✗")
	default:
		return ToolPendingStyle.Render("○")
	}
}

// compactJSON renders a tool input/output value on one line for display.
func compactJSON(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// renderToolEvents renders the grouped tool invocations of a turn.
func renderToolEvents(grouped []chat.GroupedToolEvent, wrapWidth int) string {
	var sb strings.Builder
	for i, tool := range grouped {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("  ")
		sb.WriteString(toolMarker(tool.State))
		sb.WriteString(" ")
		sb.WriteString(ToolNameStyle.Render(tool.ToolName))

		if detail := chat.TruncateDisplay(compactJSON(tool.Input), wrapWidth-len(tool.ToolName)-8); detail != "" {
			sb.WriteString(ToolDetailStyle.Render(" " + detail))
		}
		if tool.State == chat.ToolError && tool.Error != "" {
			sb.WriteString("\n    ")
			sb.WriteString(StatusErrorStyle.Render(chat.TruncateDisplay(tool.Error, wrapWidth-6)))
		}
	}
	return sb.String()
}

// renderTurn renders one reconciled turn: the user prompt, the agent's
// reasoning and tool activity, then the assistant answer.
func renderTurn(turn chat.ChatTurn, wrapWidth int) string {
	var sections []string

	for _, msg := range turn.UserMessages {
		var sb strings.Builder
		sb.WriteString(ChatUserStyle.Render("You:"))
		sb.WriteString("\n")
		sb.WriteString(ChatMessageStyle.Render(strings.TrimSpace(chat.ExtractText(msg.Content))))
		sections = append(sections, sb.String())
	}

	if turn.ReasoningText != "" {
		sections = append(sections, ChatReasoningStyle.Width(wrapWidth).Render(strings.TrimSpace(turn.ReasoningText)))
	}

	if len(turn.GroupedToolEvents) > 0 {
		sections = append(sections, renderToolEvents(turn.GroupedToolEvents, wrapWidth))
	}

	for _, msg := range turn.AssistantMessages {
		if section := renderAnswer(chat.ExtractText(msg.Content), wrapWidth); section != "" {
			sections = append(sections, section)
		}
	}

	// While the answer has not been persisted yet, the streamed message
	// events stand in for it. The authoritative fetch supersedes them.
	if len(turn.AssistantMessages) == 0 {
		if section := renderAnswer(liveAnswerText(turn.Events), wrapWidth); section != "" {
			sections = append(sections, section)
		}
	}

	return strings.Join(sections, "\n\n")
}

// renderAnswer renders one assistant answer under its label. Empty text
// renders nothing.
func renderAnswer(text string, wrapWidth int) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(ChatAssistantStyle.Render("Assistant:"))
	sb.WriteString("\n")
	sb.WriteString(renderMarkdown(text, wrapWidth))
	return sb.String()
}

// liveAnswerText assembles the streamed answer of a turn from its message
// events. A final event carries the whole message and wins; otherwise the
// chunks concatenate in arrival order.
func liveAnswerText(events []api.StreamEvent) string {
	var sb strings.Builder
	for _, ev := range events {
		if ev.Type != api.EventTypeMessage {
			continue
		}
		if ev.Subtype == api.SubtypeFinal {
			return chat.ExtractText(ev.Content)
		}
		sb.WriteString(chat.ExtractText(ev.Content))
	}
	return sb.String()
}

// RenderTurns renders a full conversation, separating turns by blank lines.
func RenderTurns(turns []chat.ChatTurn, wrapWidth int) string {
	parts := make([]string, 0, len(turns))
	for _, turn := range turns {
		if rendered := renderTurn(turn, wrapWidth); rendered != "" {
			parts = append(parts, rendered)
		}
	}
	return strings.Join(parts, "\n\n")
}
