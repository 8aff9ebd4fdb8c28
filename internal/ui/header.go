package ui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
)

// Header represents the top header bar
type Header struct {
	width        int
	title        string
	streamStatus string
}

// NewHeader creates a new header
func NewHeader() *Header {
	return &Header{}
}

// SetWidth sets the header width
func (h *Header) SetWidth(width int) {
	h.width = width
}

// SetTitle sets the active conversation title to display
func (h *Header) SetTitle(title string) {
	h.title = title
}

// SetStreamStatus sets the stream status text shown next to the title
// ("connecting", "streaming", "error", or "" when idle).
func (h *Header) SetStreamStatus(status string) {
	h.streamStatus = status
}

// View renders the header
func (h *Header) View() string {
	titleText := " pintail"
	var rightText string
	if h.title != "" {
		rightText = h.title
		if h.streamStatus != "" {
			rightText += " (" + h.streamStatus + ")"
		}
		rightText += " "
	}

	paddingLen := h.width - len(titleText) - len(rightText)
	if paddingLen < 0 {
		paddingLen = 0
	}

	fullContent := titleText + strings.Repeat(" ", paddingLen) + rightText

	return h.renderGradient(fullContent, h.streamStatus)
}

// parseHexColor parses a hex color string (e.g., "#14B8A6") into RGB components
func parseHexColor(hex string) (r, g, b int) {
	if len(hex) == 7 && hex[0] == '#' {
		fmt.Sscanf(hex[1:], "%02x%02x%02x", &r, &g, &b)
	}
	return
}

// renderGradient renders the content with a theme-aware gradient background.
// streamStatus is used to identify and mute the status portion of the text.
func (h *Header) renderGradient(content string, streamStatus string) string {
	if len(content) == 0 {
		return ""
	}

	theme := CurrentTheme()
	startR, startG, startB := parseHexColor(theme.Primary)
	// End color: fade to the main background
	endR, endG, endB := parseHexColor(theme.Bg)

	textColor := lipgloss.Color(theme.Text)
	mutedColor := lipgloss.Color(theme.TextMuted)

	statusStart := -1
	if streamStatus != "" {
		statusStart = strings.Index(content, "("+streamStatus+")")
	}

	runes := []rune(content)
	width := len(runes)
	var result strings.Builder

	for i, r := range runes {
		t := float64(i) / float64(width)

		cr := int(float64(startR)*(1-t) + float64(endR)*t)
		cg := int(float64(startG)*(1-t) + float64(endG)*t)
		cb := int(float64(startB)*(1-t) + float64(endB)*t)

		bgColor := lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", cr, cg, cb))

		inStatus := statusStart >= 0 && i >= statusStart

		style := lipgloss.NewStyle().
			Background(bgColor).
			Bold(i < 8) // Bold for the "pintail" title

		if inStatus {
			style = style.Foreground(mutedColor)
		} else {
			style = style.Foreground(textColor)
		}

		result.WriteString(style.Render(string(r)))
	}

	return result.String()
}
