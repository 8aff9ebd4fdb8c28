package ui

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/pintaildata/pintail/internal/chat"
	"github.com/pintaildata/pintail/internal/keys"
)

// StopwatchTickMsg is sent to update the stopwatch display
type StopwatchTickMsg time.Time

// workingVerbs are playful status messages that cycle while a run is pending
var workingVerbs = []string{
	"Thinking",
	"Querying",
	"Joining",
	"Aggregating",
	"Scanning",
	"Crunching",
	"Sifting",
	"Sampling",
	"Slicing",
	"Pivoting",
	"Tallying",
	"Digesting",
}

func randomWorkingVerb() string {
	return workingVerbs[rand.Intn(len(workingVerbs))]
}

// Chat represents the conversation panel: the reconciled turn view plus the
// prompt input below it.
type Chat struct {
	viewport viewport.Model
	input    textarea.Model
	width    int
	height   int
	focused  bool

	turns     []chat.ChatTurn
	hasTab    bool
	loading   bool
	streaming bool
	waiting   bool // run accepted, no events yet
	lastError string
	waitStart time.Time
	waitVerb  string
}

// NewChat creates a new conversation panel
func NewChat() *Chat {
	ti := textarea.New()
	ti.Placeholder = "Ask about your data..."
	ti.CharLimit = 0
	ti.SetHeight(TextareaHeight)
	ti.ShowLineNumbers = false
	ti.Prompt = ""

	vp := viewport.New()
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	c := &Chat{
		viewport: vp,
		input:    ti,
	}
	c.updateContent()
	return c
}

// SetSize sets the panel dimensions
func (c *Chat) SetSize(width, height int) {
	c.width = width
	c.height = height

	vctx := GetViewContext()

	panelHeight := height - InputTotalHeight
	innerWidth := vctx.InnerWidth(width)
	viewportHeight := vctx.InnerHeight(panelHeight)
	if viewportHeight < 1 {
		viewportHeight = 1
	}

	c.viewport.SetWidth(innerWidth)
	c.viewport.SetHeight(viewportHeight)
	c.input.SetWidth(vctx.InnerWidth(width) - InputPaddingWidth)
	c.updateContent()
}

// SetFocused sets the focus state
func (c *Chat) SetFocused(focused bool) {
	c.focused = focused
	if focused {
		c.input.Focus()
	} else {
		c.input.Blur()
	}
}

// SetTurns installs the reconciled turns for the active tab.
func (c *Chat) SetTurns(turns []chat.ChatTurn) {
	c.turns = turns
	c.hasTab = true
	c.updateContent()
}

// ClearTab clears the panel when no tab is open.
func (c *Chat) ClearTab() {
	c.turns = nil
	c.hasTab = false
	c.loading = false
	c.streaming = false
	c.waiting = false
	c.lastError = ""
	c.updateContent()
}

// SetLoading marks the detail fetch as in flight.
func (c *Chat) SetLoading(loading bool) {
	c.loading = loading
	c.updateContent()
}

// SetStreaming marks whether live events are arriving for the active tab.
func (c *Chat) SetStreaming(streaming bool) {
	c.streaming = streaming
	if streaming {
		c.waiting = false
	}
	c.updateContent()
}

// SetWaiting marks a submitted run with no events yet; starts the stopwatch.
func (c *Chat) SetWaiting(waiting bool) {
	if waiting && !c.waiting {
		c.waitStart = time.Now()
		c.waitVerb = randomWorkingVerb()
	}
	c.waiting = waiting
	c.updateContent()
}

// IsWaiting returns whether a run is pending without events.
func (c *Chat) IsWaiting() bool {
	return c.waiting
}

// SetError shows an inline error beneath the conversation.
func (c *Chat) SetError(message string) {
	c.lastError = message
	c.updateContent()
}

// ClearError removes the inline error.
func (c *Chat) ClearError() {
	c.lastError = ""
	c.updateContent()
}

// GetInput returns the trimmed input text
func (c *Chat) GetInput() string {
	return strings.TrimSpace(c.input.Value())
}

// ClearInput clears the input field
func (c *Chat) ClearInput() {
	c.input.Reset()
}

// SetInput sets the input field value
func (c *Chat) SetInput(value string) {
	c.input.SetValue(value)
}

// LastAnswer returns the text of the most recent assistant message, for
// copying to the clipboard.
func (c *Chat) LastAnswer() string {
	for i := len(c.turns) - 1; i >= 0; i-- {
		msgs := c.turns[i].AssistantMessages
		for j := len(msgs) - 1; j >= 0; j-- {
			if text := strings.TrimSpace(chat.ExtractText(msgs[j].Content)); text != "" {
				return text
			}
		}
	}
	return ""
}

// StopwatchTick returns a command that sends a tick message after a delay
func StopwatchTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return StopwatchTickMsg(t)
	})
}

// formatElapsed formats a duration as a stopwatch string (e.g., "1.2s", "1:23")
func formatElapsed(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", mins, secs)
}

// renderNoTabMessage renders the placeholder when no tab is open
func (c *Chat) renderNoTabMessage() string {
	msgStyle := lipgloss.NewStyle().Foreground(ColorTextMuted)
	keyStyle := lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)

	var sb strings.Builder
	sb.WriteString(msgStyle.Italic(true).Render("No open conversation"))
	sb.WriteString("\n\n")
	sb.WriteString(msgStyle.Render("To get started:"))
	sb.WriteString("\n")
	sb.WriteString(msgStyle.Render("  • Press "))
	sb.WriteString(keyStyle.Render("ctrl+t"))
	sb.WriteString(msgStyle.Render(" to start a new conversation"))
	sb.WriteString("\n")
	sb.WriteString(msgStyle.Render("  • Press "))
	sb.WriteString(keyStyle.Render("ctrl+o"))
	sb.WriteString(msgStyle.Render(" to open an existing one"))
	return sb.String()
}

func (c *Chat) updateContent() {
	wrapWidth := c.viewport.Width()
	if wrapWidth <= 0 {
		wrapWidth = DefaultWrapWidth
	}

	var sb strings.Builder
	switch {
	case !c.hasTab:
		sb.WriteString(c.renderNoTabMessage())
	case c.loading && len(c.turns) == 0:
		sb.WriteString(StatusLoadingStyle.Render("Loading conversation..."))
	case len(c.turns) == 0 && !c.waiting:
		sb.WriteString(lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Italic(true).
			Render("Ask a question about your data..."))
	default:
		sb.WriteString(RenderTurns(c.turns, wrapWidth))

		if c.waiting && !c.streaming {
			if len(c.turns) > 0 {
				sb.WriteString("\n\n")
			}
			elapsed := time.Since(c.waitStart)
			stopwatchStyle := lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
			sb.WriteString(ChatAssistantStyle.Render("Assistant:"))
			sb.WriteString("\n")
			sb.WriteString(StatusLoadingStyle.Render(c.waitVerb + "... "))
			sb.WriteString(stopwatchStyle.Render(formatElapsed(elapsed)))
		}
	}

	if c.lastError != "" {
		sb.WriteString("\n\n")
		sb.WriteString(StatusErrorStyle.Render(c.lastError))
	}

	c.viewport.SetContent(sb.String())
	c.viewport.GotoBottom()
}

// Update handles messages
func (c *Chat) Update(msg tea.Msg) (*Chat, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg.(type) {
	case StopwatchTickMsg:
		if c.waiting {
			c.updateContent()
			cmds = append(cmds, StopwatchTick())
		}
		return c, tea.Batch(cmds...)
	}

	if c.focused && c.hasTab {
		if keyMsg, isKey := msg.(tea.KeyPressMsg); isKey {
			switch keyMsg.String() {
			case keys.PgUp, keys.PgDown, keys.CtrlU, keys.CtrlD, keys.Home, keys.End:
				var cmd tea.Cmd
				c.viewport, cmd = c.viewport.Update(msg)
				cmds = append(cmds, cmd)
				return c, tea.Batch(cmds...)
			}
		}

		var cmd tea.Cmd
		c.input, cmd = c.input.Update(msg)
		cmds = append(cmds, cmd)

		// Key events stop here so typing never scrolls the viewport
		if _, isKey := msg.(tea.KeyPressMsg); isKey {
			return c, tea.Batch(cmds...)
		}
	}

	var cmd tea.Cmd
	c.viewport, cmd = c.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return c, tea.Batch(cmds...)
}

// View renders the conversation panel
func (c *Chat) View() string {
	panelStyle := PanelStyle
	if c.focused {
		panelStyle = PanelFocusedStyle
	}

	var viewportContent string
	if !c.hasTab {
		viewportContent = c.renderNoTabMessage()
		return panelStyle.Width(c.width).Height(c.height).Render(viewportContent)
	}
	viewportContent = c.viewport.View()

	panelHeight := c.height - InputTotalHeight
	panel := panelStyle.Width(c.width).Height(panelHeight).Render(viewportContent)

	inputStyle := ChatInputStyle
	if c.focused {
		inputStyle = ChatInputFocusedStyle
	}
	inputArea := inputStyle.Width(c.width).Render(c.input.View())

	return lipgloss.JoinVertical(lipgloss.Left, panel, inputArea)
}
