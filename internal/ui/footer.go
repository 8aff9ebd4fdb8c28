package ui

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// KeyBinding represents a keyboard shortcut
type KeyBinding struct {
	Key  string
	Desc string
}

// Footer represents the bottom footer bar with keybindings
type Footer struct {
	width      int
	hasTabs    bool // At least one tab is open
	streaming  bool // Active tab has a run in flight
	modalOpen  bool // A modal is showing
	flash      string
	flashError bool
}

// NewFooter creates a new footer
func NewFooter() *Footer {
	return &Footer{}
}

// SetContext updates the footer's context for conditional bindings
func (f *Footer) SetContext(hasTabs, streaming, modalOpen bool) {
	f.hasTabs = hasTabs
	f.streaming = streaming
	f.modalOpen = modalOpen
}

// SetWidth sets the footer width
func (f *Footer) SetWidth(width int) {
	f.width = width
}

// SetFlash shows a transient status message in place of the bindings.
func (f *Footer) SetFlash(msg string, isError bool) {
	f.flash = msg
	f.flashError = isError
}

// ClearFlash removes the transient message.
func (f *Footer) ClearFlash() {
	f.flash = ""
	f.flashError = false
}

// View renders the footer
func (f *Footer) View() string {
	if f.flash != "" {
		style := StatusLoadingStyle
		if f.flashError {
			style = StatusErrorStyle
		}
		return FooterStyle.Width(f.width).Render(style.Render(f.flash))
	}

	var bindings []KeyBinding
	switch {
	case f.modalOpen:
		bindings = []KeyBinding{
			{Key: "↑/↓", Desc: "navigate"},
			{Key: "enter", Desc: "confirm"},
			{Key: "esc", Desc: "cancel"},
		}
	case f.streaming:
		bindings = []KeyBinding{
			{Key: "enter", Desc: "send"},
			{Key: "ctrl+t", Desc: "new tab"},
			{Key: "alt+1-9", Desc: "switch tab"},
			{Key: "pgup/dn", Desc: "scroll"},
			{Key: "ctrl+c", Desc: "quit"},
		}
	case f.hasTabs:
		bindings = []KeyBinding{
			{Key: "enter", Desc: "send"},
			{Key: "ctrl+t", Desc: "new tab"},
			{Key: "ctrl+w", Desc: "close tab"},
			{Key: "alt+1-9", Desc: "switch tab"},
			{Key: "ctrl+o", Desc: "open conversation"},
			{Key: "ctrl+y", Desc: "copy answer"},
			{Key: "ctrl+c", Desc: "quit"},
		}
	default:
		bindings = []KeyBinding{
			{Key: "ctrl+t", Desc: "new tab"},
			{Key: "ctrl+o", Desc: "open conversation"},
			{Key: "ctrl+p", Desc: "settings"},
			{Key: "ctrl+c", Desc: "quit"},
		}
	}

	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		key := FooterKeyStyle.Render(b.Key)
		desc := FooterDescStyle.Render(": " + b.Desc)
		parts = append(parts, key+desc)
	}

	content := strings.Join(parts, "  "+lipgloss.NewStyle().Foreground(ColorBorder).Render("|")+"  ")
	return FooterStyle.Width(f.width).Render(content)
}
