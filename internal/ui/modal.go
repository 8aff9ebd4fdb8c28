package ui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"github.com/pintaildata/pintail/internal/api"
	"github.com/pintaildata/pintail/internal/keys"
)

// ModalState is a discriminated union interface for modal-specific state.
// Each modal type implements this interface with its own state struct,
// ensuring type-safe access to modal-specific fields.
type ModalState interface {
	modalState() // marker method to restrict implementations
	Title() string
	Help() string
	Render() string
	Update(msg tea.Msg) (ModalState, tea.Cmd)
}

// Modal represents a popup dialog with type-safe state management.
// The State field is nil when no modal is visible.
type Modal struct {
	State ModalState
	error string
}

// NewModal creates a new modal
func NewModal() *Modal {
	return &Modal{}
}

// Show displays a modal with the given state
func (m *Modal) Show(state ModalState) {
	m.State = state
	m.error = ""
}

// Hide hides the modal
func (m *Modal) Hide() {
	m.State = nil
	m.error = ""
}

// IsVisible returns whether the modal is visible
func (m *Modal) IsVisible() bool {
	return m.State != nil
}

// SetError sets an error message
func (m *Modal) SetError(err string) {
	m.error = err
}

// Update handles messages by delegating to the current state
func (m *Modal) Update(msg tea.Msg) (*Modal, tea.Cmd) {
	if m.State == nil {
		return m, nil
	}
	var cmd tea.Cmd
	m.State, cmd = m.State.Update(msg)
	return m, cmd
}

// View renders the modal centered on the screen
func (m *Modal) View(screenWidth, screenHeight int) string {
	if m.State == nil {
		return ""
	}

	content := m.State.Render()
	if m.error != "" {
		content += "\n" + StatusErrorStyle.Render(m.error)
	}

	modal := ModalStyle.Render(content)

	return lipgloss.Place(
		screenWidth, screenHeight,
		lipgloss.Center, lipgloss.Center,
		modal,
	)
}

// renderSelectableList renders options with the selected one highlighted.
func renderSelectableList(options []string, selected int) string {
	var sb strings.Builder
	for i, opt := range options {
		if i > 0 {
			sb.WriteString("\n")
		}
		if i == selected {
			sb.WriteString(ModalSelectedStyle.Render("> " + opt))
		} else {
			sb.WriteString(ModalItemStyle.Render("  " + opt))
		}
	}
	return sb.String()
}

// moveSelection applies up/down navigation to a list index.
func moveSelection(key string, index, length int) int {
	if length == 0 {
		return 0
	}
	switch key {
	case keys.Up, "k":
		index--
		if index < 0 {
			index = length - 1
		}
	case keys.Down, "j":
		index++
		if index >= length {
			index = 0
		}
	}
	return index
}

// =============================================================================
// OpenConversationState - browse the conversation directory
// =============================================================================

type OpenConversationState struct {
	Sessions []api.SessionSummary
	Index    int
}

func (*OpenConversationState) modalState() {}

func (s *OpenConversationState) Title() string { return "Open Conversation" }

func (s *OpenConversationState) Help() string {
	return "up/down: select  Enter: open  Esc: cancel"
}

func (s *OpenConversationState) Render() string {
	title := ModalTitleStyle.Render(s.Title())

	if len(s.Sessions) == 0 {
		empty := lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Italic(true).
			Render("No conversations yet. Press ctrl+t to start one.")
		return lipgloss.JoinVertical(lipgloss.Left, title, empty, ModalHelpStyle.Render("Esc: close"))
	}

	options := make([]string, len(s.Sessions))
	for i, session := range s.Sessions {
		label := session.Title
		if label == "" {
			label = session.ID
		}
		if session.Preview != "" {
			label = fmt.Sprintf("%s · %s", label, session.Preview)
		}
		label = runewidth.Truncate(label, ModalWidth-8, "…")
		options[i] = label
	}
	list := renderSelectableList(options, s.Index)
	help := ModalHelpStyle.Render(s.Help())
	return lipgloss.JoinVertical(lipgloss.Left, title, list, help)
}

func (s *OpenConversationState) Update(msg tea.Msg) (ModalState, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyPressMsg); ok {
		s.Index = moveSelection(keyMsg.String(), s.Index, len(s.Sessions))
	}
	return s, nil
}

// Selected returns the chosen session, or nil.
func (s *OpenConversationState) Selected() *api.SessionSummary {
	if s.Index < 0 || s.Index >= len(s.Sessions) {
		return nil
	}
	session := s.Sessions[s.Index]
	return &session
}

// NewOpenConversationState creates a directory browser.
func NewOpenConversationState(sessions []api.SessionSummary) *OpenConversationState {
	return &OpenConversationState{Sessions: sessions}
}
