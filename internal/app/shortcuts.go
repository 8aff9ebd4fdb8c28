package app

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/pintaildata/pintail/internal/clipboard"
	"github.com/pintaildata/pintail/internal/keys"
	"github.com/pintaildata/pintail/internal/logger"
	"github.com/pintaildata/pintail/internal/ui"
)

// handleKeyPress handles global keyboard input. Returns (nil, nil) when the
// key should fall through to the chat panel (typing, scrolling).
func (m *Model) handleKeyPress(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.modal.IsVisible() {
		return m.handleModalKey(msg)
	}

	if n, ok := keys.IsAltDigit(key); ok {
		return m.switchToTabNumber(n)
	}

	switch key {
	case keys.CtrlC:
		m.persistLayout()
		return m, tea.Quit

	case keys.CtrlT:
		return m.openNewTab()

	case keys.CtrlW:
		return m.closeActiveTab()

	case keys.CtrlO:
		m.modal.Show(ui.NewOpenConversationState(m.directory.Sessions()))
		m.syncChrome()
		// Refresh behind the modal so the list is current by the time
		// the user picks.
		return m, m.refreshDirectoryCmd()

	case keys.CtrlP:
		m.modal.Show(ui.NewSettingsState(
			availableModels,
			m.config.GetDefaultModel(),
			m.config.GetDataSource(),
			string(ui.CurrentThemeName()),
			m.config.AreNotificationsEnabled(),
		))
		m.syncChrome()
		return m, nil

	case keys.CtrlY:
		return m.copyLastAnswer()

	case keys.CtrlR:
		var cmds []tea.Cmd
		cmds = append(cmds, m.refreshDirectoryCmd())
		if active := m.registry.Active(); active != nil && active.SessionID != "" && !m.states.IsLoading(active.ID) {
			m.loader.MarkLoading(active.ID)
			cmds = append(cmds, m.loadDetailCmd(*active))
		}
		m.syncChrome()
		return m, tea.Batch(cmds...)

	case keys.Enter:
		return m.submitPrompt()

	case keys.Escape:
		m.chat.ClearError()
		return m, nil
	}

	return nil, nil
}

// openNewTab opens an empty unbound tab.
func (m *Model) openNewTab() (tea.Model, tea.Cmd) {
	if _, err := m.registry.AddTab(); err != nil {
		return m, m.flashCmd("tab limit reached, close a tab first", true)
	}
	m.refreshTurns()
	m.syncChrome()
	m.persistLayout()
	return m, nil
}

// closeActiveTab closes the active tab and releases its cached state.
func (m *Model) closeActiveTab() (tea.Model, tea.Cmd) {
	activeID := m.registry.ActiveID()
	if activeID == "" {
		return m, nil
	}
	if closed := m.registry.CloseTab(activeID); closed != nil {
		m.states.Delete(closed.ID)
	}
	m.persistLayout()
	m.refreshTurns()
	m.syncChrome()
	return m, m.activateTabCmd()
}

// switchToTabNumber activates the nth tab in display order (1-based).
func (m *Model) switchToTabNumber(n int) (tea.Model, tea.Cmd) {
	tabs := m.registry.Tabs()
	if n < 1 || n > len(tabs) {
		return m, nil
	}
	if !m.registry.SwitchTab(tabs[n-1].ID) {
		return m, nil
	}
	m.persistLayout()
	m.refreshTurns()
	m.syncChrome()
	return m, m.activateTabCmd()
}

// submitPrompt sends the chat input as a prompt on the active tab.
func (m *Model) submitPrompt() (tea.Model, tea.Cmd) {
	prompt := strings.TrimSpace(m.chat.GetInput())
	if prompt == "" {
		return m, nil
	}

	m.chat.ClearInput()
	m.chat.ClearError()
	m.chat.SetWaiting(true)
	m.syncChrome()
	return m, tea.Batch(m.submitCmd(prompt), ui.StopwatchTick())
}

// copyLastAnswer writes the most recent assistant reply to the clipboard.
func (m *Model) copyLastAnswer() (tea.Model, tea.Cmd) {
	if !m.clipboardOK {
		return m, m.flashCmd("clipboard unavailable", true)
	}
	answer := m.chat.LastAnswer()
	if answer == "" {
		return m, m.flashCmd("nothing to copy", true)
	}
	if err := clipboard.WriteText(answer); err != nil {
		logger.ComponentLogger("App").Warn("clipboard write failed", "error", err)
		return m, m.flashCmd("copy failed", true)
	}
	return m, m.flashCmd("answer copied", false)
}
