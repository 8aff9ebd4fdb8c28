package app

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/pintaildata/pintail/internal/keys"
	"github.com/pintaildata/pintail/internal/logger"
	"github.com/pintaildata/pintail/internal/ui"
)

// handleModalKey handles keys while a modal is visible. Enter confirms,
// Escape cancels, everything else goes to the modal state.
func (m *Model) handleModalKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keys.Escape:
		m.modal.Hide()
		m.syncChrome()
		return m, nil

	case keys.Enter:
		return m.confirmModal()
	}

	modal, cmd := m.modal.Update(msg)
	m.modal = modal
	return m, cmd
}

// confirmModal applies the visible modal's selection.
func (m *Model) confirmModal() (tea.Model, tea.Cmd) {
	switch state := m.modal.State.(type) {
	case *ui.OpenConversationState:
		return m.openSelectedSession(state)

	case *ui.SettingsState:
		return m.applySettings(state)
	}

	m.modal.Hide()
	m.syncChrome()
	return m, nil
}

// openSelectedSession opens the chosen directory entry in a tab.
func (m *Model) openSelectedSession(state *ui.OpenConversationState) (tea.Model, tea.Cmd) {
	session := state.Selected()
	m.modal.Hide()
	if session == nil {
		m.syncChrome()
		return m, nil
	}

	tab, evicted, err := m.registry.OpenSession(*session)
	if err != nil {
		m.syncChrome()
		return m, m.flashCmd("could not open conversation", true)
	}
	if evicted != nil {
		m.states.Delete(evicted.ID)
	}

	logger.WithTab(tab.ID).Debug("conversation opened from directory", "sessionID", session.ID)
	m.persistLayout()
	m.refreshTurns()
	m.syncChrome()
	return m, m.activateTabCmd()
}

// applySettings writes the settings form values to config and applies the
// theme immediately.
func (m *Model) applySettings(state *ui.SettingsState) (tea.Model, tea.Cmd) {
	result := state.Result()
	m.modal.Hide()

	m.config.SetDefaultModel(result.Model)
	m.config.SetDataSource(strings.TrimSpace(result.DataSource))
	m.config.SetNotificationsEnabled(result.Notifications)
	if result.Theme != "" {
		m.config.SetTheme(result.Theme)
		ui.SetThemeByName(result.Theme)
	}
	if err := m.config.Save(); err != nil {
		logger.ComponentLogger("App").Warn("config save failed", "error", err)
		m.syncChrome()
		return m, m.flashCmd("settings not saved", true)
	}

	m.syncChrome()
	return m, m.flashCmd("settings saved", false)
}
