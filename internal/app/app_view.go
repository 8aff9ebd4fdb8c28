package app

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/pintaildata/pintail/internal/api"
	"github.com/pintaildata/pintail/internal/chat"
	"github.com/pintaildata/pintail/internal/stream"
	"github.com/pintaildata/pintail/internal/ui"
)

// updateSizes recalculates and applies dimensions to all UI components
func (m *Model) updateSizes() {
	ctx := ui.GetViewContext()
	ctx.UpdateTerminalSize(m.width, m.height)

	m.header.SetWidth(ctx.TerminalWidth)
	m.tabBar.SetWidth(ctx.TerminalWidth)
	m.footer.SetWidth(ctx.TerminalWidth)
	m.chat.SetSize(ctx.ChatWidth, ctx.ContentHeight)
}

// syncChrome pushes engine state into the header, tab bar, and footer.
// Call after any registry or subscription change.
func (m *Model) syncChrome() {
	tabs := m.registry.Tabs()
	activeID := m.registry.ActiveID()
	attachedTab, _ := m.subscriber.Attached()

	items := make([]ui.TabItem, 0, len(tabs))
	for _, tab := range tabs {
		items = append(items, ui.TabItem{
			Title:     tab.Title,
			Active:    tab.ID == activeID,
			Streaming: m.states.GetActiveRunID(tab.ID) != "",
			Loading:   m.states.IsLoading(tab.ID),
		})
	}
	m.tabBar.SetTabs(items)

	title := ""
	status := ""
	if active := m.registry.Active(); active != nil {
		title = active.Title
		if attachedTab == active.ID {
			if s := m.subscriber.Status(); s != stream.StatusIdle {
				status = s.String()
			}
		}
	}
	m.header.SetTitle(title)
	m.header.SetStreamStatus(status)

	streaming := attachedTab != "" && attachedTab == activeID
	m.footer.SetContext(len(tabs) > 0, streaming, m.modal.IsVisible())
	m.chat.SetFocused(!m.modal.IsVisible())
}

// refreshTurns rebuilds the active tab's turn projection from the cached
// detail and any live events, and pushes it to the chat panel.
func (m *Model) refreshTurns() {
	active := m.registry.Active()
	if active == nil {
		m.chat.ClearTab()
		return
	}

	detail := m.states.GetDetail(active.ID)
	activeRunID := m.states.GetActiveRunID(active.ID)

	var live []api.StreamEvent
	isStreaming := false
	if attachedTab, _ := m.subscriber.Attached(); attachedTab == active.ID {
		live = m.subscriber.Events()
		status := m.subscriber.Status()
		isStreaming = status == stream.StatusStreaming || status == stream.StatusConnecting
	}

	turns := chat.BuildTurns(detail, live, isStreaming, activeRunID)
	m.chat.SetTurns(turns)
	m.chat.SetLoading(m.states.IsLoading(active.ID))
}

// View renders the app
func (m *Model) View() tea.View {
	var v tea.View
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		v.SetContent("Loading...")
		return v
	}

	view := lipgloss.JoinVertical(
		lipgloss.Left,
		m.header.View(),
		m.tabBar.View(),
		m.chat.View(),
		m.footer.View(),
	)

	if m.modal.IsVisible() {
		v.SetContent(m.modal.View(m.width, m.height))
		return v
	}

	v.SetContent(view)
	return v
}
