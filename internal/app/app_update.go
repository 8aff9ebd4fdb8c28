package app

import (
	tea "charm.land/bubbletea/v2"

	"github.com/pintaildata/pintail/internal/chat"
	"github.com/pintaildata/pintail/internal/errors"
	"github.com/pintaildata/pintail/internal/logger"
	"github.com/pintaildata/pintail/internal/notification"
	"github.com/pintaildata/pintail/internal/stream"
	"github.com/pintaildata/pintail/internal/ui"
)

// Update handles messages. This is the core Bubble Tea update function that
// routes all messages to the appropriate handlers.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateSizes()
		m.refreshTurns()
		m.syncChrome()

	case tea.KeyPressMsg:
		if model, cmd := m.handleKeyPress(msg); model != nil {
			return model, cmd
		}
		// Not handled here; falls through to the chat panel

	case DirectoryRefreshedMsg:
		return m.handleDirectoryRefreshed(msg)

	case SessionDetailLoadedMsg:
		return m.handleDetailLoaded(msg)

	case SubmissionFinishedMsg:
		return m.handleSubmissionFinished(msg)

	case StreamNotificationMsg:
		return m.handleStreamNotification(msg)

	case FlashClearMsg:
		m.footer.ClearFlash()

	case ui.StopwatchTickMsg:
		// The waiting stopwatch doubles as a render heartbeat: the turn
		// projection picks up the optimistic message without an extra
		// message type.
		m.refreshTurns()
	}

	if m.modal.IsVisible() {
		modal, cmd := m.modal.Update(msg)
		m.modal = modal
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)
	}

	chatPanel, cmd := m.chat.Update(msg)
	m.chat = chatPanel
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// handleDirectoryRefreshed folds a directory refresh into the model. The
// first successful refresh replays the saved tab layout.
func (m *Model) handleDirectoryRefreshed(msg DirectoryRefreshedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		logger.ComponentLogger("App").Warn("directory refresh failed", "error", msg.Err)
		return m, m.flashCmd("could not reach the workspace backend", true)
	}

	var cmds []tea.Cmd
	if !m.restored {
		m.restored = true
		restored := chat.RestoreTabs(m.registry, m.directory, m.config.GetSavedTabs(), m.config.GetActiveTabID())
		if restored > 0 {
			if cmd := m.activateTabCmd(); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
	}

	// Keep an open directory browser current.
	if _, ok := m.modal.State.(*ui.OpenConversationState); ok {
		m.modal.Show(ui.NewOpenConversationState(m.directory.Sessions()))
	}

	m.refreshTurns()
	m.syncChrome()
	return m, tea.Batch(cmds...)
}

// handleDetailLoaded folds a finished detail fetch into the model.
func (m *Model) handleDetailLoaded(msg SessionDetailLoadedMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if msg.Err != nil {
		// The stale detail, if any, is still rendered.
		cmd = m.flashCmd("could not load conversation", true)
	}
	// The fetch can reveal an in-flight run (a session that is still
	// active on the backend).
	m.attachActiveRun()
	m.refreshTurns()
	m.syncChrome()
	return m, cmd
}

// handleSubmissionFinished reacts to a resolved prompt submission: on success
// the subscriber attaches to the new run, on failure the optimistic message
// stays next to the error.
func (m *Model) handleSubmissionFinished(msg SubmissionFinishedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.chat.SetWaiting(false)
		m.refreshTurns()
		m.syncChrome()
		return m, m.flashCmd(submissionErrorText(msg.Err), true)
	}

	result := msg.Result
	active := m.registry.Active()
	if result.RunID != "" && active != nil && active.ID == result.TabID {
		m.subscriber.Attach(result.TabID, result.RunID)
	} else {
		// Either accepted without a run, or the user switched tabs while
		// the submission was in flight. The run id is recorded per tab;
		// switching back attaches the stream then.
		m.chat.SetWaiting(false)
	}
	m.persistLayout()
	m.refreshTurns()
	m.syncChrome()
	return m, nil
}

// handleStreamNotification reacts to subscriber progress. Notifications from
// a superseded attachment are discarded by generation.
func (m *Model) handleStreamNotification(msg StreamNotificationMsg) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.listenStreamCmd()}

	if msg.Gen != m.subscriber.Gen() {
		return m, tea.Batch(cmds...)
	}

	status := m.subscriber.Status()
	if status == stream.StatusStreaming {
		m.chat.SetStreaming(true)
	}

	if status == stream.StatusError {
		m.chat.SetStreaming(false)
		m.chat.SetWaiting(false)
		cmds = append(cmds, m.flashCmd("event stream lost", true))
	}

	if m.subscriber.Completed() {
		cmds = append(cmds, m.finishRun(msg.TabID)...)
	}

	m.refreshTurns()
	m.syncChrome()
	return m, tea.Batch(cmds...)
}

// finishRun handles run completion for a tab: the in-flight run clears, the
// authoritative record is re-fetched, and a desktop notification fires when
// the completed run belongs to a tab the user is not looking at.
func (m *Model) finishRun(tabID string) []tea.Cmd {
	m.states.ClearActiveRunID(tabID)

	active := m.registry.Active()
	background := active == nil || active.ID != tabID
	if !background {
		m.chat.SetStreaming(false)
		m.chat.SetWaiting(false)
	}

	var cmds []tea.Cmd
	tab := m.registry.Get(tabID)
	if tab != nil && tab.SessionID != "" && !m.states.IsLoading(tabID) {
		m.loader.MarkLoading(tabID)
		cmds = append(cmds, m.loadDetailCmd(*tab))
	}

	if m.config.AreNotificationsEnabled() && tab != nil && background {
		title := tab.Title
		cmds = append(cmds, func() tea.Msg {
			if err := notification.RunCompleted(title); err != nil {
				logger.ComponentLogger("App").Debug("notification failed", "error", err)
			}
			return nil
		})
	}
	return cmds
}

// activateTabCmd schedules a detail fetch for the active tab if its cached
// record is absent or belongs to another session, and rebinds the stream to
// the tab's in-flight run.
func (m *Model) activateTabCmd() tea.Cmd {
	active := m.registry.Active()
	if active == nil {
		return nil
	}
	m.attachActiveRun()
	if !m.loader.NeedsLoad(*active) {
		return nil
	}
	m.loader.MarkLoading(active.ID)
	return m.loadDetailCmd(*active)
}

// attachActiveRun binds the stream subscription to the active tab's
// in-flight run. A run id can be present without a fresh submission:
// switching back to a tab whose run has not finished, or a detail fetch
// deriving one from a still-active session. No-op when already attached to
// that run.
func (m *Model) attachActiveRun() {
	active := m.registry.Active()
	if active == nil {
		return
	}
	runID := m.states.GetActiveRunID(active.ID)
	if runID == "" {
		return
	}
	if tabID, attachedRun := m.subscriber.Attached(); tabID == active.ID && attachedRun == runID {
		return
	}
	m.subscriber.Attach(active.ID, runID)
}

// submissionErrorText maps a submission failure to a short footer message.
func submissionErrorText(err error) string {
	if errors.Is(err, errors.KindCapacity) {
		return "tab limit reached, close a tab first"
	}
	return "message could not be sent"
}
