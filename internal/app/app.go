// Package app wires the conversation engine to the terminal UI: one Bubble
// Tea model owning the tab registry, the per-tab state cache, the stream
// subscriber, and the rendered panels. All engine mutations are driven from
// the Update loop; background work comes back as messages.
package app

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/pintaildata/pintail/internal/api"
	"github.com/pintaildata/pintail/internal/chat"
	"github.com/pintaildata/pintail/internal/clipboard"
	"github.com/pintaildata/pintail/internal/config"
	"github.com/pintaildata/pintail/internal/logger"
	"github.com/pintaildata/pintail/internal/stream"
	"github.com/pintaildata/pintail/internal/ui"
)

// Models the backend agent can run. The backend accepts any of these on
// create/append; the picker writes the choice to config.
var availableModels = []string{
	"analyst-small",
	"analyst-large",
	"reasoner",
}

const flashDuration = 3 * time.Second

// DirectoryRefreshedMsg is sent when a session directory refresh finishes.
type DirectoryRefreshedMsg struct {
	Err error
}

// SessionDetailLoadedMsg is sent when a tab's detail fetch finishes.
type SessionDetailLoadedMsg struct {
	TabID string
	Err   error
}

// SubmissionFinishedMsg is sent when a prompt submission resolves.
type SubmissionFinishedMsg struct {
	Result *chat.SubmitResult
	Err    error
}

// StreamNotificationMsg wraps a subscriber notification into the event loop.
type StreamNotificationMsg stream.Notification

// FlashClearMsg clears the transient footer message.
type FlashClearMsg struct{}

// Model is the main Bubble Tea model.
type Model struct {
	config  *config.Config
	version string

	client     api.Client
	registry   *chat.TabRegistry
	states     *chat.TabStateManager
	directory  *chat.SessionDirectory
	loader     *chat.DetailLoader
	submitter  *chat.Submitter
	subscriber *stream.Subscriber

	header *ui.Header
	tabBar *ui.TabBar
	chat   *ui.Chat
	footer *ui.Footer
	modal  *ui.Modal

	width  int
	height int

	restored    bool // saved tab layout has been replayed
	clipboardOK bool
}

// New creates the app model. version is injected at build time.
func New(cfg *config.Config, version string) *Model {
	if savedTheme := cfg.GetTheme(); savedTheme != "" {
		ui.SetThemeByName(savedTheme)
	}

	m := newModel(cfg, version, api.NewHTTPClient(cfg.GetBackendURL()), stream.DialWebsocket)

	if err := clipboard.Init(); err != nil {
		logger.ComponentLogger("App").Warn("clipboard unavailable", "error", err)
	} else {
		m.clipboardOK = true
	}

	return m
}

// newModel wires the engine and panels around an explicit client and stream
// dialer. Tests inject fakes here.
func newModel(cfg *config.Config, version string, client api.Client, dial stream.DialFunc) *Model {
	registry := chat.NewTabRegistry()
	states := chat.NewTabStateManager()
	directory := chat.NewSessionDirectory(client)
	subscriber := stream.NewSubscriber(client, dial)

	// The stream must be torn down before the active tab ever changes.
	registry.SetDeactivateHook(subscriber.Detach)

	return &Model{
		config:     cfg,
		version:    version,
		client:     client,
		registry:   registry,
		states:     states,
		directory:  directory,
		loader:     chat.NewDetailLoader(client, states, directory),
		submitter:  chat.NewSubmitter(client, registry, states, directory),
		subscriber: subscriber,
		header:     ui.NewHeader(),
		tabBar:     ui.NewTabBar(),
		chat:       ui.NewChat(),
		footer:     ui.NewFooter(),
		modal:      ui.NewModal(),
	}
}

// Init starts the directory refresh and the stream listener.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.refreshDirectoryCmd(), m.listenStreamCmd())
}

// refreshDirectoryCmd fetches the session list off the event loop.
func (m *Model) refreshDirectoryCmd() tea.Cmd {
	return func() tea.Msg {
		err := m.directory.Refresh(context.Background(), m.config.GetProjectID())
		return DirectoryRefreshedMsg{Err: err}
	}
}

// loadDetailCmd fetches a tab's session detail. MarkLoading must already have
// been called on the event loop.
func (m *Model) loadDetailCmd(tab chat.Tab) tea.Cmd {
	return func() tea.Msg {
		err := m.loader.Load(context.Background(), tab)
		return SessionDetailLoadedMsg{TabID: tab.ID, Err: err}
	}
}

// submitCmd dispatches a prompt. The optimistic message is installed inside
// Submit before the network round trip.
func (m *Model) submitCmd(prompt string) tea.Cmd {
	opts := chat.SubmitOptions{
		Model:    m.config.GetDefaultModel(),
		Metadata: m.submissionMetadata(),
	}
	return func() tea.Msg {
		result, err := m.submitter.Submit(context.Background(), prompt, opts)
		return SubmissionFinishedMsg{Result: result, Err: err}
	}
}

// submissionMetadata builds the contextual metadata that travels with every
// create/append. Opaque to the engine; the backend routes it to the agent.
func (m *Model) submissionMetadata() map[string]any {
	meta := map[string]any{}
	if projectID := m.config.GetProjectID(); projectID != "" {
		meta["project_id"] = projectID
	}
	if ds := m.config.GetDataSource(); ds != "" {
		meta["data_source"] = ds
	}
	if pinned := m.config.GetPinnedAssets(); len(pinned) > 0 {
		meta["pinned_assets"] = pinned
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}

// listenStreamCmd blocks on the subscriber's notification channel. Re-armed
// after every delivery.
func (m *Model) listenStreamCmd() tea.Cmd {
	return func() tea.Msg {
		n, ok := <-m.subscriber.Notify()
		if !ok {
			return nil
		}
		return StreamNotificationMsg(n)
	}
}

// flashCmd shows a transient footer message and schedules its removal.
func (m *Model) flashCmd(text string, isError bool) tea.Cmd {
	m.footer.SetFlash(text, isError)
	return tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return FlashClearMsg{}
	})
}

// persistLayout writes the current tab layout to config. Unbound tabs are
// omitted; they cannot be restored.
func (m *Model) persistLayout() {
	tabs := m.registry.Tabs()
	sessionIDs := make([]string, 0, len(tabs))
	for _, tab := range tabs {
		sessionIDs = append(sessionIDs, tab.SessionID)
	}
	activeID := ""
	if active := m.registry.Active(); active != nil {
		activeID = active.SessionID
	}
	m.config.SetTabLayout(sessionIDs, activeID)
	if err := m.config.Save(); err != nil {
		logger.ComponentLogger("App").Warn("config save failed", "error", err)
	}
}
