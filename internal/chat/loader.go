package chat

import (
	"context"

	"github.com/pintaildata/pintail/internal/api"
	"github.com/pintaildata/pintail/internal/logger"
)

// DetailLoader lazily fetches a session's authoritative record the first
// time a bound tab becomes active, and re-fetches it after the tab's run
// completes. Fetch results land in the tab state cache; failures preserve
// whatever was cached before (stale but usable beats blank).
type DetailLoader struct {
	client    api.Client
	states    *TabStateManager
	directory *SessionDirectory
}

// NewDetailLoader creates a detail loader.
func NewDetailLoader(client api.Client, states *TabStateManager, directory *SessionDirectory) *DetailLoader {
	return &DetailLoader{
		client:    client,
		states:    states,
		directory: directory,
	}
}

// NeedsLoad reports whether a tab needs a detail fetch: the tab is bound to
// a session, the cached detail is absent or for a different session, and no
// fetch is already in flight.
func (l *DetailLoader) NeedsLoad(tab Tab) bool {
	if tab.SessionID == "" {
		return false
	}
	if l.states.IsLoading(tab.ID) {
		return false
	}
	detail := l.states.GetDetail(tab.ID)
	return detail == nil || detail.ID != tab.SessionID
}

// Load fetches the session detail for a tab and installs it into the tab
// state cache. Call MarkLoading first (from the event loop) so concurrent
// activations do not double-fetch.
//
// On success the cached detail is replaced wholesale, the active run id is
// derived from the session status, and a preview for the session is
// republished to the directory. On failure the previous detail survives.
func (l *DetailLoader) Load(ctx context.Context, tab Tab) error {
	log := logger.WithTab(tab.ID)

	detail, err := l.client.GetSessionDetail(ctx, tab.SessionID, true)
	if err != nil {
		log.Warn("session detail fetch failed", "sessionID", tab.SessionID, "error", err)
		l.states.FailLoad(tab.ID)
		return err
	}

	l.states.SetDetail(tab.ID, detail)
	log.Debug("session detail loaded",
		"sessionID", detail.ID,
		"messages", len(detail.Messages),
		"events", len(detail.Events),
		"activeRunID", detail.ActiveRunID)

	if preview := Preview(detail.Messages); preview != "" {
		l.directory.PublishPreview(detail.ID, preview)
	}
	return nil
}

// MarkLoading flags the tab's fetch as in flight. Separate from Load so the
// flag is set synchronously on the event loop before the fetch is scheduled.
func (l *DetailLoader) MarkLoading(tabID string) {
	l.states.StartLoading(tabID)
}
