package chat

import (
	"context"
	"sync"

	"github.com/pintaildata/pintail/internal/api"
)

// SessionDirectory holds the known conversation sessions for the current
// workspace, refreshed from the backend. Preview text is republished into
// the directory by the detail loader as conversations evolve.
type SessionDirectory struct {
	mu       sync.RWMutex
	client   api.Client
	sessions []api.SessionSummary
	previews map[string]string
	loaded   bool
}

// NewSessionDirectory creates a directory backed by the given client.
func NewSessionDirectory(client api.Client) *SessionDirectory {
	return &SessionDirectory{
		client:   client,
		previews: make(map[string]string),
	}
}

// Refresh replaces the session list from the backend. Previously published
// previews are kept for sessions that still exist.
func (d *SessionDirectory) Refresh(ctx context.Context, projectID string) error {
	sessions, err := d.client.ListSessions(ctx, projectID)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.sessions = sessions
	d.loaded = true

	known := make(map[string]bool, len(sessions))
	for _, s := range sessions {
		known[s.ID] = true
	}
	for id := range d.previews {
		if !known[id] {
			delete(d.previews, id)
		}
	}
	return nil
}

// Loaded reports whether at least one refresh has completed. Restoration
// waits for this so a saved layout is not resolved against an empty list.
func (d *SessionDirectory) Loaded() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loaded
}

// Sessions returns a snapshot of the known sessions, with published
// previews applied.
func (d *SessionDirectory) Sessions() []api.SessionSummary {
	d.mu.RLock()
	defer d.mu.RUnlock()

	sessions := make([]api.SessionSummary, len(d.sessions))
	copy(sessions, d.sessions)
	for i := range sessions {
		if preview, ok := d.previews[sessions[i].ID]; ok {
			sessions[i].Preview = preview
		}
	}
	return sessions
}

// Get returns the session with the given id, or nil if unknown.
func (d *SessionDirectory) Get(sessionID string) *api.SessionSummary {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for i := range d.sessions {
		if d.sessions[i].ID == sessionID {
			session := d.sessions[i]
			if preview, ok := d.previews[session.ID]; ok {
				session.Preview = preview
			}
			return &session
		}
	}
	return nil
}

// Len returns the number of known sessions.
func (d *SessionDirectory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.sessions)
}

// PublishPreview records preview text for a session. Unknown session ids
// are accepted; the preview applies if the session appears later.
func (d *SessionDirectory) PublishPreview(sessionID, preview string) {
	if sessionID == "" || preview == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.previews[sessionID] = preview
}
