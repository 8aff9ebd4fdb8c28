// Package chat implements the multi-tab conversation engine: a bounded
// registry of conversation tabs, a per-tab state cache, reconciliation of
// persisted history with live stream events into renderable turns, message
// submission with optimistic local updates, and restoration of a saved tab
// layout. The package is UI-free; the TUI consumes it through the app model.
package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pintaildata/pintail/internal/api"
	"github.com/pintaildata/pintail/internal/errors"
	"github.com/pintaildata/pintail/internal/logger"
)

// MaxTabs is the maximum number of concurrently open tabs.
const MaxTabs = 10

// Tab is one open conversation tab. SessionID is empty until the tab is
// bound to a backend session (a new tab binds on first successful submit).
// Tabs exist only in process memory; the persisted layout keeps session ids,
// not tabs.
type Tab struct {
	ID        string
	SessionID string
	Title     string
	CreatedAt time.Time
}

// TabRegistry owns the ordered list of open tabs and the active-tab pointer.
// List order is open order: the first tab is the least recently opened.
//
// The registry calls deactivate before any change of the active pointer, so
// the owner of the live event stream can tear its subscription down; this
// guarantees no stream events leak across tabs.
type TabRegistry struct {
	mu         sync.RWMutex
	tabs       []Tab
	activeID   string
	deactivate func()
}

// NewTabRegistry creates an empty tab registry.
func NewTabRegistry() *TabRegistry {
	return &TabRegistry{}
}

// SetDeactivateHook registers the function called synchronously before the
// active tab changes. Used to detach the stream subscription.
func (r *TabRegistry) SetDeactivateHook(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deactivate = fn
}

// AddTab opens a new unbound tab and makes it active.
// Fails with a capacity error when MaxTabs tabs are already open; the
// registry is left unchanged in that case.
func (r *TabRegistry) AddTab() (*Tab, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.tabs) >= MaxTabs {
		return nil, errors.TabLimitReached(MaxTabs)
	}

	tab := Tab{
		ID:        uuid.New().String(),
		Title:     "New conversation",
		CreatedAt: time.Now(),
	}
	r.tabs = append(r.tabs, tab)
	r.setActiveLocked(tab.ID)

	logger.WithTab(tab.ID).Debug("tab opened", "count", len(r.tabs))
	return &tab, nil
}

// CloseTab removes a tab. Closing an unknown id is a no-op. If the closed
// tab was active, the tab immediately preceding it in list order becomes
// active (or none if it was the only tab).
func (r *TabRegistry) CloseTab(tabID string) *Tab {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexLocked(tabID)
	if idx < 0 {
		return nil
	}

	closed := r.tabs[idx]
	r.tabs = append(r.tabs[:idx], r.tabs[idx+1:]...)

	if r.activeID == tabID {
		next := ""
		if idx > 0 {
			next = r.tabs[idx-1].ID
		} else if len(r.tabs) > 0 {
			next = r.tabs[0].ID
		}
		r.setActiveLocked(next)
	}

	logger.WithTab(tabID).Debug("tab closed", "remaining", len(r.tabs))
	return &closed
}

// SwitchTab makes the given tab active. A no-op if the tab is already
// active or unknown. Returns true if the active pointer changed.
func (r *TabRegistry) SwitchTab(tabID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tabID == r.activeID || r.indexLocked(tabID) < 0 {
		return false
	}
	r.setActiveLocked(tabID)
	return true
}

// OpenSession opens a session in a tab. If a tab is already bound to the
// session it just becomes active (idempotent). At capacity the least
// recently opened tab is evicted to make room; the evicted tab is returned
// so the caller can release its cached state.
func (r *TabRegistry) OpenSession(session api.SessionSummary) (tab *Tab, evicted *Tab, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.tabs {
		if r.tabs[i].SessionID == session.ID {
			existing := r.tabs[i]
			r.setActiveLocked(existing.ID)
			return &existing, nil, nil
		}
	}

	if len(r.tabs) >= MaxTabs {
		oldest := r.tabs[0]
		r.tabs = r.tabs[1:]
		evicted = &oldest
		logger.WithTab(oldest.ID).Debug("evicted least recently opened tab", "sessionID", oldest.SessionID)
	}

	title := session.Title
	if title == "" {
		title = "Conversation"
	}
	newTab := Tab{
		ID:        uuid.New().String(),
		SessionID: session.ID,
		Title:     title,
		CreatedAt: time.Now(),
	}
	r.tabs = append(r.tabs, newTab)
	r.setActiveLocked(newTab.ID)

	logger.WithTab(newTab.ID).Debug("session opened in tab", "sessionID", session.ID)
	return &newTab, evicted, nil
}

// BindSession binds a tab to a session id and sets its title. Used after a
// create-conversation round trip resolves.
func (r *TabRegistry) BindSession(tabID, sessionID, title string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexLocked(tabID)
	if idx < 0 {
		return false
	}
	r.tabs[idx].SessionID = sessionID
	if title != "" {
		r.tabs[idx].Title = title
	}
	return true
}

// Tabs returns a snapshot of the open tabs in display order.
func (r *TabRegistry) Tabs() []Tab {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tabs := make([]Tab, len(r.tabs))
	copy(tabs, r.tabs)
	return tabs
}

// ActiveID returns the id of the active tab, or "".
func (r *TabRegistry) ActiveID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeID
}

// Active returns a copy of the active tab, or nil.
func (r *TabRegistry) Active() *Tab {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.indexLocked(r.activeID)
	if idx < 0 {
		return nil
	}
	tab := r.tabs[idx]
	return &tab
}

// Get returns a copy of a tab by id, or nil.
func (r *TabRegistry) Get(tabID string) *Tab {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.indexLocked(tabID)
	if idx < 0 {
		return nil
	}
	tab := r.tabs[idx]
	return &tab
}

// FindBySession returns a copy of the tab bound to a session id, or nil.
func (r *TabRegistry) FindBySession(sessionID string) *Tab {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if sessionID == "" {
		return nil
	}
	for i := range r.tabs {
		if r.tabs[i].SessionID == sessionID {
			tab := r.tabs[i]
			return &tab
		}
	}
	return nil
}

// Count returns the number of open tabs.
func (r *TabRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tabs)
}

// indexLocked returns the index of a tab id, or -1. Caller must hold a lock.
func (r *TabRegistry) indexLocked(tabID string) int {
	if tabID == "" {
		return -1
	}
	for i := range r.tabs {
		if r.tabs[i].ID == tabID {
			return i
		}
	}
	return -1
}

// setActiveLocked changes the active pointer, running the deactivate hook
// first so the stream subscription is torn down before any tab sees the
// change. Caller must hold the write lock.
func (r *TabRegistry) setActiveLocked(tabID string) {
	if r.activeID == tabID {
		return
	}
	if r.deactivate != nil {
		r.deactivate()
	}
	r.activeID = tabID
}
