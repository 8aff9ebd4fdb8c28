package chat

import (
	"sync"

	"github.com/pintaildata/pintail/internal/api"
)

// TabState holds the cached conversation record for one tab: the last
// authoritative detail fetch, a loading flag, and the run currently in
// flight for the tab (if any).
//
// Detail is replaced wholesale by the loader, never merged; that replacement
// is what discards optimistic placeholder messages once the backend's
// persisted record arrives.
type TabState struct {
	Detail      *api.SessionDetail
	Loading     bool
	ActiveRunID string
}

// TabStateManager provides thread-safe access to per-tab state.
// It is the only state shared between the turn builder and the submission
// path; mutations come from the detail loader (fetch resolution) and the
// submitter (optimistic inserts and run-id updates), never concurrently for
// the same tab on the UI event loop.
type TabStateManager struct {
	mu     sync.RWMutex
	states map[string]*TabState
}

// NewTabStateManager creates a new tab state manager.
func NewTabStateManager() *TabStateManager {
	return &TabStateManager{
		states: make(map[string]*TabState),
	}
}

// Get returns the state for a tab, creating it if it doesn't exist.
func (m *TabStateManager) Get(tabID string) *TabState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getOrCreate(tabID)
}

// GetIfExists returns the state for a tab if it exists, nil otherwise.
func (m *TabStateManager) GetIfExists(tabID string) *TabState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.states[tabID]
}

// Delete removes all state for a tab.
func (m *TabStateManager) Delete(tabID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if state, exists := m.states[tabID]; exists {
		state.Detail = nil
		delete(m.states, tabID)
	}
}

// StartLoading marks a tab's detail fetch as in flight.
func (m *TabStateManager) StartLoading(tabID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state := m.getOrCreate(tabID)
	state.Loading = true
}

// IsLoading returns whether a detail fetch is in flight for a tab.
func (m *TabStateManager) IsLoading(tabID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if state, exists := m.states[tabID]; exists {
		return state.Loading
	}
	return false
}

// SetDetail installs an authoritative session detail for a tab, replacing
// any cached detail wholesale (including optimistic placeholders), clearing
// the loading flag, and deriving the active run id from the session status.
func (m *TabStateManager) SetDetail(tabID string, detail *api.SessionDetail) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state := m.getOrCreate(tabID)
	state.Detail = detail
	state.Loading = false
	if detail != nil && detail.Status == api.SessionStatusActive {
		state.ActiveRunID = detail.ActiveRunID
	} else {
		state.ActiveRunID = ""
	}
}

// FailLoad records a failed detail fetch: the loading flag clears but any
// previously cached detail is preserved. A failed refresh must never blank
// an already-rendered conversation.
func (m *TabStateManager) FailLoad(tabID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if state, exists := m.states[tabID]; exists {
		state.Loading = false
	}
}

// GetDetail returns the cached detail for a tab, or nil.
func (m *TabStateManager) GetDetail(tabID string) *api.SessionDetail {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if state, exists := m.states[tabID]; exists {
		return state.Detail
	}
	return nil
}

// SetActiveRunID records the run currently in flight for a tab.
func (m *TabStateManager) SetActiveRunID(tabID, runID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state := m.getOrCreate(tabID)
	state.ActiveRunID = runID
}

// ClearActiveRunID clears the in-flight run for a tab.
func (m *TabStateManager) ClearActiveRunID(tabID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if state, exists := m.states[tabID]; exists {
		state.ActiveRunID = ""
	}
}

// GetActiveRunID returns the run currently in flight for a tab, or "".
func (m *TabStateManager) GetActiveRunID(tabID string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if state, exists := m.states[tabID]; exists {
		return state.ActiveRunID
	}
	return ""
}

// AppendOptimistic installs a locally synthesized message into the tab's
// cached detail before the network round trip resolves, so the UI shows the
// prompt immediately. The message survives a failed submission (no
// rollback); the next authoritative fetch replaces it.
func (m *TabStateManager) AppendOptimistic(tabID string, msg api.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state := m.getOrCreate(tabID)
	if state.Detail == nil {
		state.Detail = &api.SessionDetail{Status: api.SessionStatusIdle}
	}
	state.Detail.Messages = append(state.Detail.Messages, msg)
}

// NextSeq returns a sequence number greater than every message cached for
// the tab, for ordering optimistic messages after the persisted record.
func (m *TabStateManager) NextSeq(tabID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	max := 0
	if state, exists := m.states[tabID]; exists && state.Detail != nil {
		for _, msg := range state.Detail.Messages {
			if msg.Seq > max {
				max = msg.Seq
			}
		}
	}
	return max + 1
}

// getOrCreate returns existing state or creates new one. Caller must hold lock.
func (m *TabStateManager) getOrCreate(tabID string) *TabState {
	if state, exists := m.states[tabID]; exists {
		return state
	}
	state := &TabState{}
	m.states[tabID] = state
	return state
}
