package chat

import (
	"sort"

	"github.com/pintaildata/pintail/internal/config"
	"github.com/pintaildata/pintail/internal/logger"
)

// RestoreTabs reproduces a persisted tab layout once the session directory
// has loaded.
//
// Restoration is skipped entirely when the directory is empty (restoring
// against an empty directory would silently produce zero tabs) or when tabs
// are already open (a user's in-progress layout must not be clobbered).
// Saved entries whose session no longer exists are skipped without aborting
// the rest. After all entries are processed the saved active session is
// resolved to whichever tab ended up bound to it, falling back to the first
// restored tab.
//
// Returns the number of tabs restored.
func RestoreTabs(registry *TabRegistry, directory *SessionDirectory, saved []config.SavedTab, activeSessionID string) int {
	log := logger.ComponentLogger("Restore")

	if len(saved) == 0 {
		return 0
	}
	if !directory.Loaded() || directory.Len() == 0 {
		log.Debug("skipping restore, directory not loaded or empty")
		return 0
	}
	if registry.Count() > 0 {
		log.Debug("skipping restore, tabs already open", "count", registry.Count())
		return 0
	}

	entries := make([]config.SavedTab, len(saved))
	copy(entries, saved)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Order < entries[j].Order })

	restored := 0
	var firstTabID string
	for _, entry := range entries {
		session := directory.Get(entry.ID)
		if session == nil {
			// Deleted since the layout was saved. Not an error.
			log.Debug("saved session no longer exists, skipping", "sessionID", entry.ID)
			continue
		}
		tab, _, err := registry.OpenSession(*session)
		if err != nil {
			log.Warn("failed to open restored session", "sessionID", entry.ID, "error", err)
			continue
		}
		if firstTabID == "" {
			firstTabID = tab.ID
		}
		restored++
	}

	if restored == 0 {
		return 0
	}

	// Resolve the saved active session; fall back to the first restored tab.
	target := firstTabID
	if activeSessionID != "" {
		if tab := registry.FindBySession(activeSessionID); tab != nil {
			target = tab.ID
		}
	}
	registry.SwitchTab(target)

	log.Info("tab layout restored", "restored", restored, "active", target)
	return restored
}
