package chat

import (
	"context"
	"testing"

	"github.com/pintaildata/pintail/internal/api"
	"github.com/pintaildata/pintail/internal/config"
)

func loadedDirectory(t *testing.T, sessions ...api.SessionSummary) *SessionDirectory {
	t.Helper()
	client := newFakeClient()
	client.sessions = sessions
	directory := NewSessionDirectory(client)
	if err := directory.Refresh(context.Background(), ""); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	return directory
}

func TestRestoreTabsInOrder(t *testing.T) {
	directory := loadedDirectory(t,
		api.SessionSummary{ID: "s1", Title: "Revenue"},
		api.SessionSummary{ID: "s2", Title: "Churn"},
		api.SessionSummary{ID: "s3", Title: "Cohorts"},
	)
	registry := NewTabRegistry()

	saved := []config.SavedTab{
		{ID: "s3", Order: 2},
		{ID: "s1", Order: 0},
		{ID: "s2", Order: 1},
	}
	restored := RestoreTabs(registry, directory, saved, "s2")

	if restored != 3 {
		t.Fatalf("restored = %d, want 3", restored)
	}
	tabs := registry.Tabs()
	want := []string{"s1", "s2", "s3"}
	for i, sessionID := range want {
		if tabs[i].SessionID != sessionID {
			t.Errorf("tab %d bound to %q, want %q", i, tabs[i].SessionID, sessionID)
		}
	}
	if active := registry.Active(); active == nil || active.SessionID != "s2" {
		t.Error("saved active session should be focused")
	}
}

func TestRestoreTabsSkipsDeletedSessions(t *testing.T) {
	directory := loadedDirectory(t,
		api.SessionSummary{ID: "s1"},
		api.SessionSummary{ID: "s3"},
	)
	registry := NewTabRegistry()

	saved := []config.SavedTab{
		{ID: "s1", Order: 0},
		{ID: "s2", Order: 1}, // deleted since the layout was saved
		{ID: "s3", Order: 2},
	}
	restored := RestoreTabs(registry, directory, saved, "")

	if restored != 2 {
		t.Fatalf("restored = %d, want 2", restored)
	}
	tabs := registry.Tabs()
	if tabs[0].SessionID != "s1" || tabs[1].SessionID != "s3" {
		t.Errorf("surviving sessions out of order: %q, %q", tabs[0].SessionID, tabs[1].SessionID)
	}
}

func TestRestoreTabsActiveFallsBackToFirst(t *testing.T) {
	directory := loadedDirectory(t,
		api.SessionSummary{ID: "s1"},
		api.SessionSummary{ID: "s2"},
	)
	registry := NewTabRegistry()

	saved := []config.SavedTab{{ID: "s1", Order: 0}, {ID: "s2", Order: 1}}
	RestoreTabs(registry, directory, saved, "gone")

	if active := registry.Active(); active == nil || active.SessionID != "s1" {
		t.Error("missing active session should fall back to the first restored tab")
	}
}

func TestRestoreTabsSkippedWhenDirectoryEmpty(t *testing.T) {
	directory := loadedDirectory(t) // loaded, zero sessions
	registry := NewTabRegistry()

	if restored := RestoreTabs(registry, directory, []config.SavedTab{{ID: "s1"}}, ""); restored != 0 {
		t.Errorf("restored = %d, want 0", restored)
	}
	if registry.Count() != 0 {
		t.Error("no tabs should open against an empty directory")
	}
}

func TestRestoreTabsSkippedWhenDirectoryNotLoaded(t *testing.T) {
	directory := NewSessionDirectory(newFakeClient())
	registry := NewTabRegistry()

	if restored := RestoreTabs(registry, directory, []config.SavedTab{{ID: "s1"}}, ""); restored != 0 {
		t.Errorf("restored = %d, want 0", restored)
	}
}

func TestRestoreTabsSkippedWhenTabsAlreadyOpen(t *testing.T) {
	directory := loadedDirectory(t, api.SessionSummary{ID: "s1"})
	registry := NewTabRegistry()
	existing, _ := registry.AddTab()

	if restored := RestoreTabs(registry, directory, []config.SavedTab{{ID: "s1"}}, ""); restored != 0 {
		t.Errorf("restored = %d, want 0", restored)
	}
	if registry.Count() != 1 || registry.ActiveID() != existing.ID {
		t.Error("an in-progress layout must not be clobbered")
	}
}

func TestRestoreTabsNoSavedLayout(t *testing.T) {
	directory := loadedDirectory(t, api.SessionSummary{ID: "s1"})
	registry := NewTabRegistry()

	if restored := RestoreTabs(registry, directory, nil, ""); restored != 0 {
		t.Errorf("restored = %d, want 0", restored)
	}
}
