package ui

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/pintaildata/pintail/internal/api"
)

func TestMoveSelectionWrapsAround(t *testing.T) {
	if got := moveSelection("up", 0, 3); got != 2 {
		t.Errorf("up from first = %d, want 2", got)
	}
	if got := moveSelection("down", 2, 3); got != 0 {
		t.Errorf("down from last = %d, want 0", got)
	}
	if got := moveSelection("down", 0, 3); got != 1 {
		t.Errorf("down = %d, want 1", got)
	}
	if got := moveSelection("k", 1, 3); got != 0 {
		t.Errorf("k = %d, want 0", got)
	}
	if got := moveSelection("down", 0, 0); got != 0 {
		t.Errorf("empty list = %d, want 0", got)
	}
}

func TestModalShowHide(t *testing.T) {
	m := NewModal()
	if m.IsVisible() {
		t.Fatal("new modal should be hidden")
	}

	m.Show(NewOpenConversationState(nil))
	if !m.IsVisible() {
		t.Fatal("modal should be visible after Show")
	}

	m.Hide()
	if m.IsVisible() {
		t.Fatal("modal should be hidden after Hide")
	}
}

func TestOpenConversationSelection(t *testing.T) {
	sessions := []api.SessionSummary{
		{ID: "s1", Title: "Revenue"},
		{ID: "s2", Title: "Churn"},
	}
	state := NewOpenConversationState(sessions)

	state.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	selected := state.Selected()
	if selected == nil || selected.ID != "s2" {
		t.Fatalf("Selected = %v, want s2", selected)
	}
}

func TestOpenConversationEmptyDirectory(t *testing.T) {
	state := NewOpenConversationState(nil)

	if state.Selected() != nil {
		t.Error("Selected on empty directory should be nil")
	}
	if !strings.Contains(state.Render(), "No conversations yet") {
		t.Error("empty directory should render a hint")
	}
}

func TestOpenConversationRenderShowsPreview(t *testing.T) {
	state := NewOpenConversationState([]api.SessionSummary{
		{ID: "s1", Title: "Revenue", Preview: "Up 4% this quarter."},
	})
	out := state.Render()
	if !strings.Contains(out, "Revenue") {
		t.Error("title missing from render")
	}
	if !strings.Contains(out, "Up 4%") {
		t.Error("preview missing from render")
	}
}

func TestSettingsStateResult(t *testing.T) {
	state := NewSettingsState([]string{"analyst-small", "reasoner"}, "reasoner", "warehouse", "nord", true)

	result := state.Result()
	if result.Model != "reasoner" {
		t.Errorf("Model = %q, want the seeded value", result.Model)
	}
	if result.DataSource != "warehouse" {
		t.Errorf("DataSource = %q, want the seeded value", result.DataSource)
	}
	if result.Theme != "nord" {
		t.Errorf("Theme = %q, want the seeded value", result.Theme)
	}
	if !result.Notifications {
		t.Error("Notifications should keep the seeded value")
	}
}
