package chat

import (
	"fmt"
	"testing"

	"github.com/pintaildata/pintail/internal/api"
	"github.com/pintaildata/pintail/internal/errors"
)

func TestAddTabBecomesActive(t *testing.T) {
	reg := NewTabRegistry()

	tab, err := reg.AddTab()
	if err != nil {
		t.Fatalf("AddTab failed: %v", err)
	}
	if tab.SessionID != "" {
		t.Error("new tab should be unbound")
	}
	if reg.ActiveID() != tab.ID {
		t.Error("new tab should be active")
	}
}

func TestAddTabCapacityBoundary(t *testing.T) {
	reg := NewTabRegistry()
	for i := 0; i < MaxTabs; i++ {
		if _, err := reg.AddTab(); err != nil {
			t.Fatalf("AddTab %d failed: %v", i, err)
		}
	}

	before := reg.Tabs()
	activeBefore := reg.ActiveID()

	tab, err := reg.AddTab()
	if tab != nil {
		t.Error("AddTab at capacity should not return a tab")
	}
	if !errors.Is(err, errors.KindCapacity) {
		t.Errorf("error kind = %v, want KindCapacity", errors.GetKind(err))
	}

	// Registry unchanged
	after := reg.Tabs()
	if len(after) != len(before) {
		t.Errorf("tab count changed: %d -> %d", len(before), len(after))
	}
	if reg.ActiveID() != activeBefore {
		t.Error("active tab should not change on rejected add")
	}
}

func TestCloseTabActivatesPreceding(t *testing.T) {
	reg := NewTabRegistry()
	t1, _ := reg.AddTab()
	t2, _ := reg.AddTab()
	t3, _ := reg.AddTab()

	reg.SwitchTab(t3.ID)
	reg.CloseTab(t3.ID)

	if reg.ActiveID() != t2.ID {
		t.Errorf("active = %q, want preceding tab %q", reg.ActiveID(), t2.ID)
	}

	reg.CloseTab(t2.ID)
	if reg.ActiveID() != t1.ID {
		t.Errorf("active = %q, want %q", reg.ActiveID(), t1.ID)
	}

	reg.CloseTab(t1.ID)
	if reg.ActiveID() != "" {
		t.Error("active should be empty after last tab closes")
	}
}

func TestCloseFirstTabActivatesNext(t *testing.T) {
	reg := NewTabRegistry()
	t1, _ := reg.AddTab()
	t2, _ := reg.AddTab()

	reg.SwitchTab(t1.ID)
	reg.CloseTab(t1.ID)

	if reg.ActiveID() != t2.ID {
		t.Errorf("active = %q, want %q", reg.ActiveID(), t2.ID)
	}
}

func TestCloseUnknownTabIsNoOp(t *testing.T) {
	reg := NewTabRegistry()
	t1, _ := reg.AddTab()

	if closed := reg.CloseTab("nope"); closed != nil {
		t.Error("closing unknown tab should return nil")
	}
	if reg.Count() != 1 || reg.ActiveID() != t1.ID {
		t.Error("registry should be unchanged")
	}
}

func TestCloseInactiveTabKeepsActive(t *testing.T) {
	reg := NewTabRegistry()
	t1, _ := reg.AddTab()
	t2, _ := reg.AddTab()

	reg.SwitchTab(t2.ID)
	reg.CloseTab(t1.ID)

	if reg.ActiveID() != t2.ID {
		t.Error("closing an inactive tab must not move the active pointer")
	}
}

func TestSwitchTabRunsDeactivateHook(t *testing.T) {
	reg := NewTabRegistry()
	detached := 0
	reg.SetDeactivateHook(func() { detached++ })

	t1, _ := reg.AddTab() // hook fires: active goes none -> t1
	t2, _ := reg.AddTab() // hook fires: t1 -> t2
	base := detached

	if !reg.SwitchTab(t1.ID) {
		t.Fatal("SwitchTab should succeed")
	}
	if detached != base+1 {
		t.Errorf("deactivate hook ran %d times after switch, want %d", detached, base+1)
	}

	// Switching to the already-active tab is a no-op: no teardown
	if reg.SwitchTab(t1.ID) {
		t.Error("switching to active tab should return false")
	}
	if detached != base+1 {
		t.Error("no-op switch must not tear down the subscription")
	}

	_ = t2
}

func TestSwitchTabUnknownIsNoOp(t *testing.T) {
	reg := NewTabRegistry()
	t1, _ := reg.AddTab()

	if reg.SwitchTab("nope") {
		t.Error("switching to unknown tab should return false")
	}
	if reg.ActiveID() != t1.ID {
		t.Error("active tab should be unchanged")
	}
}

func TestOpenSessionIdempotent(t *testing.T) {
	reg := NewTabRegistry()
	session := api.SessionSummary{ID: "s1", Title: "Revenue"}

	first, _, err := reg.OpenSession(session)
	if err != nil {
		t.Fatalf("OpenSession failed: %v", err)
	}
	reg.AddTab() // move focus elsewhere

	second, evicted, err := reg.OpenSession(session)
	if err != nil {
		t.Fatalf("second OpenSession failed: %v", err)
	}
	if evicted != nil {
		t.Error("no eviction expected")
	}
	if second.ID != first.ID {
		t.Error("reopening a session should reuse its tab")
	}
	if reg.ActiveID() != first.ID {
		t.Error("reopening a session should switch to its tab")
	}
	if reg.Count() != 2 {
		t.Errorf("tab count = %d, want 2", reg.Count())
	}
}

func TestOpenSessionEvictsOldestAtCapacity(t *testing.T) {
	reg := NewTabRegistry()
	for i := 0; i < MaxTabs; i++ {
		reg.OpenSession(api.SessionSummary{ID: fmt.Sprintf("s%d", i)})
	}

	tab, evicted, err := reg.OpenSession(api.SessionSummary{ID: "fresh"})
	if err != nil {
		t.Fatalf("OpenSession at capacity failed: %v", err)
	}
	if evicted == nil || evicted.SessionID != "s0" {
		t.Errorf("expected least recently opened tab (s0) evicted, got %+v", evicted)
	}
	if reg.Count() != MaxTabs {
		t.Errorf("tab count = %d, want %d", reg.Count(), MaxTabs)
	}
	if reg.ActiveID() != tab.ID {
		t.Error("new session tab should be active")
	}
	if reg.FindBySession("s0") != nil {
		t.Error("evicted session should no longer have a tab")
	}
}

func TestBindSession(t *testing.T) {
	reg := NewTabRegistry()
	tab, _ := reg.AddTab()

	if !reg.BindSession(tab.ID, "s9", "What drives churn?") {
		t.Fatal("BindSession should succeed")
	}
	bound := reg.Get(tab.ID)
	if bound.SessionID != "s9" || bound.Title != "What drives churn?" {
		t.Errorf("bound tab = %+v", bound)
	}
	if reg.BindSession("nope", "s1", "x") {
		t.Error("binding unknown tab should fail")
	}
}

func TestTabsReturnsSnapshot(t *testing.T) {
	reg := NewTabRegistry()
	reg.AddTab()

	tabs := reg.Tabs()
	tabs[0].Title = "mutated"

	if reg.Tabs()[0].Title == "mutated" {
		t.Error("Tabs should return a copy, not the live slice")
	}
}
