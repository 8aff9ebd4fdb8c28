package chat

import (
	"testing"

	"github.com/pintaildata/pintail/internal/api"
)

func TestSetDetailReplacesWholesale(t *testing.T) {
	states := NewTabStateManager()

	states.AppendOptimistic("t1", api.Message{ID: "optimistic", Role: api.RoleUser, Content: "hi", Seq: 1})
	if len(states.GetDetail("t1").Messages) != 1 {
		t.Fatal("optimistic message should be visible immediately")
	}

	authoritative := &api.SessionDetail{
		ID:     "s1",
		Status: api.SessionStatusIdle,
		Messages: []api.Message{
			{ID: "m1", Role: api.RoleUser, Content: "hi", Seq: 1},
			{ID: "m2", Role: api.RoleAssistant, Content: "hello", Seq: 2},
		},
	}
	states.SetDetail("t1", authoritative)

	detail := states.GetDetail("t1")
	if len(detail.Messages) != 2 {
		t.Fatalf("detail should be replaced wholesale, got %d messages", len(detail.Messages))
	}
	for _, msg := range detail.Messages {
		if msg.ID == "optimistic" {
			t.Error("optimistic placeholder should be discarded by the authoritative fetch")
		}
	}
}

func TestSetDetailDerivesActiveRunID(t *testing.T) {
	states := NewTabStateManager()

	states.SetDetail("t1", &api.SessionDetail{Status: api.SessionStatusActive, ActiveRunID: "run-1"})
	if states.GetActiveRunID("t1") != "run-1" {
		t.Error("active session should carry its run id into tab state")
	}

	states.SetDetail("t1", &api.SessionDetail{Status: api.SessionStatusIdle, ActiveRunID: "run-1"})
	if states.GetActiveRunID("t1") != "" {
		t.Error("idle session should clear the active run id")
	}
}

func TestFailLoadPreservesStaleDetail(t *testing.T) {
	states := NewTabStateManager()

	states.SetDetail("t1", &api.SessionDetail{ID: "s1", Messages: []api.Message{{ID: "m1", Seq: 1}}})
	states.StartLoading("t1")
	states.FailLoad("t1")

	if states.IsLoading("t1") {
		t.Error("loading flag should clear on failure")
	}
	detail := states.GetDetail("t1")
	if detail == nil || len(detail.Messages) != 1 {
		t.Error("failed refresh must not blank the cached conversation")
	}
}

func TestLoadingFlag(t *testing.T) {
	states := NewTabStateManager()

	if states.IsLoading("t1") {
		t.Error("unknown tab should not be loading")
	}
	states.StartLoading("t1")
	if !states.IsLoading("t1") {
		t.Error("StartLoading should set the flag")
	}
	states.SetDetail("t1", &api.SessionDetail{})
	if states.IsLoading("t1") {
		t.Error("SetDetail should clear the flag")
	}
}

func TestNextSeq(t *testing.T) {
	states := NewTabStateManager()

	if got := states.NextSeq("t1"); got != 1 {
		t.Errorf("NextSeq on empty tab = %d, want 1", got)
	}

	states.SetDetail("t1", &api.SessionDetail{Messages: []api.Message{
		{ID: "m1", Seq: 3},
		{ID: "m2", Seq: 7},
		{ID: "m3", Seq: 5},
	}})
	if got := states.NextSeq("t1"); got != 8 {
		t.Errorf("NextSeq = %d, want 8", got)
	}
}

func TestAppendOptimisticCreatesDetail(t *testing.T) {
	states := NewTabStateManager()

	states.AppendOptimistic("t1", api.Message{ID: "m1", Role: api.RoleUser, Content: "hi", Seq: 1})

	detail := states.GetDetail("t1")
	if detail == nil {
		t.Fatal("optimistic append on an empty tab should create a detail record")
	}
	if detail.Status != api.SessionStatusIdle {
		t.Errorf("synthesized detail status = %q, want idle", detail.Status)
	}
}

func TestDeleteClearsState(t *testing.T) {
	states := NewTabStateManager()

	states.SetDetail("t1", &api.SessionDetail{ID: "s1"})
	states.SetActiveRunID("t1", "run-1")
	states.Delete("t1")

	if states.GetIfExists("t1") != nil {
		t.Error("Delete should remove the tab's state")
	}
	if states.GetActiveRunID("t1") != "" {
		t.Error("deleted tab should have no run id")
	}
}

func TestRunIDLifecycle(t *testing.T) {
	states := NewTabStateManager()

	states.SetActiveRunID("t1", "run-1")
	if states.GetActiveRunID("t1") != "run-1" {
		t.Error("SetActiveRunID should record the run")
	}
	states.ClearActiveRunID("t1")
	if states.GetActiveRunID("t1") != "" {
		t.Error("ClearActiveRunID should clear the run")
	}
}
