package chat

import (
	"context"
	"testing"

	"github.com/pintaildata/pintail/internal/api"
	"github.com/pintaildata/pintail/internal/errors"
)

func newSubmitFixture(client *fakeClient) (*Submitter, *TabRegistry, *TabStateManager, *SessionDirectory) {
	registry := NewTabRegistry()
	states := NewTabStateManager()
	directory := NewSessionDirectory(client)
	return NewSubmitter(client, registry, states, directory), registry, states, directory
}

func TestSubmitRejectsEmptyPrompt(t *testing.T) {
	submitter, registry, _, _ := newSubmitFixture(newFakeClient())

	for _, prompt := range []string{"", "   ", "\n\t "} {
		if _, err := submitter.Submit(context.Background(), prompt, SubmitOptions{}); !errors.Is(err, errors.KindInvalid) {
			t.Errorf("Submit(%q) error kind = %v, want KindInvalid", prompt, errors.GetKind(err))
		}
	}
	if registry.Count() != 0 {
		t.Error("rejected submission must not open a tab")
	}
}

func TestSubmitCreatesConversationOnUnboundTab(t *testing.T) {
	client := newFakeClient()
	client.createResp = &api.CreateConversationResponse{
		ConversationID: "s1",
		RunID:          "run-1",
		EventsURL:      "/api/v1/runs/run-1/events",
	}
	client.sessions = []api.SessionSummary{{ID: "s1", Title: "show revenue by month"}}
	submitter, registry, states, directory := newSubmitFixture(client)

	tab, _ := registry.AddTab()

	result, err := submitter.Submit(context.Background(), "show revenue by month", SubmitOptions{Model: "fast"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if !result.Created {
		t.Error("result should report a created conversation")
	}
	if result.SessionID != "s1" || result.RunID != "run-1" {
		t.Errorf("result = %+v", result)
	}

	if len(client.createReqs) != 1 {
		t.Fatalf("create calls = %d, want 1", len(client.createReqs))
	}
	if client.createReqs[0].Model != "fast" {
		t.Errorf("model = %q, want fast", client.createReqs[0].Model)
	}

	bound := registry.Get(tab.ID)
	if bound.SessionID != "s1" {
		t.Error("tab should be bound to the new session")
	}
	if bound.Title != "show revenue by month" {
		t.Errorf("tab title = %q", bound.Title)
	}
	if states.GetActiveRunID(tab.ID) != "run-1" {
		t.Error("run id should be recorded for the tab")
	}
	if !directory.Loaded() {
		t.Error("directory should be refreshed after create")
	}
}

func TestSubmitTruncatesLongTitle(t *testing.T) {
	client := newFakeClient()
	client.createResp = &api.CreateConversationResponse{ConversationID: "s1"}
	submitter, registry, _, _ := newSubmitFixture(client)

	tab, _ := registry.AddTab()
	long := "please break down the quarterly revenue figures by region and product line"
	if _, err := submitter.Submit(context.Background(), long, SubmitOptions{}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	title := registry.Get(tab.ID).Title
	if title == long {
		t.Error("long prompt should be truncated for the tab title")
	}
	if len([]rune(title)) > TitleLength+1 {
		t.Errorf("title %q exceeds display budget", title)
	}
}

func TestSubmitAppendsToBoundTab(t *testing.T) {
	client := newFakeClient()
	client.appendResp = &api.AppendMessageResponse{RunID: "run-2"}
	submitter, registry, states, _ := newSubmitFixture(client)

	tab, _ := registry.AddTab()
	registry.BindSession(tab.ID, "s1", "Revenue")

	result, err := submitter.Submit(context.Background(), "now by region", SubmitOptions{})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if result.Created {
		t.Error("append should not report a created conversation")
	}
	if result.SessionID != "s1" || result.RunID != "run-2" {
		t.Errorf("result = %+v", result)
	}
	if len(client.appendReqs) != 1 || client.appendReqs[0].Content != "now by region" {
		t.Errorf("append requests = %+v", client.appendReqs)
	}
	if len(client.createReqs) != 0 {
		t.Error("bound tab must never create a conversation")
	}
	if states.GetActiveRunID(tab.ID) != "run-2" {
		t.Error("run id should be recorded for the tab")
	}
}

func TestSubmitOptimisticMessageVisibleImmediately(t *testing.T) {
	client := newFakeClient()
	client.createResp = &api.CreateConversationResponse{ConversationID: "s1"}
	submitter, registry, states, _ := newSubmitFixture(client)

	tab, _ := registry.AddTab()
	if _, err := submitter.Submit(context.Background(), "hello", SubmitOptions{}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	detail := states.GetDetail(tab.ID)
	if detail == nil || len(detail.Messages) != 1 {
		t.Fatal("optimistic message should be in the tab cache")
	}
	msg := detail.Messages[0]
	if msg.Role != api.RoleUser || msg.Content != "hello" {
		t.Errorf("optimistic message = %+v", msg)
	}
	if msg.Seq != 1 {
		t.Errorf("optimistic seq = %d, want 1", msg.Seq)
	}
}

func TestSubmitFailureKeepsOptimisticMessage(t *testing.T) {
	client := newFakeClient()
	client.createErr = errors.CreateConversationFailed(context.DeadlineExceeded)
	submitter, registry, states, _ := newSubmitFixture(client)

	tab, _ := registry.AddTab()
	if _, err := submitter.Submit(context.Background(), "hello", SubmitOptions{}); err == nil {
		t.Fatal("Submit should surface the backend error")
	}

	detail := states.GetDetail(tab.ID)
	if detail == nil || len(detail.Messages) != 1 {
		t.Error("optimistic message should survive a failed submission")
	}
	if registry.Get(tab.ID).SessionID != "" {
		t.Error("failed create must not bind the tab")
	}
	if states.GetActiveRunID(tab.ID) != "" {
		t.Error("failed submission must not record a run")
	}
}

func TestSubmitOpensTabWhenNoneActive(t *testing.T) {
	client := newFakeClient()
	client.createResp = &api.CreateConversationResponse{ConversationID: "s1", RunID: "run-1"}
	submitter, registry, _, _ := newSubmitFixture(client)

	result, err := submitter.Submit(context.Background(), "hello", SubmitOptions{})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if registry.Count() != 1 {
		t.Fatalf("tab count = %d, want 1", registry.Count())
	}
	if registry.ActiveID() != result.TabID {
		t.Error("the implicit tab should be active")
	}
}

func TestSubmitTrimsPrompt(t *testing.T) {
	client := newFakeClient()
	client.createResp = &api.CreateConversationResponse{ConversationID: "s1"}
	submitter, _, _, _ := newSubmitFixture(client)

	if _, err := submitter.Submit(context.Background(), "  hello  \n", SubmitOptions{}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if client.createReqs[0].Prompt != "hello" {
		t.Errorf("prompt = %q, want trimmed", client.createReqs[0].Prompt)
	}
}

func TestSubmitDirectoryRefreshFailureIsNonFatal(t *testing.T) {
	client := newFakeClient()
	client.createResp = &api.CreateConversationResponse{ConversationID: "s1", RunID: "run-1"}
	client.listErr = errors.SessionListFailed(context.DeadlineExceeded)
	submitter, _, _, _ := newSubmitFixture(client)

	result, err := submitter.Submit(context.Background(), "hello", SubmitOptions{})
	if err != nil {
		t.Fatalf("Submit should succeed despite a stale directory: %v", err)
	}
	if result.SessionID != "s1" {
		t.Errorf("result = %+v", result)
	}
}
