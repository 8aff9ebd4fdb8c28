package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pintaildata/pintail/internal/errors"
)

func TestListSessions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/sessions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("project_id"); got != "proj-1" {
			t.Errorf("project_id = %q, want proj-1", got)
		}
		json.NewEncoder(w).Encode([]SessionSummary{
			{ID: "s1", Title: "Revenue analysis", Status: SessionStatusIdle},
			{ID: "s2", Title: "Churn model", Status: SessionStatusActive},
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	sessions, err := client.ListSessions(context.Background(), "proj-1")
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}
	if sessions[0].ID != "s1" || sessions[1].Status != SessionStatusActive {
		t.Errorf("unexpected sessions: %+v", sessions)
	}
}

func TestGetSessionDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/sessions/s1" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("include_events"); got != "true" {
			t.Errorf("include_events = %q, want true", got)
		}
		json.NewEncoder(w).Encode(SessionDetail{
			ID:          "s1",
			Status:      SessionStatusActive,
			ActiveRunID: "run-7",
			Messages: []Message{
				{ID: "m1", Role: RoleUser, Content: "show revenue", Seq: 1, RunID: "run-7"},
			},
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	detail, err := client.GetSessionDetail(context.Background(), "s1", true)
	if err != nil {
		t.Fatalf("GetSessionDetail failed: %v", err)
	}
	if detail.ActiveRunID != "run-7" {
		t.Errorf("ActiveRunID = %q, want run-7", detail.ActiveRunID)
	}
	if len(detail.Messages) != 1 || detail.Messages[0].RunID != "run-7" {
		t.Errorf("unexpected messages: %+v", detail.Messages)
	}
}

func TestGetSessionDetailNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Session not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	_, err := client.GetSessionDetail(context.Background(), "missing", false)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if !errors.Is(err, errors.KindNotFound) {
		t.Errorf("error kind = %v, want KindNotFound", errors.GetKind(err))
	}
}

func TestCreateConversation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/conversations" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req CreateConversationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if req.Prompt != "what drives churn?" {
			t.Errorf("prompt = %q", req.Prompt)
		}
		if req.Metadata["source"] != "orders.parquet" {
			t.Errorf("metadata not forwarded: %+v", req.Metadata)
		}
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(CreateConversationResponse{
			ConversationID: "conv-1",
			RunID:          "run-1",
			EventsURL:      "/api/v1/runs/run-1/events",
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	resp, err := client.CreateConversation(context.Background(), CreateConversationRequest{
		Prompt:   "what drives churn?",
		Model:    "gpt-sql",
		Metadata: map[string]any{"source": "orders.parquet"},
	})
	if err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}
	if resp.ConversationID != "conv-1" || resp.RunID != "run-1" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestAppendMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/sessions/s1/messages" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(AppendMessageResponse{RunID: "run-2"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	resp, err := client.AppendMessage(context.Background(), "s1", AppendMessageRequest{
		Role:    RoleUser,
		Content: "break it down by region",
	})
	if err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}
	if resp.RunID != "run-2" {
		t.Errorf("RunID = %q, want run-2", resp.RunID)
	}
}

func TestAppendMessageServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	_, err := client.AppendMessage(context.Background(), "s1", AppendMessageRequest{Role: RoleUser, Content: "x"})
	if err == nil {
		t.Fatal("expected error for 500")
	}
	if !errors.Is(err, errors.KindSubmission) {
		t.Errorf("error kind = %v, want KindSubmission", errors.GetKind(err))
	}
}

func TestEventsURL(t *testing.T) {
	client := NewHTTPClient("http://127.0.0.1:8400")
	got := client.EventsURL("run-9")
	want := "ws://127.0.0.1:8400/api/v1/runs/run-9/events"
	if got != want {
		t.Errorf("EventsURL = %q, want %q", got, want)
	}

	secure := NewHTTPClient("https://duck.example.com")
	if got := secure.EventsURL("r"); got != "wss://duck.example.com/api/v1/runs/r/events" {
		t.Errorf("secure EventsURL = %q", got)
	}
}

func TestStreamEventHelpers(t *testing.T) {
	ev := StreamEvent{
		Type:    EventTypeTool,
		Subtype: SubtypeStart,
		Metadata: map[string]any{
			"run_id":    "run-1",
			"tool_name": "run_query",
		},
	}
	if ev.RunID() != "run-1" {
		t.Errorf("RunID = %q", ev.RunID())
	}
	if ev.ToolName() != "run_query" {
		t.Errorf("ToolName = %q", ev.ToolName())
	}
	if ev.Terminal() {
		t.Error("tool start should not be terminal")
	}

	if !(StreamEvent{Type: EventTypeRun, Subtype: SubtypeEnd}).Terminal() {
		t.Error("run/end should be terminal")
	}
	if !(StreamEvent{Type: EventTypeMessage, Subtype: SubtypeFinal}).Terminal() {
		t.Error("message/final should be terminal")
	}
	if (StreamEvent{Type: EventTypeMessage}).Terminal() {
		t.Error("plain message should not be terminal")
	}

	var empty StreamEvent
	if empty.RunID() != "" || empty.ToolName() != "" {
		t.Error("helpers should tolerate nil metadata")
	}
}
