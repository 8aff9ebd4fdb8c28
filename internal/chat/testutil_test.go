package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/pintaildata/pintail/internal/api"
)

// fakeClient is a scriptable api.Client for engine tests.
type fakeClient struct {
	mu sync.Mutex

	sessions    []api.SessionSummary
	listErr     error
	listCalls   int
	details     map[string]*api.SessionDetail
	detailErr   error
	detailCalls []string

	createResp *api.CreateConversationResponse
	createErr  error
	createReqs []api.CreateConversationRequest

	appendResp *api.AppendMessageResponse
	appendErr  error
	appendReqs []api.AppendMessageRequest
}

func newFakeClient() *fakeClient {
	return &fakeClient{details: make(map[string]*api.SessionDetail)}
}

func (f *fakeClient) ListSessions(ctx context.Context, projectID string) ([]api.SessionSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.sessions, nil
}

func (f *fakeClient) GetSessionDetail(ctx context.Context, sessionID string, includeEvents bool) (*api.SessionDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls = append(f.detailCalls, sessionID)
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	if detail, ok := f.details[sessionID]; ok {
		return detail, nil
	}
	return nil, fmt.Errorf("no detail scripted for %s", sessionID)
}

func (f *fakeClient) CreateConversation(ctx context.Context, req api.CreateConversationRequest) (*api.CreateConversationResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createReqs = append(f.createReqs, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createResp, nil
}

func (f *fakeClient) AppendMessage(ctx context.Context, sessionID string, req api.AppendMessageRequest) (*api.AppendMessageResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appendReqs = append(f.appendReqs, req)
	if f.appendErr != nil {
		return nil, f.appendErr
	}
	return f.appendResp, nil
}

func (f *fakeClient) EventsURL(runID string) string {
	return "ws://fake/runs/" + runID + "/events"
}

// toolEvent builds a tool lifecycle event for turn builder tests.
func toolEvent(runID, toolName, subtype string, content any) api.StreamEvent {
	return api.StreamEvent{
		Type:    api.EventTypeTool,
		Subtype: subtype,
		Content: content,
		Metadata: map[string]any{
			"run_id":    runID,
			"tool_name": toolName,
		},
	}
}

// reasoningEvent builds a reasoning event for turn builder tests.
func reasoningEvent(runID, text string) api.StreamEvent {
	return api.StreamEvent{
		Type:     api.EventTypeReasoning,
		Content:  text,
		Metadata: map[string]any{"run_id": runID},
	}
}
