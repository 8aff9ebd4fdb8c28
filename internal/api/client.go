package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pintaildata/pintail/internal/errors"
	"github.com/pintaildata/pintail/internal/logger"
)

// Client is the surface the conversation engine needs from the backend.
// It is an interface so tests can script responses without a server.
type Client interface {
	ListSessions(ctx context.Context, projectID string) ([]SessionSummary, error)
	GetSessionDetail(ctx context.Context, sessionID string, includeEvents bool) (*SessionDetail, error)
	CreateConversation(ctx context.Context, req CreateConversationRequest) (*CreateConversationResponse, error)
	AppendMessage(ctx context.Context, sessionID string, req AppendMessageRequest) (*AppendMessageResponse, error)
	// EventsURL returns the websocket URL for a run's event stream.
	EventsURL(runID string) string
}

// DefaultBaseURL is where the bundled backend listens locally.
const DefaultBaseURL = "http://127.0.0.1:8400"

const requestTimeout = 30 * time.Second

// HTTPClient talks to the backend's JSON API under /api/v1.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient creates a client for the backend at baseURL.
// An empty baseURL falls back to DefaultBaseURL.
func NewHTTPClient(baseURL string) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// ListSessions returns the workspace's conversation sessions, optionally
// filtered to one project.
func (c *HTTPClient) ListSessions(ctx context.Context, projectID string) ([]SessionSummary, error) {
	path := "/api/v1/sessions"
	if projectID != "" {
		path += "?project_id=" + url.QueryEscape(projectID)
	}

	var sessions []SessionSummary
	if err := c.getJSON(ctx, path, &sessions); err != nil {
		return nil, errors.SessionListFailed(err)
	}
	return sessions, nil
}

// GetSessionDetail fetches the authoritative message/event record for a session.
func (c *HTTPClient) GetSessionDetail(ctx context.Context, sessionID string, includeEvents bool) (*SessionDetail, error) {
	path := fmt.Sprintf("/api/v1/sessions/%s?include_events=%t", url.PathEscape(sessionID), includeEvents)

	var detail SessionDetail
	if err := c.getJSON(ctx, path, &detail); err != nil {
		if he, ok := err.(*httpError); ok && he.status == http.StatusNotFound {
			return nil, errors.SessionNotFound(sessionID)
		}
		return nil, errors.SessionFetchFailed(sessionID, err)
	}
	return &detail, nil
}

// CreateConversation starts a new conversation and (usually) an agent run.
func (c *HTTPClient) CreateConversation(ctx context.Context, req CreateConversationRequest) (*CreateConversationResponse, error) {
	var resp CreateConversationResponse
	if err := c.postJSON(ctx, "/api/v1/conversations", req, &resp); err != nil {
		return nil, errors.CreateConversationFailed(err)
	}
	return &resp, nil
}

// AppendMessage appends a message to an existing conversation.
func (c *HTTPClient) AppendMessage(ctx context.Context, sessionID string, req AppendMessageRequest) (*AppendMessageResponse, error) {
	path := fmt.Sprintf("/api/v1/sessions/%s/messages", url.PathEscape(sessionID))

	var resp AppendMessageResponse
	if err := c.postJSON(ctx, path, req, &resp); err != nil {
		return nil, errors.AppendMessageFailed(sessionID, err)
	}
	return &resp, nil
}

// EventsURL returns the websocket URL for a run's event stream.
// The http(s) scheme of the base URL is rewritten to ws(s).
func (c *HTTPClient) EventsURL(runID string) string {
	wsBase := c.baseURL
	switch {
	case strings.HasPrefix(wsBase, "https://"):
		wsBase = "wss://" + strings.TrimPrefix(wsBase, "https://")
	case strings.HasPrefix(wsBase, "http://"):
		wsBase = "ws://" + strings.TrimPrefix(wsBase, "http://")
	}
	return wsBase + "/api/v1/runs/" + url.PathEscape(runID) + "/events"
}

// httpError carries the status code so callers can distinguish 404s.
type httpError struct {
	status int
	body   string
}

func (e *httpError) Error() string {
	if e.body != "" {
		return fmt.Sprintf("backend returned %d: %s", e.status, e.body)
	}
	return fmt.Sprintf("backend returned %d", e.status)
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *HTTPClient) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		logger.ComponentLogger("api").Warn("request failed",
			"method", req.Method, "url", req.URL.String(), "status", resp.StatusCode)
		return &httpError{status: resp.StatusCode, body: strings.TrimSpace(string(body))}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
