package chat

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pintaildata/pintail/internal/api"
	"github.com/pintaildata/pintail/internal/errors"
	"github.com/pintaildata/pintail/internal/logger"
)

// TitleLength is the display width tab titles derived from a prompt are
// truncated to.
const TitleLength = 40

// SubmitOptions carries the model choice and contextual metadata attached
// to a submission. Metadata is opaque to the engine; the app fills in the
// active data source, project id, and pinned asset ids.
type SubmitOptions struct {
	Model    string
	Metadata map[string]any
}

// SubmitResult reports where a submission landed.
type SubmitResult struct {
	TabID     string
	SessionID string
	RunID     string
	Created   bool // true if a new conversation was created, false for append
}

// Submitter validates and dispatches user messages, choosing between
// creating a conversation and appending to one, with an optimistic local
// update ahead of the network round trip.
type Submitter struct {
	client    api.Client
	registry  *TabRegistry
	states    *TabStateManager
	directory *SessionDirectory
}

// NewSubmitter creates a submitter.
func NewSubmitter(client api.Client, registry *TabRegistry, states *TabStateManager, directory *SessionDirectory) *Submitter {
	return &Submitter{
		client:    client,
		registry:  registry,
		states:    states,
		directory: directory,
	}
}

// Submit sends a prompt from the active tab. With no active tab one is
// created first, subject to the tab capacity limit; at capacity the
// submission is rejected rather than silently dropped.
//
// The optimistic user message is installed before the network call and is
// deliberately not rolled back on failure: the user's text stays visible
// next to the error, and the next authoritative fetch reconciles the
// record. Whether failed submissions should retry automatically is a
// product decision; today resubmission is manual.
func (s *Submitter) Submit(ctx context.Context, prompt string, opts SubmitOptions) (*SubmitResult, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, errors.EmptyPrompt()
	}

	tab := s.registry.Active()
	if tab == nil {
		created, err := s.registry.AddTab()
		if err != nil {
			return nil, err
		}
		tab = created
	}

	log := logger.WithTab(tab.ID)

	// Show the prompt immediately, ahead of any network latency.
	optimistic := api.Message{
		ID:        uuid.New().String(),
		Role:      api.RoleUser,
		Content:   prompt,
		Seq:       s.states.NextSeq(tab.ID),
		CreatedAt: time.Now(),
	}
	s.states.AppendOptimistic(tab.ID, optimistic)

	if tab.SessionID == "" {
		return s.createConversation(ctx, log, tab, prompt, opts)
	}
	return s.appendMessage(ctx, log, tab, prompt, opts)
}

func (s *Submitter) createConversation(ctx context.Context, log *slog.Logger, tab *Tab, prompt string, opts SubmitOptions) (*SubmitResult, error) {
	resp, err := s.client.CreateConversation(ctx, api.CreateConversationRequest{
		Prompt:   prompt,
		Model:    opts.Model,
		Metadata: opts.Metadata,
	})
	if err != nil {
		// The optimistic message stays visible; no run started.
		log.Warn("create conversation failed", "error", err)
		return nil, err
	}

	title := TruncateDisplay(flatten(prompt), TitleLength)
	s.registry.BindSession(tab.ID, resp.ConversationID, title)
	if resp.RunID != "" {
		s.states.SetActiveRunID(tab.ID, resp.RunID)
	}

	log.Debug("conversation created", "sessionID", resp.ConversationID, "runID", resp.RunID)

	if err := s.directory.Refresh(ctx, ""); err != nil {
		// Non-fatal: the conversation exists, the list is just stale.
		log.Warn("directory refresh after create failed", "error", err)
	}

	return &SubmitResult{
		TabID:     tab.ID,
		SessionID: resp.ConversationID,
		RunID:     resp.RunID,
		Created:   true,
	}, nil
}

func (s *Submitter) appendMessage(ctx context.Context, log *slog.Logger, tab *Tab, prompt string, opts SubmitOptions) (*SubmitResult, error) {
	resp, err := s.client.AppendMessage(ctx, tab.SessionID, api.AppendMessageRequest{
		Role:     api.RoleUser,
		Content:  prompt,
		Model:    opts.Model,
		Metadata: opts.Metadata,
	})
	if err != nil {
		log.Warn("append message failed", "sessionID", tab.SessionID, "error", err)
		return nil, err
	}

	if resp.RunID != "" {
		s.states.SetActiveRunID(tab.ID, resp.RunID)
	}

	log.Debug("message appended", "sessionID", tab.SessionID, "runID", resp.RunID)

	return &SubmitResult{
		TabID:     tab.ID,
		SessionID: tab.SessionID,
		RunID:     resp.RunID,
	}, nil
}
