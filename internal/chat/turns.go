package chat

import (
	"math"
	"sort"
	"strings"

	"github.com/pintaildata/pintail/internal/api"
)

// ToolCallState is the lifecycle state of a grouped tool invocation.
type ToolCallState string

const (
	ToolPending   ToolCallState = "pending"
	ToolCompleted ToolCallState = "completed"
	ToolError     ToolCallState = "error"
)

// GroupedToolEvent pairs a tool invocation's start and end events into one
// renderable record. Derived, never persisted.
type GroupedToolEvent struct {
	ToolName   string
	State      ToolCallState
	Input      any
	Output     any
	Error      string
	StartEvent *api.StreamEvent
	EndEvent   *api.StreamEvent
}

// ChatTurn is one logical exchange: a user prompt plus everything the agent
// produced in response, grouped by run id. Turns are pure projections
// recomputed from messages and events on every render pass; they hold no
// identity beyond their derived key.
type ChatTurn struct {
	Key               string
	RunID             string
	Seq               int
	UserMessages      []api.Message
	AssistantMessages []api.Message
	OtherMessages     []api.Message
	Events            []api.StreamEvent
	ReasoningText     string
	ToolEvents        []api.StreamEvent
	GroupedToolEvents []GroupedToolEvent
	IsActive          bool
}

// BuildTurns merges a tab's cached session detail with live stream events
// into an ordered list of renderable turns.
//
// Messages sharing a run id collapse into one turn whose seq is the minimum
// seq among them; a message without a run id becomes its own turn keyed by
// message id. When a run is streaming but no message for it has been
// persisted yet, a synthetic empty turn is appended so the run's events have
// somewhere to render; it carries a maximal seq so it sorts last. A turn is
// active iff the stream is live and the turn belongs to the in-flight run.
func BuildTurns(detail *api.SessionDetail, liveEvents []api.StreamEvent, isStreaming bool, activeRunID string) []ChatTurn {
	eventsByRun := make(map[string][]api.StreamEvent)
	collectEvents := func(events []api.StreamEvent) {
		for _, ev := range events {
			if runID := ev.RunID(); runID != "" {
				eventsByRun[runID] = append(eventsByRun[runID], ev)
			}
		}
	}
	if detail != nil {
		collectEvents(detail.Events)
	}
	collectEvents(liveEvents)

	var turns []*ChatTurn
	byRun := make(map[string]*ChatTurn)

	turnForRun := func(runID string, seq int) *ChatTurn {
		if turn, ok := byRun[runID]; ok {
			if seq < turn.Seq {
				turn.Seq = seq
			}
			return turn
		}
		turn := &ChatTurn{Key: runID, RunID: runID, Seq: seq}
		byRun[runID] = turn
		turns = append(turns, turn)
		return turn
	}

	if detail != nil {
		for _, msg := range detail.Messages {
			var turn *ChatTurn
			if msg.RunID != "" {
				turn = turnForRun(msg.RunID, msg.Seq)
			} else {
				// Legacy message predating run grouping: a singleton turn
				// keyed by message id.
				turn = &ChatTurn{Key: msg.ID, Seq: msg.Seq}
				turns = append(turns, turn)
			}

			switch msg.Role {
			case api.RoleUser:
				turn.UserMessages = append(turn.UserMessages, msg)
			case api.RoleAssistant:
				turn.AssistantMessages = append(turn.AssistantMessages, msg)
			default:
				turn.OtherMessages = append(turn.OtherMessages, msg)
			}
		}
	}

	// The run can exist before any of its messages have been persisted
	// (streaming started, nothing fetched yet). Synthesize a turn for it.
	if isStreaming && activeRunID != "" {
		if _, ok := byRun[activeRunID]; !ok {
			turn := &ChatTurn{Key: activeRunID, RunID: activeRunID, Seq: math.MaxInt}
			byRun[activeRunID] = turn
			turns = append(turns, turn)
		}
	}

	for _, turn := range turns {
		if turn.RunID == "" {
			continue
		}
		events := eventsByRun[turn.RunID]
		turn.Events = events
		turn.ReasoningText = concatReasoning(events)
		for _, ev := range events {
			if ev.Type == api.EventTypeTool {
				turn.ToolEvents = append(turn.ToolEvents, ev)
			}
		}
		turn.GroupedToolEvents = groupToolEvents(turn.ToolEvents)
		turn.IsActive = isStreaming && turn.RunID == activeRunID
	}

	sort.SliceStable(turns, func(i, j int) bool { return turns[i].Seq < turns[j].Seq })

	result := make([]ChatTurn, len(turns))
	for i, turn := range turns {
		result[i] = *turn
	}
	return result
}

// concatReasoning concatenates the text of all reasoning events in arrival
// order.
func concatReasoning(events []api.StreamEvent) string {
	var sb strings.Builder
	for _, ev := range events {
		if ev.Type != api.EventTypeReasoning {
			continue
		}
		sb.WriteString(ExtractText(ev.Content))
	}
	return sb.String()
}

// groupToolEvents pairs tool start events with their end/error events.
//
// Pairing is LIFO by tool name: an end event resolves the most recently
// opened still-pending entry with the same name. Tool calls of the same name
// can be issued back-to-back before the first resolves, and without an
// explicit call id upstream, newest-open-to-newest-close is the only rule
// consistent with call stack semantics. An end with no pending start (seen
// after a stream reconnect, for example) synthesizes a standalone resolved
// entry rather than being dropped.
func groupToolEvents(toolEvents []api.StreamEvent) []GroupedToolEvent {
	if len(toolEvents) == 0 {
		return nil
	}

	grouped := make([]GroupedToolEvent, 0, len(toolEvents))

	for i := range toolEvents {
		ev := toolEvents[i]
		name := ev.ToolName()

		switch ev.Subtype {
		case api.SubtypeStart:
			grouped = append(grouped, GroupedToolEvent{
				ToolName:   name,
				State:      ToolPending,
				Input:      ev.Content,
				StartEvent: &toolEvents[i],
			})

		case api.SubtypeEnd, api.SubtypeError:
			resolved := false
			for j := len(grouped) - 1; j >= 0; j-- {
				if grouped[j].State == ToolPending && grouped[j].ToolName == name {
					resolveToolEvent(&grouped[j], &toolEvents[i])
					resolved = true
					break
				}
			}
			if !resolved {
				orphan := GroupedToolEvent{ToolName: name}
				resolveToolEvent(&orphan, &toolEvents[i])
				grouped = append(grouped, orphan)
			}
		}
	}

	return grouped
}

// resolveToolEvent applies an end or error event to a grouped entry.
func resolveToolEvent(entry *GroupedToolEvent, ev *api.StreamEvent) {
	entry.EndEvent = ev
	if ev.Subtype == api.SubtypeError {
		entry.State = ToolError
		entry.Error = ExtractText(ev.Content)
		if entry.Error == "" {
			if msg, ok := ev.Metadata["error"].(string); ok {
				entry.Error = msg
			}
		}
		return
	}
	entry.State = ToolCompleted
	entry.Output = ev.Content
}
