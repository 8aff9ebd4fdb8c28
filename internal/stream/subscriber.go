// Package stream maintains the live event subscription for the active tab's
// in-flight run. At most one subscription exists per process; attaching for a
// new run tears down the previous one, and the tab registry's deactivate hook
// detaches before the active tab ever changes, so events cannot leak across
// tabs.
package stream

import (
	"context"
	"sync"

	"github.com/pintaildata/pintail/internal/api"
	"github.com/pintaildata/pintail/internal/errors"
	"github.com/pintaildata/pintail/internal/logger"
)

// Status is the connection state of the subscription, surfaced in the UI
// next to the streaming turn.
type Status int

const (
	StatusIdle Status = iota
	StatusConnecting
	StatusStreaming
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusStreaming:
		return "streaming"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// DialFunc opens an event source for a run's events URL. The returned channel
// carries decoded events and closes when the source ends for good (context
// cancelled, or reconnection given up). Implementations own reconnection.
type DialFunc func(ctx context.Context, url string) (<-chan api.StreamEvent, error)

// Notification wakes the UI event loop after subscription state changes. Gen
// identifies the attachment the change belongs to; the app discards
// notifications whose Gen is not current, so late deliveries from a torn-down
// subscription render nothing.
type Notification struct {
	TabID string
	RunID string
	Gen   uint64
}

// Subscriber owns the single live event subscription. Events accumulate in
// an ordered buffer for the turn builder; a terminal run event marks the
// subscription completed but keeps the connection open until detach, since
// the backend may still deliver trailing events.
type Subscriber struct {
	client api.Client
	dial   DialFunc

	mu        sync.Mutex
	gen       uint64
	tabID     string
	runID     string
	events    []api.StreamEvent
	status    Status
	completed bool
	cancel    context.CancelFunc

	notify chan Notification
}

// NewSubscriber creates a subscriber delivering events dialed by dial.
// Pass DialWebsocket outside of tests.
func NewSubscriber(client api.Client, dial DialFunc) *Subscriber {
	return &Subscriber{
		client: client,
		dial:   dial,
		notify: make(chan Notification, 128),
	}
}

// Notify returns the channel the UI event loop listens on. Notifications are
// wake-ups, not payloads: on receipt the app snapshots Events and Status.
func (s *Subscriber) Notify() <-chan Notification {
	return s.notify
}

// Attach subscribes to a run's event stream on behalf of a tab, tearing down
// any previous subscription first. The dial happens off the calling
// goroutine; connection progress arrives through Notify.
func (s *Subscriber) Attach(tabID, runID string) {
	s.mu.Lock()
	s.teardownLocked()
	s.gen++
	gen := s.gen
	s.tabID = tabID
	s.runID = runID
	s.events = nil
	s.completed = false
	s.status = StatusConnecting

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	url := s.client.EventsURL(runID)
	s.mu.Unlock()

	logger.WithTab(tabID).Debug("attaching event stream", "runID", runID, "url", url)
	go s.run(ctx, gen, tabID, runID, url)
}

// Detach tears down the current subscription, if any. Buffered events are
// kept until the next attach so the app can fold them into the final
// re-fetch decision.
func (s *Subscriber) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel == nil && s.status == StatusIdle {
		return
	}
	logger.WithTab(s.tabID).Debug("detaching event stream", "runID", s.runID)
	s.teardownLocked()
	s.status = StatusIdle
	s.tabID = ""
	s.runID = ""
}

// Attached returns the tab and run of the current subscription, or empty
// strings when idle.
func (s *Subscriber) Attached() (tabID, runID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tabID, s.runID
}

// Events returns a snapshot of the buffered events in arrival order.
func (s *Subscriber) Events() []api.StreamEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := make([]api.StreamEvent, len(s.events))
	copy(events, s.events)
	return events
}

// Status returns the connection state.
func (s *Subscriber) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Completed reports whether a terminal run event has arrived for the current
// subscription.
func (s *Subscriber) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}

// Gen returns the current attachment generation, for matching notifications.
func (s *Subscriber) Gen() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// teardownLocked cancels the active source. Caller holds the lock.
func (s *Subscriber) teardownLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Subscriber) run(ctx context.Context, gen uint64, tabID, runID, url string) {
	log := logger.WithTab(tabID)

	ch, err := s.dial(ctx, url)
	if err != nil {
		log.Warn("event stream dial failed", "error", errors.StreamFailed(runID, err))
		s.finish(gen, tabID, runID, StatusError)
		return
	}

	for event := range ch {
		s.mu.Lock()
		if gen != s.gen {
			// A newer attachment took over; this source is history.
			s.mu.Unlock()
			return
		}
		s.events = append(s.events, event)
		s.status = StatusStreaming
		if event.Terminal() {
			// The run is done, but the connection stays open until
			// detach in case trailing events arrive.
			s.completed = true
		}
		s.mu.Unlock()
		s.post(Notification{TabID: tabID, RunID: runID, Gen: gen})
	}

	if ctx.Err() != nil {
		return
	}

	// Source gave up. If the run already completed this is a normal close.
	s.mu.Lock()
	completed := s.completed && gen == s.gen
	s.mu.Unlock()
	if completed {
		return
	}
	log.Warn("event stream lost", "error", errors.StreamFailed(runID, nil))
	s.finish(gen, tabID, runID, StatusError)
}

// finish records a terminal status for an attachment, if still current.
func (s *Subscriber) finish(gen uint64, tabID, runID string, status Status) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.status = status
	s.mu.Unlock()
	s.post(Notification{TabID: tabID, RunID: runID, Gen: gen})
}

// post delivers a notification without blocking the reader goroutine. A full
// channel drops the notification; the app snapshots full state on receipt.
func (s *Subscriber) post(n Notification) {
	select {
	case s.notify <- n:
	default:
	}
}
