package stream

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/coder/websocket"

	"github.com/pintaildata/pintail/internal/api"
	"github.com/pintaildata/pintail/internal/logger"
)

const (
	baseReconnectDelay  = 1 * time.Second
	maxReconnectDelay   = 30 * time.Second
	maxConsecutiveFails = 5
)

// DialWebsocket is the production DialFunc. It connects to the run's
// websocket events endpoint and redials on disconnect with exponential
// backoff, giving up after maxConsecutiveFails failures in a row. A
// successful read resets the failure count.
func DialWebsocket(ctx context.Context, url string) (<-chan api.StreamEvent, error) {
	ch := make(chan api.StreamEvent, 64)
	go dialLoop(ctx, url, ch)
	return ch, nil
}

func dialLoop(ctx context.Context, url string, ch chan<- api.StreamEvent) {
	defer close(ch)
	log := logger.ComponentLogger("Stream")

	consecutiveFails := 0
	for {
		if ctx.Err() != nil {
			return
		}

		delivered, err := dialOnce(ctx, url, ch)
		if ctx.Err() != nil {
			return
		}
		if delivered > 0 {
			consecutiveFails = 0
		}

		consecutiveFails++
		if err != nil {
			log.Warn("websocket stream disconnected", "error", err, "failures", consecutiveFails)
		}
		if consecutiveFails >= maxConsecutiveFails {
			log.Warn("giving up on event stream", "failures", consecutiveFails)
			return
		}

		delay := time.Duration(float64(baseReconnectDelay) * math.Pow(2, float64(consecutiveFails-1)))
		if delay > maxReconnectDelay {
			delay = maxReconnectDelay
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}
	}
}

// dialOnce runs one connection to completion, returning the number of events
// delivered and the error that ended it.
func dialOnce(ctx context.Context, url string, ch chan<- api.StreamEvent) (int, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return 0, err
	}
	defer conn.CloseNow()

	delivered := 0
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return delivered, err
		}

		var event api.StreamEvent
		if err := json.Unmarshal(data, &event); err != nil {
			logger.ComponentLogger("Stream").Debug("skipping malformed stream event", "error", err)
			continue
		}

		select {
		case ch <- event:
			delivered++
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "client closing")
			return delivered, ctx.Err()
		}
	}
}
