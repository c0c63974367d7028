package explorer

import (
	"context"
	"time"
)

// EventType identifies a query lifecycle event.
type EventType string

const (
	QueryStart   EventType = "query:start"
	QuerySuccess EventType = "query:success"
	QueryFailed  EventType = "query:failed"
)

// Event is emitted on the explorer's event bus around every query.
type Event struct {
	Type      EventType      `json:"type"`               // The lifecycle stage.
	QueryID   string         `json:"queryId"`            // Identifier shared by all events of one query.
	Timestamp int64          `json:"timestamp"`          // Unix milliseconds.
	Text      string         `json:"text,omitempty"`     // Free text supplied with the query.
	Criteria  map[string]any `json:"criteria,omitempty"` // Effective criteria after merging.
	Count     *int           `json:"count,omitempty"`    // Matching rows, on success.
	Error     *string        `json:"error,omitempty"`    // Failure message, on failure.
	Duration  *int64         `json:"duration,omitempty"` // Milliseconds, on success or failure.
}

// EventCallback receives events for a subscription.
type EventCallback func(ctx context.Context, event Event) error

// subscription records an active bus registration.
type subscription struct {
	event       EventType
	unsubscribe func()
}

func newEvent(t EventType, queryID, text string, c map[string]any, started time.Time) Event {
	e := Event{
		Type:      t,
		QueryID:   queryID,
		Timestamp: time.Now().UnixMilli(),
		Text:      text,
		Criteria:  c,
	}
	if t != QueryStart {
		d := time.Since(started).Milliseconds()
		e.Duration = &d
	}
	return e
}
