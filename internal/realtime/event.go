// Package realtime pushes row-change events to connected websocket clients.
//
// Every event names the users allowed to see it (Audience). A client only
// receives an event when it is in the audience and has a matching
// subscription for the table, optionally narrowed to one column value.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
)

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// Tables that produce change events.
const (
	TableBookings      = "bookings"
	TableMessages      = "messages"
	TableConversations = "conversations"
	TableReviews       = "reviews"
	TableSubscriptions = "subscriptions"
	TableUnreadCounts  = "unread_counts"
)

type Event struct {
	Table    string          `json:"table"`
	Type     EventType       `json:"type"`
	Record   json.RawMessage `json:"record"`
	Audience []int64         `json:"audience"`
}

// NewEvent encodes record and addresses the event to the given users.
func NewEvent(table string, typ EventType, record any, audience ...int64) (Event, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return Event{}, fmt.Errorf("encode %s record: %w", table, err)
	}
	return Event{Table: table, Type: typ, Record: raw, Audience: dedupe(audience)}, nil
}

// Publisher delivers events to every API instance's hub.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Subscription is a client-side filter. An empty Column matches every row of
// the table.
type Subscription struct {
	Table  string `json:"table"`
	Column string `json:"column,omitempty"`
	Value  string `json:"value,omitempty"`
}

func (s Subscription) key() string {
	return s.Table + "|" + s.Column + "|" + s.Value
}

// Matches reports whether the decoded record satisfies the filter.
func (s Subscription) Matches(table string, record map[string]any) bool {
	if s.Table != table {
		return false
	}
	if s.Column == "" {
		return true
	}
	v, ok := record[s.Column]
	if !ok || v == nil {
		return false
	}
	return fmt.Sprint(v) == s.Value
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
