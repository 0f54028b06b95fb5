// Package eventstore keeps the ordered, append-only history of every
// aggregate (one per game, one per lobby).
package eventstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"settlers/apperr"
)

// AnySeq disables the optimistic sequence check on Append.
const AnySeq int64 = -1

// Event is one stored record. Seq starts at 1 and increases by one per
// aggregate; stored events are never reordered or rewritten.
type Event struct {
	ID          uuid.UUID       `json:"id"`
	AggregateID string          `json:"aggregateId"`
	Type        string          `json:"type"`
	Data        json.RawMessage `json:"data"`
	Seq         int64           `json:"seq"`
	Timestamp   time.Time       `json:"timestamp"`
}

// Draft is an event that has not been stored yet.
type Draft struct {
	Type string
	Data json.RawMessage
	At   time.Time
}

// NewDraft encodes a payload as a draft.
func NewDraft(eventType string, payload any, at time.Time) (Draft, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Draft{}, apperr.System(fmt.Sprintf("encode %s", eventType), err)
	}
	return Draft{Type: eventType, Data: data, At: at}, nil
}

// Store persists events per aggregate.
//
// Append stores drafts atomically after the last event of the aggregate. When
// expectedSeq is not AnySeq it must equal the aggregate's current last
// sequence number, otherwise nothing is written and a Conflict error is
// returned. Concurrent appends to one aggregate serialize: exactly one of two
// racing appends with the same expectedSeq succeeds.
//
// List returns events with Seq > afterSeq in sequence order, at most limit of
// them when limit is positive.
type Store interface {
	Append(ctx context.Context, aggregateID string, expectedSeq int64, drafts ...Draft) ([]Event, error)
	List(ctx context.Context, aggregateID string, afterSeq int64, limit int) ([]Event, error)
	LastSeq(ctx context.Context, aggregateID string) (int64, error)
	Close() error
}

// build stamps drafts as events following lastSeq.
func build(aggregateID string, lastSeq int64, drafts []Draft, now time.Time) []Event {
	events := make([]Event, len(drafts))
	for i, d := range drafts {
		at := d.At
		if at.IsZero() {
			at = now
		}
		events[i] = Event{
			ID:          uuid.New(),
			AggregateID: aggregateID,
			Type:        d.Type,
			Data:        append(json.RawMessage(nil), d.Data...),
			Seq:         lastSeq + int64(i) + 1,
			Timestamp:   at.UTC().Truncate(time.Millisecond),
		}
	}
	return events
}

func checkAppend(aggregateID string, expectedSeq, lastSeq int64, drafts []Draft) error {
	if aggregateID == "" {
		return apperr.Validation("aggregate id is required")
	}
	for _, d := range drafts {
		if d.Type == "" {
			return apperr.Validation("event type is required")
		}
	}
	if expectedSeq != AnySeq && expectedSeq != lastSeq {
		return apperr.Conflict("aggregate %s is at sequence %d, expected %d", aggregateID, lastSeq, expectedSeq).
			WithMetadata("aggregate", aggregateID)
	}
	return nil
}
