// Package projection rebuilds read models by folding an aggregate's events in
// sequence order.
package projection

import (
	"sort"

	"settlers/eventstore"
)

// Reducer folds one event into a state.
type Reducer[S any] func(state S, ev eventstore.Event) (S, error)

// Projector folds events with a reducer per event type. Events of types with
// no reducer are skipped, so older projectors read newer streams.
type Projector[S any] struct {
	initial  func(aggregateID string) S
	reducers map[string]Reducer[S]
	fallback Reducer[S]
}

func NewProjector[S any](initial func(aggregateID string) S) *Projector[S] {
	return &Projector[S]{initial: initial, reducers: make(map[string]Reducer[S])}
}

// On registers the reducer for an event type.
func (p *Projector[S]) On(eventType string, r Reducer[S]) *Projector[S] {
	p.reducers[eventType] = r
	return p
}

// Otherwise registers a reducer for every type without its own.
func (p *Projector[S]) Otherwise(r Reducer[S]) *Projector[S] {
	p.fallback = r
	return p
}

// Project folds the aggregate's events over its initial state. Events are
// ordered by sequence number, never by timestamp; events of other aggregates
// and repeated sequence numbers are ignored, so projecting a stream that
// overlaps itself gives the same state as projecting it once.
func (p *Projector[S]) Project(aggregateID string, events []eventstore.Event) (S, error) {
	state := p.initial(aggregateID)
	for _, ev := range Ordered(aggregateID, events) {
		r, ok := p.reducers[ev.Type]
		if !ok {
			r = p.fallback
		}
		if r == nil {
			continue
		}
		next, err := r(state, ev)
		if err != nil {
			var zero S
			return zero, err
		}
		state = next
	}
	return state, nil
}

// Ordered returns the aggregate's events sorted by sequence number with
// duplicates removed.
func Ordered(aggregateID string, events []eventstore.Event) []eventstore.Event {
	out := make([]eventstore.Event, 0, len(events))
	for _, ev := range events {
		if ev.AggregateID == aggregateID {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })

	deduped := out[:0]
	for _, ev := range out {
		if n := len(deduped); n > 0 && ev.Seq == deduped[n-1].Seq {
			continue
		}
		deduped = append(deduped, ev)
	}
	return deduped
}
