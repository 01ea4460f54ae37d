package datamarket

// Event is a domain event produced while delivering a transaction. Events
// carry the identifiers and amounts relevant to the operation so that
// external layers can index and notify without inspecting the state.
type Event struct {
	Type       string
	Attributes []EventAttribute
}

// EventAttribute is a single key-value pair of event metadata.
type EventAttribute struct {
	Key   string
	Value string
}

// NewEvent constructs an event from interleaved key-value attribute pairs.
// It panics when given an odd number of pair elements, as that is always a
// programming error.
func NewEvent(typ string, pairs ...string) Event {
	if len(pairs)%2 != 0 {
		panic("event attributes must be key-value pairs")
	}
	ev := Event{Type: typ}
	for i := 0; i < len(pairs); i += 2 {
		ev.Attributes = append(ev.Attributes, EventAttribute{
			Key:   pairs[i],
			Value: pairs[i+1],
		})
	}
	return ev
}

// EventSink consumes events emitted by delivered transactions. Delivery is
// best effort and must never influence the outcome of an operation.
type EventSink interface {
	Emit(Context, []Event)
}
