package domain

import (
	"fmt"
	"sort"
	"time"
)

// EventKind distinguishes the three event shapes the simulator emits.
type EventKind string

const (
	EventLoad     EventKind = "load"
	EventDelivery EventKind = "delivery"
	EventUpdate   EventKind = "update"
)

// Event is one append-only record of something happening at a point in
// simulated time. Load and Deliver return events rather than writing to a
// shared logger; the Simulator owns the EventLog.
type Event struct {
	Kind      EventKind
	ParcelID  string
	Time      time.Time
	TruckID   int // 0 when not applicable (e.g. an address update)
	Message   string
}

// String renders an event using the wording from spec.md section 6.
func (e Event) String() string {
	switch e.Kind {
	case EventLoad:
		return fmt.Sprintf("Package %s loaded onto Truck %d at %s.", e.ParcelID, e.TruckID, e.Time.Format("3:04 PM"))
	case EventDelivery:
		return fmt.Sprintf("Delivered Package %s at %s by Truck %d.", e.ParcelID, e.Time.Format("3:04 PM"), e.TruckID)
	case EventUpdate:
		return e.Message
	default:
		return e.Message
	}
}

// EventLog is an append-only, chronologically sortable record of events.
type EventLog struct {
	events []Event
}

// Append adds events to the log in the order given.
func (l *EventLog) Append(events ...Event) {
	l.events = append(l.events, events...)
}

// All returns every recorded event, unsorted (insertion order).
func (l *EventLog) All() []Event {
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Sorted returns the log's events ordered by time, stable so that
// coincident-time events retain their insertion (and thus causal) order.
func (l *EventLog) Sorted() []Event {
	out := l.All()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.Before(out[j].Time)
	})
	return out
}

// Len reports how many events have been recorded.
func (l *EventLog) Len() int { return len(l.events) }
