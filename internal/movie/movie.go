package movie

import (
	"errors"
	"fmt"
)

var (
	ErrUnsorted          = errors.New("events not sorted by time")
	ErrDuplicateObstacle = errors.New("obstacle id reused")
)

// Movie is an immutable, time-ordered event log driving one playback session.
type Movie struct {
	Name     string
	events   []Event
	duration float64
}

// New copies events into a Movie. Events must be sorted ascending by time
// and obstacle ids must not repeat.
func New(name string, events []Event) (*Movie, error) {
	evts := make([]Event, len(events))
	copy(evts, events)

	seen := map[int]bool{}
	for i, e := range evts {
		if e == nil {
			return nil, fmt.Errorf("event %d is nil", i)
		}
		if i > 0 && e.At() < evts[i-1].At() {
			return nil, fmt.Errorf("event %d at %.3fs precedes %.3fs: %w", i, e.At(), evts[i-1].At(), ErrUnsorted)
		}
		var id int
		switch ev := e.(type) {
		case MakeBarrier:
			id = ev.ID
		case MakeTarget:
			id = ev.ID
		default:
			continue
		}
		if seen[id] {
			return nil, fmt.Errorf("event %d: id %d: %w", i, id, ErrDuplicateObstacle)
		}
		seen[id] = true
	}

	m := &Movie{Name: name, events: evts}
	if n := len(evts); n > 0 {
		m.duration = evts[n-1].At()
	}
	return m, nil
}

// Len returns the number of events.
func (m *Movie) Len() int { return len(m.events) }

// At returns event i.
func (m *Movie) At(i int) Event { return m.events[i] }

// Events returns a copy of the event log.
func (m *Movie) Events() []Event {
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// Duration is the time of the last event, or 0 for an empty movie.
func (m *Movie) Duration() float64 { return m.duration }

// Start is the time of the first event, or 0 for an empty movie.
func (m *Movie) Start() float64 {
	if len(m.events) == 0 {
		return 0
	}
	return m.events[0].At()
}

// Counts tallies events by kind.
func (m *Movie) Counts() map[Kind]int {
	out := map[Kind]int{}
	for _, e := range m.events {
		out[e.Kind()]++
	}
	return out
}
