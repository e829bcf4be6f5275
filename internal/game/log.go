package game

import "time"

// Event is one entry in a game's human-readable activity log.
type Event struct {
	Text string    `json:"text"`
	Time time.Time `json:"time"`
}

// eventLog is a bounded most-recent-first message history.
type eventLog struct {
	entries []Event
	cap     int
}

func newEventLog(capacity int) *eventLog {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &eventLog{cap: capacity}
}

// add prepends an entry, dropping the oldest once the log is full.
func (l *eventLog) add(text string, at time.Time) {
	l.entries = append([]Event{{Text: text, Time: at}}, l.entries...)
	if len(l.entries) > l.cap {
		l.entries = l.entries[:l.cap]
	}
}

// all returns a copy of the log, most recent first.
func (l *eventLog) all() []Event {
	out := make([]Event, len(l.entries))
	copy(out, l.entries)
	return out
}
