package services

import "sync"

// EventLocker serializes capacity-sensitive mutations per event. Attendance
// confirmation, invitation creation, and invitation acceptance all check a
// count and then insert; without per-event isolation two concurrent calls
// could both pass the check and overshoot capacity.
type EventLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEventLocker returns an EventLocker ready for use.
func NewEventLocker() *EventLocker {
	return &EventLocker{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the lock for the given event and returns the unlock func.
func (l *EventLocker) Lock(eventID string) func() {
	l.mu.Lock()
	m, ok := l.locks[eventID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[eventID] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m.Unlock
}
