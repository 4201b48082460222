package domain

import "time"

// Clock supplies the current time. Services take a Clock instead of calling
// time.Now directly so tests can pin "now" and walk events through their
// lifecycle deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }
