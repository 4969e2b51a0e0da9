package engine

import "time"

// Clock abstracts wall-clock reads so tests can control pause accounting
// and timestamps. The engine never owns a timer; the host drives Tick.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }
