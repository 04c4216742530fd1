package escalation

import "time"

// Clock abstracts the scheduler's time source so tests can drive the guard
// arithmetic deterministically.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return realClock{} }
