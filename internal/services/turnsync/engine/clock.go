package engine

import "time"

// Timer is a cancelable scheduled callback.
type Timer interface {
	// Stop cancels the callback; it reports false when it already ran or
	// was stopped.
	Stop() bool
}

// Clock schedules engine timers.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now returns time.Now.
func (SystemClock) Now() time.Time { return time.Now() }

// AfterFunc wraps time.AfterFunc.
func (SystemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
