package scheduler

import "time"

// Timer is a cancelable pending callback. Stop on a fired or stopped timer is a no-op.
type Timer interface {
	Stop() bool
}

// Clock supplies the current instant and one-shot timers
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

// RealClock returns a Clock backed by the time package
func RealClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
