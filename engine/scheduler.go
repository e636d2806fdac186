package engine

import "time"

// Timer is a pending scheduled call.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. Implementations must run f under the same
// exclusion as every other call into the match.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// immediate runs scheduled work synchronously. It is the fallback when no
// scheduler is supplied.
type immediate struct{}

func (immediate) AfterFunc(_ time.Duration, f func()) Timer {
	f()
	return stopped{}
}

type stopped struct{}

func (stopped) Stop() bool { return false }
