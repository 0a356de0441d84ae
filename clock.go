package fasttranslator

import "time"

// Clock abstracts time for the retry and pacing machinery so tests can
// drive delays deterministically.
type Clock interface {
	Now() time.Time
	// After behaves like time.After.
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// SystemClock is the wall-clock used when no clock is injected.
var SystemClock Clock = realClock{}
