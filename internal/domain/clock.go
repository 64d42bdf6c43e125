package domain

import (
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

var windowClock atomic.Pointer[clockwork.Clock]

// SetClock replaces the clock that anchors provider lookback windows. nil
// restores wall-clock time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		windowClock.Store(nil)
		return
	}
	windowClock.Store(&c)
}

func now() time.Time {
	if c := windowClock.Load(); c != nil {
		return (*c).Now()
	}
	return time.Now()
}
