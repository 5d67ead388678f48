package admission

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// ErrRejected is returned by Acquire when the in-flight limit is reached.
var ErrRejected = errors.New("admission rejected")

// RejectedError reports a rejected admission together with the limit that
// was hit.
type RejectedError struct {
	Limit int64
}

// Error implements the error interface.
func (e *RejectedError) Error() string {
	return fmt.Sprintf("too many concurrent requests (limit %d)", e.Limit)
}

// Is implements error matching for errors.Is().
func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}

// Gate bounds the number of in-flight requests.
//
// # Algorithm
//
//  1. Atomically increment counter
//  2. If the counter exceeds the limit: decrement and reject
//  3. Otherwise hand out a release func that decrements exactly once
//
// Rejected requests are not queued. Gate is lock-free and safe for
// concurrent use.
type Gate struct {
	limit   int64
	current atomic.Int64

	// OnChange, if set, observes the in-flight count after every change.
	OnChange func(inFlight int64)
}

// NewGate creates a Gate admitting at most limit concurrent requests.
//
//	release, err := gate.Acquire()
//	if err != nil {
//	    // 429
//	}
//	defer release()
func NewGate(limit int) *Gate {
	return &Gate{limit: int64(limit)}
}

// Acquire attempts to take an in-flight slot. On success the returned
// release func must be called when the request completes; calling it more
// than once has no further effect. On rejection the counter is left
// unchanged and a *RejectedError is returned.
func (g *Gate) Acquire() (release func(), err error) {
	current := g.current.Add(1)
	if current > g.limit {
		g.current.Add(-1)
		return nil, &RejectedError{Limit: g.limit}
	}
	g.notify(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			g.notify(g.current.Add(-1))
		})
	}, nil
}

func (g *Gate) notify(n int64) {
	if g.OnChange != nil {
		g.OnChange(n)
	}
}

// InFlight returns the current number of admitted requests.
func (g *Gate) InFlight() int64 {
	return g.current.Load()
}

// Limit returns the configured limit.
func (g *Gate) Limit() int64 {
	return g.limit
}

// Remaining returns the number of free slots.
func (g *Gate) Remaining() int64 {
	remaining := g.limit - g.current.Load()
	if remaining < 0 {
		return 0
	}
	return remaining
}
