package clock

import "time"

// Clock provides the current time. Components take a Clock so tests can pin it.
type Clock interface {
	Now() time.Time
}

// Real implements Clock using the system clock, in UTC.
type Real struct{}

func (Real) Now() time.Time { return time.Now().UTC() }

// Fixed is a settable Clock for tests.
type Fixed struct {
	T time.Time
}

func (c *Fixed) Now() time.Time { return c.T }

// Advance moves the clock forward by d.
func (c *Fixed) Advance(d time.Duration) { c.T = c.T.Add(d) }
