package clock

import "time"

// FakeClock is a Clock whose time only moves when a test advances it.
// Token TTL tests pin issuance to a known instant and step past it.
type FakeClock struct {
	now time.Time
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start.UTC()}
}

func (c *FakeClock) Now() time.Time {
	return c.now
}

// Advance moves the clock forward by d. Never use a negative d; the
// services assume time is monotonic.
func (c *FakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
