package homepage

import "sync/atomic"

// VisitorCounter counts index page hits. It lives in memory during the
// process lifetime and is persisted through the account store at start
// and stop.
type VisitorCounter struct {
	n atomic.Int64
}

// NewVisitorCounter seeds the counter with a persisted value.
func NewVisitorCounter(start int64) *VisitorCounter {
	c := &VisitorCounter{}
	c.n.Store(start)
	return c
}

// Hit increments the counter and returns the new value.
func (c *VisitorCounter) Hit() int64 {
	return c.n.Add(1)
}

// Value returns the current count.
func (c *VisitorCounter) Value() int64 {
	return c.n.Load()
}
