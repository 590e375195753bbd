package engine

import "sync/atomic"

// Sequencer issues strictly increasing seqs for reports.
type Sequencer interface {
	Next() int64
}

// Clock is the monotonic logical clock that orders pipeline runs.
//
// Every Report gets a strictly increasing seq. The run ledger persists it,
// so history ordering never depends on wall-clock time.
//
// Thread-safety: Clock is safe for concurrent use. Scenario runners share
// one clock across goroutines.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock that resumes after start, typically the
// highest seq already in the run ledger.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next increments the clock and returns the new seq.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued seq.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
