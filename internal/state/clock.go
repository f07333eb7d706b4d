package state

import "sync/atomic"

// Clock hands out strictly increasing ticks. The scene uses it to give every
// stroke a stable z-order the first time it is inserted.
type Clock struct {
	counter uint64
}

func (c *Clock) Tick() uint64 {
	return atomic.AddUint64(&c.counter, 1)
}
