package compiler

import "sync/atomic"

// atomicCounter hands out monotonically increasing batch ids across
// concurrent tile-compilation workers.
type atomicCounter struct {
	n atomic.Uint64
}

func (c *atomicCounter) next() uint64 {
	return c.n.Add(1)
}
