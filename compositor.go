package compositor

import (
	"github.com/scenelayer/compositor/coordinator"
	"github.com/scenelayer/compositor/geom"
)

// Compositor is the public entry point: a running coordinator loop plus
// the channel used to send it ingress messages.
type Compositor struct {
	coord    *coordinator.Coordinator
	messages chan coordinator.Message
	done     chan struct{}
}

// New constructs a Compositor for a fixed viewport size and starts its
// coordinator loop in a background goroutine. Sink receives every egress
// result (spec §6).
func New(viewport geom.Size, sink coordinator.Sink, opts ...Option) (*Compositor, error) {
	cfg := baseConfig(viewport, opts)
	coord, err := coordinator.New(cfg)
	if err != nil {
		return nil, err
	}
	c := &Compositor{coord: coord, messages: make(chan coordinator.Message, 32), done: make(chan struct{})}
	go func() {
		defer close(c.done)
		coord.Run(c.messages, sink)
	}()
	return c, nil
}

// Send enqueues msg for the coordinator loop. Messages are serviced
// strictly FIFO (spec §5).
func (c *Compositor) Send(msg coordinator.Message) {
	c.messages <- msg
}

// Close stops accepting new messages, waits for the loop to drain, then
// releases the worker pool. Safe to call once.
func (c *Compositor) Close() {
	close(c.messages)
	<-c.done
	c.coord.Close()
}
