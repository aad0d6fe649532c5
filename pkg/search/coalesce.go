package search

import (
	"sync"

	"github.com/tecu23/argo/pkg/protocol"
)

// coalescer decouples the engine's progress callbacks from the event stream.
// The engine side never blocks: when the consumer lags, pending batches are
// merged last-value-wins. The forwarding side delivers merged batches in
// production order and always drains before the stream's Done event.
type coalescer struct {
	out chan<- Event

	mu      sync.Mutex
	pending protocol.Info
	has     bool

	kick chan struct{} // buffered 1; closed by close()
	done chan struct{}
}

func newCoalescer(out chan<- Event) *coalescer {
	return &coalescer{
		out:  out,
		kick: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// send records one progress batch without blocking the search.
func (c *coalescer) send(info protocol.Info) {
	if info.Empty() {
		return
	}
	c.mu.Lock()
	if c.has {
		c.pending = c.pending.Merge(info)
	} else {
		c.pending = info
		c.has = true
	}
	c.mu.Unlock()

	select {
	case c.kick <- struct{}{}:
	default:
	}
}

// run forwards pending batches until close() is called, then drains.
func (c *coalescer) run() {
	defer close(c.done)
	for range c.kick {
		c.flush()
	}
	c.flush()
}

func (c *coalescer) flush() {
	for {
		c.mu.Lock()
		info, ok := c.pending, c.has
		c.pending, c.has = protocol.Info{}, false
		c.mu.Unlock()
		if !ok {
			return
		}
		c.out <- Progress{Info: info}
	}
}

// close stops the forwarder and blocks until every pending batch has been
// delivered, so Done is always the stream's last event.
func (c *coalescer) close() {
	close(c.kick)
	<-c.done
}
