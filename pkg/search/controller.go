// Package search bridges the session state machine to the engine capability.
// The controller runs one cancellable search at a time on its own goroutine
// and relays progress and the final result back over an ordered event stream.
package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tecu23/argo/pkg/engine"
	"github.com/tecu23/argo/pkg/protocol"
)

// Event is one item of a search's output stream.
type Event interface {
	searchEvent()
}

// Progress carries one coalesced batch of search progress.
type Progress struct {
	Info protocol.Info
}

// Done terminates the stream: the search returned, by completion or
// cancellation. Err is set when the engine faulted instead of returning.
type Done struct {
	Result engine.Result
	Err    error
}

func (Progress) searchEvent() {}
func (Done) searchEvent()     {}

// Controller starts searches against one engine. The session guarantees at
// most one search is active at a time; the controller does not re-check.
type Controller struct {
	eng    engine.Engine
	logger *zap.Logger
}

// NewController creates a controller for the given engine.
func NewController(eng engine.Engine, logger *zap.Logger) *Controller {
	return &Controller{eng: eng, logger: logger}
}

// Start launches one search and returns its handle. The stream delivers
// zero or more Progress events followed by exactly one Done, then closes.
// Progress batches arrive in the order the engine produced them; when the
// consumer falls behind, adjacent batches are merged last-value-wins, never
// reordered.
func (c *Controller) Start(ctx context.Context, req protocol.GoRequest) *Search {
	ctx, cancel := context.WithCancel(ctx)
	s := &Search{
		events:    make(chan Event),
		cancel:    cancel,
		ponderhit: make(chan struct{}),
	}

	co := newCoalescer(s.events)
	go co.run()

	go func() {
		defer close(s.events)
		res, err := c.runSearch(ctx, req, s.ponderhit, co.send)
		co.close()
		s.events <- Done{Result: res, Err: err}
	}()

	return s
}

// runSearch invokes the engine, converting a panic into an error so a
// faulty engine never takes the session down with it.
func (c *Controller) runSearch(
	ctx context.Context,
	req protocol.GoRequest,
	ponderhit <-chan struct{},
	prog engine.ProgressFunc,
) (res engine.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("engine panicked during search", zap.Any("panic", r))
			res = engine.Result{}
			err = fmt.Errorf("search: engine fault: %v", r)
		}
	}()

	res = c.eng.Search(ctx, engine.SearchRequest{Go: req, PonderHit: ponderhit}, prog)
	return res, nil
}

// Search is the handle of one running search.
type Search struct {
	events    chan Event
	cancel    context.CancelFunc
	ponderhit chan struct{}
	hitOnce   bool
}

// Events returns the search's output stream.
func (s *Search) Events() <-chan Event {
	return s.events
}

// Stop requests cooperative cancellation. The engine observes it through
// its context and returns promptly with the best move found so far; the
// stream still ends with a Done event.
func (s *Search) Stop() {
	s.cancel()
}

// PonderHit tells a pondering search that the pondered move was played, so
// it continues under normal time accounting. Safe to call once; the session
// state machine never calls it twice for one search.
func (s *Search) PonderHit() {
	if !s.hitOnce {
		s.hitOnce = true
		close(s.ponderhit)
	}
}
