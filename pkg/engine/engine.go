// Package engine defines the capability contract a search implementation
// must satisfy to be driven by the protocol session. The session and the
// search controller depend only on this interface, so any engine can be
// substituted — including instant fakes in tests.
package engine

import (
	"context"

	"github.com/tecu23/argo/pkg/protocol"
)

// Identity names the engine for the UCI handshake.
type Identity struct {
	Name   string
	Author string
}

// ProgressFunc receives search progress batches. Implementations provided
// by the controller never block the calling search thread for long; the
// engine may call it as often as it likes.
type ProgressFunc func(protocol.Info)

// Result is the outcome of one search: the move to play and, optionally,
// the reply the engine would like to ponder on. A null Move means the
// engine found nothing to play (no legal moves, or a fault).
type Result struct {
	Best   protocol.Move
	Ponder protocol.Move
}

// SearchRequest wraps the go directives with the runtime signals a running
// search needs. PonderHit, when non-nil, is closed once the GUI reports the
// pondered move was actually played; the search then switches from ponder
// to normal time accounting without restarting.
type SearchRequest struct {
	Go        protocol.GoRequest
	PonderHit <-chan struct{}
}

// Engine is the search capability consumed by the session layer.
//
// Search runs to completion or cancellation and returns the best move
// found so far. It must observe ctx at sub-second granularity: the session
// relays "stop" and "quit" as a context cancellation and relies on a
// prompt return. Search is never invoked concurrently with itself or with
// the mutating methods; the session guarantees those only happen between
// searches.
type Engine interface {
	// Identity reports the engine's name and author.
	Identity() Identity
	// Options declares the settable parameters, in the order they should
	// be announced during the handshake.
	Options() []protocol.Option
	// SetOption applies one parameter change. Unknown names and values
	// outside the declared range return an error and change nothing.
	SetOption(name, value string) error
	// NewGame clears game-local state before a position from a new game.
	NewGame()
	// SetPosition replaces the position subsequent searches start from.
	// On error the previous position is kept.
	SetPosition(pos protocol.Position) error
	// Search looks for a best move under the request's constraints,
	// reporting progress through prog.
	Search(ctx context.Context, req SearchRequest, prog ProgressFunc) Result
}
