// Package protocol implements the UCI wire model: the closed sets of
// GUI-to-engine and engine-to-GUI commands, the line parser for the former
// and the line serializer for the latter. The package is pure data and
// translation; session behavior lives elsewhere.
package protocol

import "time"

// GUICommand is one message from the GUI to the engine. The set of
// implementations is closed; command values are transient and never outlive
// the line that produced them.
type GUICommand interface {
	guiCommand()
}

// UCIInit corresponds to the "uci" command, sent once to open the handshake.
type UCIInit struct{}

// Debug corresponds to the "debug" command and toggles the info-string
// side channel for parse and sequencing diagnostics.
type Debug struct {
	On bool
}

// IsReady corresponds to the "isready" command, a synchronization ping that
// must always be answered with "readyok".
type IsReady struct{}

// SetOption corresponds to the "setoption" command. The value is carried
// verbatim; typed interpretation and range validation belong to the engine.
type SetOption struct {
	Name  string
	Value string
}

// NewGame corresponds to the "ucinewgame" command. The next position will be
// from a different game, so game-local engine state must be cleared.
type NewGame struct{}

// SetPosition corresponds to the "position" command. It records the position
// for subsequent searches and does not itself start one.
type SetPosition struct {
	Pos Position
}

// Go corresponds to the "go" command and starts a search.
type Go struct {
	Req GoRequest
}

// Stop corresponds to the "stop" command. The engine must stop calculating
// as soon as possible and report the best move found so far.
type Stop struct{}

// PonderHit corresponds to the "ponderhit" command: the opponent played the
// pondered move, so the running search continues under normal time rules.
type PonderHit struct{}

// Quit corresponds to the "quit" command and ends the session.
type Quit struct{}

func (UCIInit) guiCommand()     {}
func (Debug) guiCommand()       {}
func (IsReady) guiCommand()     {}
func (SetOption) guiCommand()   {}
func (NewGame) guiCommand()     {}
func (SetPosition) guiCommand() {}
func (Go) guiCommand()          {}
func (Stop) guiCommand()        {}
func (PonderHit) guiCommand()   {}
func (Quit) guiCommand()        {}

// GoRequest carries the directives of one "go" command. A zero value means
// that dimension is unconstrained; all numeric directives are non-negative.
type GoRequest struct {
	// SearchMoves restricts the search to these root moves.
	SearchMoves []Move
	// Ponder starts the search in ponder mode.
	Ponder bool
	// Clock state in wall time: remaining time and increment per side, and
	// the number of moves to the next time control (0 for sudden death).
	WhiteTime time.Duration
	BlackTime time.Duration
	WhiteInc  time.Duration
	BlackInc  time.Duration
	MovesToGo int
	// Depth limits the search to this many plies.
	Depth int
	// Nodes limits the search to this many nodes.
	Nodes uint64
	// Mate asks for a mate in this many moves.
	Mate int
	// MoveTime fixes the search duration exactly.
	MoveTime time.Duration
	// Infinite searches until "stop".
	Infinite bool
}

// HasClock reports whether the GUI supplied wall-clock state.
func (g GoRequest) HasClock() bool {
	return g.WhiteTime > 0 || g.BlackTime > 0
}

// Unbounded reports whether no directive limits the search, which by
// convention means "search until told to stop".
func (g GoRequest) Unbounded() bool {
	return !g.HasClock() && g.Depth == 0 && g.Nodes == 0 && g.Mate == 0 &&
		g.MoveTime == 0
}
