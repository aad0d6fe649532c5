package material

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/dylhunn/dragontoothmg"

	"github.com/tecu23/argo/pkg/engine"
	"github.com/tecu23/argo/pkg/protocol"
)

const (
	maxPly = 64

	// Mate scores count plies from the root so shorter mates score higher.
	// Anything above mateBound is a mate score.
	mateValue = 32000
	mateBound = mateValue - 2*maxPly
	infinity  = mateValue + 1

	// pollInterval is how many nodes pass between cancellation checks,
	// keeping the poll well under a second on any hardware.
	pollInterval = 2048

	// currMoveAfter delays root move reporting until the search is slow
	// enough for the GUI to care.
	currMoveAfter = time.Second
)

// searcher holds the state of one search. The ponderhit watcher goroutine
// arms the deadlines concurrently, so they are atomics; everything else is
// touched only by the search goroutine.
type searcher struct {
	ctx   context.Context
	board *dragontoothmg.Board
	prog  engine.ProgressFunc

	start        time.Time
	softDeadline atomic.Int64 // unix nanos; 0 = unbounded
	hardDeadline atomic.Int64
	nodeLimit    uint64

	nodes    uint64
	seldepth int
	stopped  bool

	showCurrLine bool

	pv pvTable
}

// armClock sets the deadlines relative to now. Called at search start for a
// normal search, or from the ponderhit watcher when the pondered move is
// actually played.
func (st *searcher) armClock(soft, hard time.Duration) {
	now := time.Now()
	st.softDeadline.Store(now.Add(soft).UnixNano())
	st.hardDeadline.Store(now.Add(hard).UnixNano())
}

// softExpired gates the start of another deepening iteration.
func (st *searcher) softExpired() bool {
	d := st.softDeadline.Load()
	return d != 0 && time.Now().UnixNano() >= d
}

// checkStop is the cooperative cancellation poll, called once per node.
func (st *searcher) checkStop() bool {
	if st.stopped {
		return true
	}
	st.nodes++
	if st.nodeLimit > 0 && st.nodes >= st.nodeLimit {
		st.stopped = true
		return true
	}
	if st.nodes%pollInterval == 0 {
		if st.ctx.Err() != nil {
			st.stopped = true
			return true
		}
		if d := st.hardDeadline.Load(); d != 0 && time.Now().UnixNano() >= d {
			st.stopped = true
			return true
		}
	}
	return false
}

// searchRoot runs one alpha-beta iteration over the root moves and returns
// the best move and score. The result is only trustworthy when at least the
// first root move completed; completed reports that.
func (st *searcher) searchRoot(moves []dragontoothmg.Move, depth int) (best dragontoothmg.Move, score int, completed bool) {
	alpha, beta := -infinity, infinity
	st.pv.reset(0)

	for i, m := range moves {
		if elapsed := time.Since(st.start); elapsed >= currMoveAfter {
			info := protocol.Info{
				CurrMove:       toProtocolMove(m),
				CurrMoveNumber: i + 1,
			}
			if st.showCurrLine {
				info.CurrLine = &protocol.CurrLine{
					CPU:   1,
					Moves: []protocol.Move{toProtocolMove(m)},
				}
			}
			st.prog(info)
		}

		unapply := st.board.Apply(m)
		s := -st.alphabeta(depth-1, 1, -beta, -alpha)
		unapply()
		if st.stopped {
			return best, alpha, completed
		}
		if i == 0 || s > alpha {
			alpha = s
			best = m
			st.pv.promote(0, m)
			completed = true
		}
	}
	return best, alpha, completed
}

func (st *searcher) alphabeta(depth, ply, alpha, beta int) int {
	if st.checkStop() {
		return 0
	}
	if depth <= 0 || ply >= maxPly {
		return st.quiesce(ply, alpha, beta)
	}
	st.pv.reset(ply)

	moves := st.board.GenerateLegalMoves()
	if len(moves) == 0 {
		if st.board.OurKingInCheck() {
			return -(mateValue - ply)
		}
		return 0 // stalemate
	}

	best := -infinity
	for _, m := range moves {
		unapply := st.board.Apply(m)
		s := -st.alphabeta(depth-1, ply+1, -beta, -alpha)
		unapply()
		if st.stopped {
			return best
		}
		if s > best {
			best = s
			if s > alpha {
				alpha = s
				st.pv.promote(ply, m)
			}
		}
		if s >= beta {
			return best
		}
	}
	return best
}

func (st *searcher) quiesce(ply, alpha, beta int) int {
	st.pv.reset(ply)
	if st.checkStop() {
		return alpha
	}
	if ply > st.seldepth {
		st.seldepth = ply
	}

	// Mates do not stand pat: a node with no legal moves is decided, not
	// quiet, and the moves serve the capture scan below anyway.
	moves := st.board.GenerateLegalMoves()
	if len(moves) == 0 {
		if st.board.OurKingInCheck() {
			return -(mateValue - ply)
		}
		return 0 // stalemate
	}

	best := evaluate(st.board)
	if best >= beta {
		return best
	}
	if best > alpha {
		alpha = best
	}
	if ply >= maxPly {
		return best
	}

	for _, m := range moves {
		if !st.tactical(m) {
			continue
		}
		unapply := st.board.Apply(m)
		s := -st.quiesce(ply+1, -beta, -alpha)
		unapply()
		if st.stopped {
			return best
		}
		if s > best {
			best = s
			if s > alpha {
				alpha = s
			}
		}
		if s >= beta {
			return best
		}
	}
	return best
}

// tactical reports whether a move is worth extending past the horizon:
// captures and promotions only.
func (st *searcher) tactical(m dragontoothmg.Move) bool {
	if m.Promote() != 0 {
		return true
	}
	toBB := uint64(1) << m.To()
	if st.board.Wtomove {
		return st.board.Black.All&toBB != 0
	}
	return st.board.White.All&toBB != 0
}

// pvTable is the triangular principal variation table.
type pvTable struct {
	lines  [maxPly + 1][maxPly + 1]dragontoothmg.Move
	length [maxPly + 1]int
}

func (t *pvTable) reset(ply int) {
	t.length[ply] = 0
}

// promote makes m the head of the line at ply, followed by the child line.
func (t *pvTable) promote(ply int, m dragontoothmg.Move) {
	t.lines[ply][0] = m
	if ply+1 <= maxPly {
		copy(t.lines[ply][1:], t.lines[ply+1][:t.length[ply+1]])
		t.length[ply] = t.length[ply+1] + 1
	} else {
		t.length[ply] = 1
	}
}

// line returns the principal variation from the root.
func (t *pvTable) line() []protocol.Move {
	out := make([]protocol.Move, 0, t.length[0])
	for _, m := range t.lines[0][:t.length[0]] {
		out = append(out, toProtocolMove(m))
	}
	return out
}

// scoreOf converts an internal score into the wire representation: a mate
// distance in full moves when decisive, centipawns otherwise.
func scoreOf(s int) *protocol.Score {
	switch {
	case s >= mateBound:
		return protocol.MateScore((mateValue - s + 1) / 2)
	case s <= -mateBound:
		return protocol.MateScore(-((mateValue + s + 1) / 2))
	default:
		return protocol.CentipawnScore(s)
	}
}

// toProtocolMove converts a board move into its wire value. The board
// library renders the same coordinate notation the protocol parses.
func toProtocolMove(m dragontoothmg.Move) protocol.Move {
	pm, err := protocol.ParseMove(m.String())
	if err != nil {
		return protocol.Move{}
	}
	return pm
}
