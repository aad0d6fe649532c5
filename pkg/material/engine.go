// Package material is the built-in engine capability: a material-counting
// alpha-beta searcher over a bitboard move generator. It exists to drive the
// protocol layer end to end; playing strength is not a goal.
package material

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dylhunn/dragontoothmg"
	"go.uber.org/zap"

	"github.com/tecu23/argo/internal/color"
	"github.com/tecu23/argo/pkg/clock"
	"github.com/tecu23/argo/pkg/engine"
	"github.com/tecu23/argo/pkg/protocol"
)

// Option names declared during the handshake. Names match case
// insensitively when set, per protocol convention.
const (
	optPonder       = "Ponder"
	optMoveOverhead = "MoveOverhead"
	optShowCurrLine = "UCI_ShowCurrLine"
)

const (
	defaultMoveOverheadMs = 10
	maxMoveOverheadMs     = 5000
)

// Engine is the built-in search capability. The session guarantees Search
// never overlaps the mutating methods, so no locking is needed.
type Engine struct {
	name   string
	author string
	logger *zap.Logger

	ponder       bool
	moveOverhead time.Duration
	showCurrLine bool

	board dragontoothmg.Board
}

// New creates an engine holding the standard starting position.
func New(name, author string, logger *zap.Logger) *Engine {
	return &Engine{
		name:         name,
		author:       author,
		logger:       logger,
		moveOverhead: defaultMoveOverheadMs * time.Millisecond,
		board:        dragontoothmg.ParseFen(dragontoothmg.Startpos),
	}
}

// Identity reports the engine's name and author.
func (e *Engine) Identity() engine.Identity {
	return engine.Identity{Name: e.name, Author: e.author}
}

// Options declares the settable parameters in handshake order.
func (e *Engine) Options() []protocol.Option {
	return []protocol.Option{
		{Name: optPonder, Type: protocol.OptionCheck, Default: "false"},
		{
			Name:    optMoveOverhead,
			Type:    protocol.OptionSpin,
			Default: strconv.Itoa(defaultMoveOverheadMs),
			Min:     0,
			Max:     maxMoveOverheadMs,
		},
		{Name: optShowCurrLine, Type: protocol.OptionCheck, Default: "false"},
	}
}

// SetOption applies one parameter change. Unknown names and out-of-range
// values return an error and change nothing.
func (e *Engine) SetOption(name, value string) error {
	switch {
	case strings.EqualFold(name, optPonder):
		b, err := parseCheck(value)
		if err != nil {
			return err
		}
		e.ponder = b
	case strings.EqualFold(name, optMoveOverhead):
		ms, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("material: %s: not a number: %q", optMoveOverhead, value)
		}
		if ms < 0 || ms > maxMoveOverheadMs {
			return fmt.Errorf("material: %s: %d out of range 0..%d",
				optMoveOverhead, ms, maxMoveOverheadMs)
		}
		e.moveOverhead = time.Duration(ms) * time.Millisecond
	case strings.EqualFold(name, optShowCurrLine):
		b, err := parseCheck(value)
		if err != nil {
			return err
		}
		e.showCurrLine = b
	default:
		return fmt.Errorf("material: unknown option %q", name)
	}
	return nil
}

func parseCheck(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("material: check option wants true or false, got %q", value)
}

// NewGame clears game-local state.
func (e *Engine) NewGame() {
	e.board = dragontoothmg.ParseFen(dragontoothmg.Startpos)
}

// SetPosition replaces the position subsequent searches start from. Each
// move must be legal from the position it is applied to; on any error the
// previous position is kept.
func (e *Engine) SetPosition(pos protocol.Position) error {
	board, err := parseBoard(pos.BaseFEN())
	if err != nil {
		return err
	}
	for _, pm := range pos.Moves {
		m, found := matchLegal(&board, pm)
		if !found {
			return fmt.Errorf("material: illegal move %s in position %s", pm, board.ToFen())
		}
		board.Apply(m)
	}
	e.board = board
	return nil
}

// Search looks for a best move under the request's constraints. It returns
// promptly after cancellation with the best move found so far; before the
// first iteration completes that is the first legal root move.
func (e *Engine) Search(
	ctx context.Context,
	req engine.SearchRequest,
	prog engine.ProgressFunc,
) engine.Result {
	board := e.board
	st := &searcher{
		ctx:          ctx,
		board:        &board,
		prog:         prog,
		start:        time.Now(),
		nodeLimit:    req.Go.Nodes,
		showCurrLine: e.showCurrLine,
	}

	root := rootMoves(&board, req.Go.SearchMoves)
	if len(root) == 0 {
		return engine.Result{}
	}
	best := root[0] // provisional, so "stop" always has an answer
	var ponder protocol.Move

	budget := clock.Allocate(req.Go, color.FromWhite(board.Wtomove), e.moveOverhead)
	if req.Go.Ponder {
		// Time starts when the pondered move is actually played.
		go func() {
			select {
			case <-req.PonderHit:
				if !budget.Infinite {
					st.armClock(budget.Soft, budget.Hard)
				}
			case <-ctx.Done():
			}
		}()
	} else if !budget.Infinite {
		st.armClock(budget.Soft, budget.Hard)
	}

	maxDepth := req.Go.Depth
	if req.Go.Mate > 0 {
		// A mate in n moves is found within 2n-1 plies.
		if md := 2*req.Go.Mate - 1; maxDepth == 0 || md < maxDepth {
			maxDepth = md
		}
	}
	if maxDepth <= 0 || maxDepth > maxPly {
		maxDepth = maxPly
	}

	e.logger.Debug("search started",
		zap.String("position", board.ToFen()),
		zap.Int("max_depth", maxDepth),
		zap.Bool("infinite", budget.Infinite))

	for depth := 1; depth <= maxDepth; depth++ {
		move, score, completed := st.searchRoot(root, depth)
		if completed {
			best = move
			pv := st.pv.line()
			if len(pv) >= 2 {
				ponder = pv[1]
			} else {
				ponder = protocol.Move{}
			}

			elapsed := time.Since(st.start)
			info := protocol.Info{
				Depth:    depth,
				SelDepth: st.seldepth,
				Time:     elapsed,
				Nodes:    st.nodes,
				Score:    scoreOf(score),
				PV:       pv,
			}
			if secs := elapsed.Seconds(); secs > 0 {
				info.NPS = uint64(float64(st.nodes) / secs)
			}
			prog(info)

			// Decisive scores end deepening: the line only gets longer.
			if score >= mateBound || score <= -mateBound {
				break
			}
		}
		if st.stopped || st.softExpired() {
			break
		}
	}

	return engine.Result{Best: toProtocolMove(best), Ponder: ponder}
}

// rootMoves returns the legal moves, restricted to searchmoves when given.
func rootMoves(b *dragontoothmg.Board, restrict []protocol.Move) []dragontoothmg.Move {
	legal := b.GenerateLegalMoves()
	if len(restrict) == 0 {
		return legal
	}
	allowed := make(map[string]bool, len(restrict))
	for _, m := range restrict {
		allowed[m.String()] = true
	}
	var out []dragontoothmg.Move
	for _, m := range legal {
		if allowed[m.String()] {
			out = append(out, m)
		}
	}
	return out
}

// matchLegal finds the generated legal move with pm's coordinate text.
func matchLegal(b *dragontoothmg.Board, pm protocol.Move) (dragontoothmg.Move, bool) {
	want := pm.String()
	for _, m := range b.GenerateLegalMoves() {
		if m.String() == want {
			return m, true
		}
	}
	var none dragontoothmg.Move
	return none, false
}
