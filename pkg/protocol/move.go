package protocol

import (
	"errors"
	"fmt"
)

// Square is a board square index, a1 = 0 through h8 = 63.
type Square uint8

// ParseSquare converts algebraic notation ("e4") into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return 0, fmt.Errorf("protocol: invalid square %q", s)
	}
	return Square((s[1]-'1')*8 + (s[0] - 'a')), nil
}

// File returns the square's file letter, 'a' through 'h'.
func (sq Square) File() byte {
	return 'a' + byte(sq%8)
}

// Rank returns the square's rank digit, '1' through '8'.
func (sq Square) Rank() byte {
	return '1' + byte(sq/8)
}

func (sq Square) String() string {
	return string([]byte{sq.File(), sq.Rank()})
}

// Move is a single chess move in coordinate notation. Equality is structural;
// the zero Move is the protocol's null move and renders as "0000".
type Move struct {
	From      Square
	To        Square
	Promotion byte // 'q', 'r', 'b' or 'n'; zero when not a promotion
}

// ErrInvalidMove is returned for tokens that are not coordinate moves.
var ErrInvalidMove = errors.New("protocol: invalid move")

// ParseMove converts coordinate notation ("e2e4", "e7e8q", "0000") into a Move.
func ParseMove(s string) (Move, error) {
	if s == "0000" {
		return Move{}, nil
	}
	if len(s) < 4 || len(s) > 5 {
		return Move{}, fmt.Errorf("%w: %q", ErrInvalidMove, s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return Move{}, fmt.Errorf("%w: %q", ErrInvalidMove, s)
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return Move{}, fmt.Errorf("%w: %q", ErrInvalidMove, s)
	}
	m := Move{From: from, To: to}
	if len(s) == 5 {
		switch s[4] {
		case 'q', 'r', 'b', 'n':
			m.Promotion = s[4]
		default:
			return Move{}, fmt.Errorf("%w: %q", ErrInvalidMove, s)
		}
	}
	if m.IsNull() {
		return Move{}, fmt.Errorf("%w: %q", ErrInvalidMove, s)
	}
	return m, nil
}

// IsNull reports whether m is the null move.
func (m Move) IsNull() bool {
	return m.From == m.To && m.Promotion == 0
}

func (m Move) String() string {
	if m.IsNull() {
		return "0000"
	}
	b := []byte{m.From.File(), m.From.Rank(), m.To.File(), m.To.Rank()}
	if m.Promotion != 0 {
		b = append(b, m.Promotion)
	}
	return string(b)
}

// StartFEN is the standard chess starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Position describes the board a search starts from: a base position plus the
// moves played since. An empty FEN means the standard starting position. Move
// legality is the engine's responsibility, not the protocol layer's.
type Position struct {
	FEN   string
	Moves []Move
}

// StartPos returns the standard starting position with no moves played.
func StartPos() Position {
	return Position{}
}

// IsStartpos reports whether the base position is the standard starting one.
func (p Position) IsStartpos() bool {
	return p.FEN == ""
}

// BaseFEN returns the base position as a FEN string.
func (p Position) BaseFEN() string {
	if p.FEN == "" {
		return StartFEN
	}
	return p.FEN
}

func (p Position) String() string {
	base := "startpos"
	if !p.IsStartpos() {
		base = "fen " + p.FEN
	}
	if len(p.Moves) == 0 {
		return base
	}
	return base + " moves " + formatMoves(p.Moves)
}

func formatMoves(moves []Move) string {
	out := make([]byte, 0, 5*len(moves))
	for i, m := range moves {
		if i > 0 {
			out = append(out, ' ')
		}
		out = append(out, m.String()...)
	}
	return string(out)
}
