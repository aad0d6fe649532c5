package material

import (
	"fmt"
	"strings"

	"github.com/dylhunn/dragontoothmg"
)

// parseBoard builds a board from a FEN string. The underlying parser
// assumes well-formed input, so the string is validated structurally first
// and the parse itself is guarded, turning bad GUI input into an error
// instead of a crash.
func parseBoard(fen string) (board dragontoothmg.Board, err error) {
	if verr := validateFEN(fen); verr != nil {
		return board, verr
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("material: unparseable fen %q: %v", fen, r)
		}
	}()
	board = dragontoothmg.ParseFen(fen)
	return board, nil
}

// validateFEN checks the structure of a FEN string: a piece placement of
// eight ranks of eight squares, a side to move, and well-formed trailing
// fields. It does not judge position legality.
func validateFEN(fen string) error {
	fields := strings.Fields(fen)
	if len(fields) < 2 {
		return fmt.Errorf("material: fen %q: want at least placement and side to move", fen)
	}

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return fmt.Errorf("material: fen %q: want 8 ranks, got %d", fen, len(ranks))
	}
	for i, rank := range ranks {
		squares := 0
		for _, c := range rank {
			switch {
			case c >= '1' && c <= '8':
				squares += int(c - '0')
			case strings.ContainsRune("pnbrqkPNBRQK", c):
				squares++
			default:
				return fmt.Errorf("material: fen %q: bad piece %q in rank %d", fen, c, 8-i)
			}
		}
		if squares != 8 {
			return fmt.Errorf("material: fen %q: rank %d covers %d squares", fen, 8-i, squares)
		}
	}

	if fields[1] != "w" && fields[1] != "b" {
		return fmt.Errorf("material: fen %q: side to move must be w or b", fen)
	}
	return nil
}
