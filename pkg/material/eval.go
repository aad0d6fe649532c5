package material

import (
	"math/bits"

	"github.com/dylhunn/dragontoothmg"
)

// Piece values in centipawns.
const (
	pawnValue   = 100
	knightValue = 320
	bishopValue = 330
	rookValue   = 500
	queenValue  = 900
)

// evaluate scores the position in centipawns from the side to move's point
// of view. Material only; search depth does the rest of the work.
func evaluate(b *dragontoothmg.Board) int {
	score := count(b.White) - count(b.Black)
	if !b.Wtomove {
		score = -score
	}
	return score
}

func count(bb dragontoothmg.Bitboards) int {
	return pawnValue*bits.OnesCount64(bb.Pawns) +
		knightValue*bits.OnesCount64(bb.Knights) +
		bishopValue*bits.OnesCount64(bb.Bishops) +
		rookValue*bits.OnesCount64(bb.Rooks) +
		queenValue*bits.OnesCount64(bb.Queens)
}
