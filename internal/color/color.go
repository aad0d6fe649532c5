// Package color provides the side-to-move type shared by the clock and
// search packages.
package color

// Color represents one side of a chess game.
type Color string

// The two sides, in FEN notation.
const (
	White Color = "w"
	Black Color = "b"
)

// FromWhite maps a white-to-move flag onto a Color.
func FromWhite(whiteToMove bool) Color {
	if whiteToMove {
		return White
	}
	return Black
}

// Opp returns the opposite color for the given color.
func (c Color) Opp() Color {
	if c == White {
		return Black
	}

	return White
}

func (c Color) String() string {
	return string(c)
}
