package protocol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMove(t *testing.T, s string) Move {
	t.Helper()
	m, err := ParseMove(s)
	require.NoError(t, err)
	return m
}

func TestParseSimpleCommands(t *testing.T) {
	tests := []struct {
		line string
		want GUICommand
	}{
		{"uci", UCIInit{}},
		{"isready", IsReady{}},
		{"ucinewgame", NewGame{}},
		{"stop", Stop{}},
		{"ponderhit", PonderHit{}},
		{"quit", Quit{}},
		{"debug on", Debug{On: true}},
		{"debug off", Debug{On: false}},
	}
	for _, tt := range tests {
		cmd, err := Parse(tt.line)
		require.NoError(t, err, tt.line)
		assert.Equal(t, tt.want, cmd, tt.line)
	}
}

func TestParseEmptyLine(t *testing.T) {
	for _, line := range []string{"", "   ", "\t", " \r"} {
		_, err := Parse(line)
		assert.ErrorIs(t, err, ErrEmptyLine, "%q", line)
	}
}

func TestParseUnknownCommand(t *testing.T) {
	_, err := Parse("frobnicate the board")
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestParseSkipsUnknownLeadingTokens(t *testing.T) {
	cmd, err := Parse("joho uci")
	require.NoError(t, err)
	assert.Equal(t, UCIInit{}, cmd)
}

func TestParsePositionStartpos(t *testing.T) {
	cmd, err := Parse("position startpos moves e2e4 e7e5")
	require.NoError(t, err)

	sp, ok := cmd.(SetPosition)
	require.True(t, ok)
	assert.True(t, sp.Pos.IsStartpos())
	assert.Equal(t, []Move{mustMove(t, "e2e4"), mustMove(t, "e7e5")}, sp.Pos.Moves)
}

func TestParsePositionFEN(t *testing.T) {
	cmd, err := Parse("position fen 8/8/8/8/8/8/8/K6k w - - 0 1")
	require.NoError(t, err)

	sp, ok := cmd.(SetPosition)
	require.True(t, ok)
	assert.Equal(t, "8/8/8/8/8/8/8/K6k w - - 0 1", sp.Pos.FEN)
	assert.Empty(t, sp.Pos.Moves)
}

func TestParsePositionFENWithMoves(t *testing.T) {
	cmd, err := Parse("position fen 8/8/8/8/8/8/8/K6k w - - 0 1 moves a1a2")
	require.NoError(t, err)

	sp, ok := cmd.(SetPosition)
	require.True(t, ok)
	assert.Equal(t, "8/8/8/8/8/8/8/K6k w - - 0 1", sp.Pos.FEN)
	assert.Equal(t, []Move{mustMove(t, "a1a2")}, sp.Pos.Moves)
}

func TestParsePositionBadMoveEndsList(t *testing.T) {
	cmd, err := Parse("position startpos moves e2e4 xyzzy e7e5")
	require.NoError(t, err)

	sp := cmd.(SetPosition)
	assert.Equal(t, []Move{mustMove(t, "e2e4")}, sp.Pos.Moves)
}

func TestParsePositionMissingPayload(t *testing.T) {
	for _, line := range []string{"position", "position fen", "position sideways"} {
		_, err := Parse(line)
		assert.ErrorIs(t, err, ErrMissingField, line)
	}
}

func TestParseGoDirectives(t *testing.T) {
	cmd, err := Parse("go depth 10 movetime 5000")
	require.NoError(t, err)

	g, ok := cmd.(Go)
	require.True(t, ok)
	assert.Equal(t, 10, g.Req.Depth)
	assert.Equal(t, 5*time.Second, g.Req.MoveTime)
	assert.False(t, g.Req.Infinite)
	assert.False(t, g.Req.Unbounded())
}

func TestParseGoClock(t *testing.T) {
	cmd, err := Parse("go wtime 300000 btime 290000 winc 2000 binc 2000 movestogo 35")
	require.NoError(t, err)

	g := cmd.(Go)
	assert.Equal(t, 5*time.Minute, g.Req.WhiteTime)
	assert.Equal(t, 290*time.Second, g.Req.BlackTime)
	assert.Equal(t, 2*time.Second, g.Req.WhiteInc)
	assert.Equal(t, 2*time.Second, g.Req.BlackInc)
	assert.Equal(t, 35, g.Req.MovesToGo)
	assert.True(t, g.Req.HasClock())
}

func TestParseGoSearchmovesAndFlags(t *testing.T) {
	cmd, err := Parse("go infinite searchmoves e2e4 d2d4")
	require.NoError(t, err)

	g := cmd.(Go)
	assert.True(t, g.Req.Infinite)
	assert.Equal(t, []Move{mustMove(t, "e2e4"), mustMove(t, "d2d4")}, g.Req.SearchMoves)
}

func TestParseGoPonder(t *testing.T) {
	cmd, err := Parse("go ponder wtime 60000 btime 60000")
	require.NoError(t, err)
	assert.True(t, cmd.(Go).Req.Ponder)
}

func TestParseGoBareIsUnbounded(t *testing.T) {
	cmd, err := Parse("go")
	require.NoError(t, err)
	assert.True(t, cmd.(Go).Req.Unbounded())
}

func TestParseGoDropsBadNumericField(t *testing.T) {
	// A busted depth drops that directive alone; movetime still lands.
	cmd, err := Parse("go depth banana movetime 100")
	require.NoError(t, err)

	g := cmd.(Go)
	assert.Zero(t, g.Req.Depth)
	assert.Equal(t, 100*time.Millisecond, g.Req.MoveTime)
}

func TestParseGoDropsNegativeValues(t *testing.T) {
	cmd, err := Parse("go depth -3 nodes 500")
	require.NoError(t, err)

	g := cmd.(Go)
	assert.Zero(t, g.Req.Depth)
	assert.Equal(t, uint64(500), g.Req.Nodes)
}

func TestParseGoIgnoresUnknownSubtokens(t *testing.T) {
	cmd, err := Parse("go shallow depth 4")
	require.NoError(t, err)
	assert.Equal(t, 4, cmd.(Go).Req.Depth)
}

func TestParseSetOption(t *testing.T) {
	cmd, err := Parse("setoption name MoveOverhead value 30")
	require.NoError(t, err)
	assert.Equal(t, SetOption{Name: "MoveOverhead", Value: "30"}, cmd)
}

func TestParseSetOptionMultiWordNameAndValue(t *testing.T) {
	cmd, err := Parse("setoption name Clear Hash Tables value on new game")
	require.NoError(t, err)
	assert.Equal(t, SetOption{Name: "Clear Hash Tables", Value: "on new game"}, cmd)
}

func TestParseSetOptionButton(t *testing.T) {
	cmd, err := Parse("setoption name Clear Hash")
	require.NoError(t, err)
	assert.Equal(t, SetOption{Name: "Clear Hash"}, cmd)
}

func TestParseSetOptionWithoutNameIsDropped(t *testing.T) {
	for _, line := range []string{"setoption", "setoption value 42", "setoption name"} {
		_, err := Parse(line)
		assert.ErrorIs(t, err, ErrMissingField, line)
	}
}

func TestParseMoves(t *testing.T) {
	m, err := ParseMove("e7e8q")
	require.NoError(t, err)
	assert.Equal(t, "e7e8q", m.String())

	null, err := ParseMove("0000")
	require.NoError(t, err)
	assert.True(t, null.IsNull())
	assert.Equal(t, "0000", null.String())

	for _, bad := range []string{"", "e2", "e2e", "i2e4", "e0e4", "e7e8k", "e2e2"} {
		_, err := ParseMove(bad)
		assert.Error(t, err, bad)
	}
}
