package session_test

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tecu23/argo/pkg/engine"
	"github.com/tecu23/argo/pkg/events"
	"github.com/tecu23/argo/pkg/protocol"
	"github.com/tecu23/argo/pkg/session"
)

// fakeEngine returns a fixed move, instantly by default or on cancellation
// when blocking is set. It records what the session applied to it.
type fakeEngine struct {
	blocking bool

	mu        sync.Mutex
	options   []string
	positions []protocol.Position
	newGames  int

	searches atomic.Int32
}

func (f *fakeEngine) Identity() engine.Identity {
	return engine.Identity{Name: "fake", Author: "test"}
}

func (f *fakeEngine) Options() []protocol.Option {
	return []protocol.Option{
		{Name: "Ponder", Type: protocol.OptionCheck, Default: "false"},
	}
}

func (f *fakeEngine) SetOption(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.options = append(f.options, name+"="+value)
	return nil
}

func (f *fakeEngine) NewGame() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.newGames++
}

func (f *fakeEngine) SetPosition(pos protocol.Position) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.positions = append(f.positions, pos)
	return nil
}

func (f *fakeEngine) Search(ctx context.Context, req engine.SearchRequest, prog engine.ProgressFunc) engine.Result {
	f.searches.Add(1)
	best, _ := protocol.ParseMove("e2e4")
	if f.blocking {
		select {
		case <-ctx.Done():
		case <-req.PonderHit:
		}
	}
	prog(protocol.Info{Depth: 1, Score: protocol.CentipawnScore(0)})
	return engine.Result{Best: best}
}

func (f *fakeEngine) appliedOptions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.options...)
}

// harness runs a session over pipes so tests speak real protocol lines.
type harness struct {
	in   *io.PipeWriter
	out  *bufio.Scanner
	done chan error
}

func start(t *testing.T, eng engine.Engine) *harness {
	t.Helper()
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()

	sess := session.New(eng, events.NewPublisher(), zap.NewNop())
	done := make(chan error, 1)
	go func() {
		err := sess.Run(context.Background(), inR, outW)
		outW.Close()
		done <- err
	}()

	t.Cleanup(func() { inW.Close() })
	return &harness{in: inW, out: bufio.NewScanner(outR), done: done}
}

func (h *harness) send(t *testing.T, line string) {
	t.Helper()
	_, err := io.WriteString(h.in, line+"\n")
	require.NoError(t, err)
}

func (h *harness) readLine(t *testing.T) string {
	t.Helper()
	require.True(t, h.out.Scan(), "output closed early")
	return h.out.Text()
}

// readUntil returns the first line with the prefix, failing on anything that
// arrives out of order when strict lines are expected by the caller.
func (h *harness) readUntil(t *testing.T, prefix string) string {
	t.Helper()
	for {
		line := h.readLine(t)
		if strings.HasPrefix(line, prefix) {
			return line
		}
	}
}

func (h *harness) waitExit(t *testing.T) {
	t.Helper()
	select {
	case err := <-h.done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("session did not exit")
	}
}

func TestHandshakeOrder(t *testing.T) {
	h := start(t, &fakeEngine{})
	h.send(t, "uci")

	assert.Equal(t, "id name fake", h.readLine(t))
	assert.Equal(t, "id author test", h.readLine(t))
	assert.Equal(t, "option name Ponder type check default false", h.readLine(t))
	assert.Equal(t, "uciok", h.readLine(t))

	h.send(t, "quit")
	h.waitExit(t)
}

func TestIsReadyIsIdempotent(t *testing.T) {
	h := start(t, &fakeEngine{})
	h.send(t, "uci")
	h.readUntil(t, "uciok")

	for i := 0; i < 3; i++ {
		h.send(t, "isready")
		assert.Equal(t, "readyok", h.readLine(t))
	}

	h.send(t, "quit")
	h.waitExit(t)
}

func TestSearchEmitsExactlyOneBestMove(t *testing.T) {
	eng := &fakeEngine{}
	h := start(t, eng)
	h.send(t, "uci")
	h.readUntil(t, "uciok")

	h.send(t, "position fen 8/8/8/8/8/8/8/K6k w - - 0 1")
	h.send(t, "go depth 1")
	assert.Equal(t, "bestmove e2e4", h.readUntil(t, "bestmove"))

	// Back in idle: the session still answers.
	h.send(t, "isready")
	assert.Equal(t, "readyok", h.readLine(t))

	require.Len(t, eng.positions, 1)
	assert.Equal(t, "8/8/8/8/8/8/8/K6k w - - 0 1", eng.positions[0].FEN)

	h.send(t, "quit")
	h.waitExit(t)
}

func TestStopForcesBestMove(t *testing.T) {
	eng := &fakeEngine{blocking: true}
	h := start(t, eng)
	h.send(t, "uci")
	h.readUntil(t, "uciok")

	h.send(t, "go infinite")
	h.send(t, "stop")
	assert.Equal(t, "bestmove e2e4", h.readUntil(t, "bestmove"))

	// A second search proves the machine returned to idle.
	h.send(t, "go infinite")
	h.send(t, "stop")
	assert.Equal(t, "bestmove e2e4", h.readUntil(t, "bestmove"))
	assert.Equal(t, int32(2), eng.searches.Load())

	h.send(t, "quit")
	h.waitExit(t)
}

func TestSetOptionDuringSearchIsDropped(t *testing.T) {
	eng := &fakeEngine{blocking: true}
	h := start(t, eng)
	h.send(t, "uci")
	h.readUntil(t, "uciok")

	h.send(t, "go infinite")
	h.send(t, "setoption name Ponder value true")
	h.send(t, "stop")
	h.readUntil(t, "bestmove")

	assert.Empty(t, eng.appliedOptions(), "option must not apply mid-search")

	// Idle again: the same command now lands.
	h.send(t, "setoption name Ponder value true")
	h.send(t, "isready")
	h.readLine(t)
	assert.Equal(t, []string{"Ponder=true"}, eng.appliedOptions())

	h.send(t, "quit")
	h.waitExit(t)
}

func TestGoDuringSearchIsDropped(t *testing.T) {
	eng := &fakeEngine{blocking: true}
	h := start(t, eng)
	h.send(t, "uci")
	h.readUntil(t, "uciok")

	h.send(t, "go infinite")
	h.send(t, "go depth 2")
	h.send(t, "stop")
	h.readUntil(t, "bestmove")

	assert.Equal(t, int32(1), eng.searches.Load(), "second go must not start a search")

	h.send(t, "quit")
	h.waitExit(t)
}

func TestPonderHitContinuesSearch(t *testing.T) {
	eng := &fakeEngine{blocking: true}
	h := start(t, eng)
	h.send(t, "uci")
	h.readUntil(t, "uciok")

	h.send(t, "go ponder")
	h.send(t, "ponderhit")
	// The fake finishes on ponderhit; one bestmove, one search.
	h.readUntil(t, "bestmove")
	assert.Equal(t, int32(1), eng.searches.Load())

	h.send(t, "quit")
	h.waitExit(t)
}

func TestDebugSurfacesParseErrors(t *testing.T) {
	h := start(t, &fakeEngine{})
	h.send(t, "uci")
	h.readUntil(t, "uciok")

	h.send(t, "debug on")
	h.send(t, "xyzzy")
	assert.Equal(t, "info string unknown command: xyzzy", h.readLine(t))

	h.send(t, "debug off")
	h.send(t, "xyzzy")
	h.send(t, "isready")
	assert.Equal(t, "readyok", h.readLine(t), "parse errors stay silent without debug")

	h.send(t, "quit")
	h.waitExit(t)
}

func TestUnknownLinesNeverKillTheSession(t *testing.T) {
	h := start(t, &fakeEngine{})
	h.send(t, "uci")
	h.readUntil(t, "uciok")

	h.send(t, "")
	h.send(t, "   ")
	h.send(t, "complete nonsense here")
	h.send(t, "isready")
	assert.Equal(t, "readyok", h.readLine(t))

	h.send(t, "quit")
	h.waitExit(t)
}

// panicEngine faults on every search.
type panicEngine struct {
	fakeEngine
}

func (p *panicEngine) Search(context.Context, engine.SearchRequest, engine.ProgressFunc) engine.Result {
	panic("hash table corrupted")
}

func TestEngineFaultStillYieldsBestMove(t *testing.T) {
	h := start(t, &panicEngine{})
	h.send(t, "uci")
	h.readUntil(t, "uciok")

	h.send(t, "go depth 1")
	assert.Equal(t, "bestmove 0000", h.readUntil(t, "bestmove"))

	// The session survives the fault.
	h.send(t, "isready")
	assert.Equal(t, "readyok", h.readLine(t))

	h.send(t, "quit")
	h.waitExit(t)
}

func TestQuitCancelsRunningSearch(t *testing.T) {
	eng := &fakeEngine{blocking: true}
	h := start(t, eng)
	h.send(t, "uci")
	h.readUntil(t, "uciok")

	h.send(t, "go infinite")
	h.send(t, "quit")
	h.waitExit(t)
}

func TestRunReleasesReaderOnQuit(t *testing.T) {
	sess := session.New(&fakeEngine{}, events.NewPublisher(), zap.NewNop())

	// The line after quit is already scanned by the time Run returns; the
	// reader goroutine must not stay parked trying to deliver it.
	in := strings.NewReader("uci\nquit\nisready\n")
	var out bytes.Buffer
	require.NoError(t, sess.Run(context.Background(), in, &out))

	assert.Eventually(t, func() bool {
		buf := make([]byte, 1<<20)
		n := runtime.Stack(buf, true)
		return !strings.Contains(string(buf[:n]), "readLines")
	}, 2*time.Second, 10*time.Millisecond, "reader goroutine must exit with Run")
}

func TestClosedInputActsAsQuit(t *testing.T) {
	eng := &fakeEngine{blocking: true}
	h := start(t, eng)
	h.send(t, "uci")
	h.readUntil(t, "uciok")

	h.send(t, "go infinite")
	h.in.Close()
	h.waitExit(t)
}
