// Package session implements the UCI session: one state machine per
// transport connection, reading command lines, driving the engine through
// the search controller and writing protocol lines back.
//
// Two activities run concurrently: the line-reading loop stays responsive
// to "stop" and "quit" while a search runs on the controller's goroutine.
// All output goes through the state machine's single loop, so info batches
// and the terminal bestmove of a search are written in production order.
package session

import (
	"bufio"
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tecu23/argo/pkg/engine"
	"github.com/tecu23/argo/pkg/events"
	"github.com/tecu23/argo/pkg/protocol"
	"github.com/tecu23/argo/pkg/search"
)

// Phase is the protocol phase of a session.
type Phase uint8

// Session phases. ShuttingDown is terminal.
const (
	PhaseUninitialized Phase = iota
	PhaseIdle
	PhaseSearching
	PhasePondering
	PhaseShuttingDown
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseIdle:
		return "idle"
	case PhaseSearching:
		return "searching"
	case PhasePondering:
		return "pondering"
	default:
		return "shutting_down"
	}
}

// Session drives one UCI conversation over a line transport.
type Session struct {
	ID uuid.UUID

	eng       engine.Engine
	ctl       *search.Controller
	publisher *events.Publisher
	logger    *zap.Logger

	phase Phase
	debug bool
	w     io.Writer

	// Handle of the active search; nil between searches. curEvents is nil
	// exactly when cur is, which parks that select arm.
	cur       *search.Search
	curEvents <-chan search.Event
}

// New creates a session around an engine. The engine starts from the
// standard position until a "position" command replaces it.
func New(eng engine.Engine, publisher *events.Publisher, logger *zap.Logger) *Session {
	id := uuid.New()
	return &Session{
		ID:        id,
		eng:       eng,
		ctl:       search.NewController(eng, logger),
		publisher: publisher,
		logger:    logger.With(zap.String("session_id", id.String())),
		phase:     PhaseUninitialized,
	}
}

// Run reads command lines from r and writes protocol lines to w until a
// "quit" command, end of input or context cancellation, whichever comes
// first. It cancels any in-flight search before returning. Run writes each
// output line with a single Write call, so w needs no extra framing.
func (s *Session) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	// Returning must release the reader goroutine even when it has already
	// scanned a line past the quit.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.w = w

	s.publisher.Publish(events.Event{
		Type:      events.EventSessionStarted,
		SessionID: s.ID.String(),
	})
	defer s.publisher.Publish(events.Event{
		Type:      events.EventSessionEnded,
		SessionID: s.ID.String(),
	})

	lines := make(chan string)
	go s.readLines(ctx, r, lines)

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return nil

		case line, ok := <-lines:
			if !ok {
				// Input stream closed: same as quit.
				s.shutdown()
				return nil
			}
			if quit := s.handleLine(ctx, line); quit {
				s.shutdown()
				return nil
			}

		case ev := <-s.curEvents:
			s.handleSearchEvent(ev)
		}
	}
}

func (s *Session) readLines(ctx context.Context, r io.Reader, lines chan<- string) {
	defer close(lines)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}
	if err := scanner.Err(); err != nil {
		s.logger.Error("transport read error", zap.Error(err))
	}
}

// handleLine parses and dispatches one input line. It returns true when the
// session must shut down. Parse failures drop the line and never the session.
func (s *Session) handleLine(ctx context.Context, line string) bool {
	cmd, err := protocol.Parse(line)
	if err != nil {
		if errors.Is(err, protocol.ErrEmptyLine) {
			return false
		}
		s.publisher.Publish(events.Event{
			Type:      events.EventParseError,
			SessionID: s.ID.String(),
			Payload:   line,
		})
		s.debugInfo("unknown command: " + line)
		return false
	}

	switch c := cmd.(type) {
	case protocol.UCIInit:
		s.handleUCIInit()
	case protocol.Debug:
		s.debug = c.On
	case protocol.IsReady:
		s.emit(protocol.ReadyOK{})
	case protocol.SetOption:
		s.handleSetOption(c)
	case protocol.NewGame:
		s.handleNewGame()
	case protocol.SetPosition:
		s.handleSetPosition(c)
	case protocol.Go:
		s.handleGo(ctx, c)
	case protocol.Stop:
		s.handleStop()
	case protocol.PonderHit:
		s.handlePonderHit()
	case protocol.Quit:
		return true
	}
	return false
}

// handleUCIInit runs the handshake: identify, declare options, confirm.
func (s *Session) handleUCIInit() {
	if s.phase != PhaseUninitialized {
		s.violation("uci", "handshake already done")
		return
	}
	identity := s.eng.Identity()
	s.emit(protocol.IDName(identity.Name))
	s.emit(protocol.IDAuthor(identity.Author))
	for _, opt := range s.eng.Options() {
		s.emit(opt)
	}
	s.emit(protocol.UCIOK{})
	s.phase = PhaseIdle
}

func (s *Session) handleSetOption(c protocol.SetOption) {
	if s.phase != PhaseIdle {
		s.violation("setoption", "only legal between searches")
		return
	}
	if err := s.eng.SetOption(c.Name, c.Value); err != nil {
		s.publisher.Publish(events.Event{
			Type:      events.EventOptionRejected,
			SessionID: s.ID.String(),
			Payload:   c.Name,
		})
		s.logger.Warn("option rejected",
			zap.String("name", c.Name),
			zap.String("value", c.Value),
			zap.Error(err))
		s.debugInfo("option rejected: " + err.Error())
		return
	}
	s.publisher.Publish(events.Event{
		Type:      events.EventOptionApplied,
		SessionID: s.ID.String(),
		Payload:   c.Name,
	})
}

func (s *Session) handleNewGame() {
	if s.phase != PhaseIdle {
		s.violation("ucinewgame", "only legal between searches")
		return
	}
	s.eng.NewGame()
}

func (s *Session) handleSetPosition(c protocol.SetPosition) {
	if s.phase != PhaseIdle {
		s.violation("position", "only legal between searches")
		return
	}
	if err := s.eng.SetPosition(c.Pos); err != nil {
		s.logger.Warn("position rejected",
			zap.String("position", c.Pos.String()),
			zap.Error(err))
		s.debugInfo("position rejected: " + err.Error())
	}
}

func (s *Session) handleGo(ctx context.Context, c protocol.Go) {
	if s.phase != PhaseIdle {
		s.violation("go", "a search is already running")
		return
	}
	s.cur = s.ctl.Start(ctx, c.Req)
	s.curEvents = s.cur.Events()
	if c.Req.Ponder {
		s.phase = PhasePondering
	} else {
		s.phase = PhaseSearching
	}
	s.publisher.Publish(events.Event{
		Type:      events.EventSearchStarted,
		SessionID: s.ID.String(),
		Payload:   c.Req,
	})
}

// handleStop cancels the search. The phase flips to Idle when the search's
// Done event delivers the forced bestmove, keeping output in stream order.
func (s *Session) handleStop() {
	if s.phase != PhaseSearching && s.phase != PhasePondering {
		s.violation("stop", "no search is running")
		return
	}
	s.cur.Stop()
}

func (s *Session) handlePonderHit() {
	if s.phase != PhasePondering {
		s.violation("ponderhit", "not pondering")
		return
	}
	s.cur.PonderHit()
	s.phase = PhaseSearching
}

func (s *Session) handleSearchEvent(ev search.Event) {
	switch e := ev.(type) {
	case search.Progress:
		s.emit(e.Info)

	case search.Done:
		if e.Err != nil {
			s.publisher.Publish(events.Event{
				Type:      events.EventEngineFault,
				SessionID: s.ID.String(),
				Payload:   e.Err.Error(),
			})
			s.debugInfo("search fault: " + e.Err.Error())
		}
		s.emit(protocol.BestMove{Move: e.Result.Best, Ponder: e.Result.Ponder})
		s.publisher.Publish(events.Event{
			Type:      events.EventBestMove,
			SessionID: s.ID.String(),
			Payload:   e.Result.Best.String(),
		})
		s.cur = nil
		s.curEvents = nil
		s.phase = PhaseIdle
	}
}

// shutdown cancels any running search and drains its stream without writing:
// after quit no further output is guaranteed, only a prompt exit.
func (s *Session) shutdown() {
	s.phase = PhaseShuttingDown
	if s.cur == nil {
		return
	}
	s.cur.Stop()
	for range s.curEvents {
	}
	s.cur = nil
	s.curEvents = nil
}

// emit writes one protocol line. Write failures are logged and the session
// carries on; a dead transport surfaces on the read side as end of input.
func (s *Session) emit(cmd protocol.EngineCommand) {
	if _, err := io.WriteString(s.w, protocol.Marshal(cmd)+"\n"); err != nil {
		s.logger.Error("transport write error", zap.Error(err))
	}
}

// debugInfo surfaces a diagnostic on the info-string side channel when
// debug mode is on. The protocol has no generic error message.
func (s *Session) debugInfo(msg string) {
	if s.debug {
		s.emit(protocol.InfoString(msg))
	}
}

func (s *Session) violation(cmd, reason string) {
	s.publisher.Publish(events.Event{
		Type:      events.EventProtocolViolation,
		SessionID: s.ID.String(),
		Payload:   cmd,
	})
	s.logger.Warn("protocol violation",
		zap.String("command", cmd),
		zap.String("phase", s.phase.String()),
		zap.String("reason", reason))
	s.debugInfo("ignoring " + cmd + ": " + reason)
}
