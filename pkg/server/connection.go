// Package server serves UCI sessions over WebSocket: one engine and one
// session per accepted connection, one UCI line per text message in either
// direction.
package server

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tecu23/argo/pkg/engine"
	"github.com/tecu23/argo/pkg/events"
	"github.com/tecu23/argo/pkg/session"
)

// Connection binds one WebSocket to one UCI session. Inbound messages are
// framed into lines through a pipe; outbound lines are queued on send and
// written by WritePump.
type Connection struct {
	ID uuid.UUID

	ws   *websocket.Conn // The underlying WebSocket connection
	hub  *Hub
	send chan []byte // Buffered channel of outbound lines.

	sess   *session.Session
	inR    *io.PipeReader
	inW    *io.PipeWriter
	ctx    context.Context
	cancel context.CancelFunc

	publisher *events.Publisher
	logger    *zap.Logger
}

// NewConnection wires a fresh engine and session to the socket. The caller
// starts the pumps and RunSession.
func NewConnection(
	ws *websocket.Conn,
	hub *Hub,
	eng engine.Engine,
	publisher *events.Publisher,
	logger *zap.Logger,
) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	inR, inW := io.Pipe()
	return &Connection{
		ID:        uuid.New(),
		ws:        ws,
		hub:       hub,
		send:      make(chan []byte, 256), // buffered for outgoing lines
		sess:      session.New(eng, publisher, logger),
		inR:       inR,
		inW:       inW,
		ctx:       ctx,
		cancel:    cancel,
		publisher: publisher,
		logger:    logger,
	}
}

// RunSession runs the UCI session until quit, socket close or hub shutdown,
// then tears the connection down.
func (c *Connection) RunSession() {
	defer func() {
		c.cancel()
		c.hub.Unregister(c)
		c.ws.Close()
	}()

	if err := c.sess.Run(c.ctx, c.inR, lineWriter{c}); err != nil {
		c.logger.Error("session error", zap.Error(err))
	}

	c.publisher.Publish(events.Event{
		Type:      events.EventConnectionClosed,
		SessionID: c.sess.ID.String(),
		Payload:   c.ID.String(),
	})
}

// ReadPump feeds inbound messages to the session as newline-framed lines
func (c *Connection) ReadPump() {
	defer c.inW.Close() // end of input reads as quit

	for {
		msgType, msg, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Error("read error", zap.Error(err))
			}
			return
		}

		// We only handle text
		if msgType != websocket.TextMessage {
			continue
		}
		if _, err := c.inW.Write(append(msg, '\n')); err != nil {
			return
		}
	}
}

// WritePump handles outbound lines to the client
func (c *Connection) WritePump() {
	defer c.ws.Close()
	defer c.cancel() // a dead writer must not wedge the session on a full queue

	for {
		line, ok := <-c.send
		if !ok {
			// Channel closed
			c.logger.Info(
				"send channel closed for connection",
				zap.String("connection_id", c.ID.String()),
			)
			return
		}
		if err := c.ws.WriteMessage(websocket.TextMessage, line); err != nil {
			c.logger.Error("write error", zap.Error(err))
			return
		}
	}
}

// close cancels the session; teardown completes in RunSession.
func (c *Connection) close() {
	c.cancel()
	c.inW.Close()
}

// lineWriter adapts the session's one-Write-per-line output contract onto
// the send queue, one message per line without the newline.
type lineWriter struct {
	c *Connection
}

func (w lineWriter) Write(p []byte) (int, error) {
	line := make([]byte, len(p))
	copy(line, p)
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	select {
	case w.c.send <- line:
		return len(p), nil
	case <-w.c.ctx.Done():
		return 0, io.ErrClosedPipe
	}
}
