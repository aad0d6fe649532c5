package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConnection() *Connection {
	c := &Connection{send: make(chan []byte, 1)}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	return c
}

func TestLineWriterStripsTheNewline(t *testing.T) {
	c := newTestConnection()
	w := lineWriter{c}

	n, err := w.Write([]byte("uciok\n"))
	require.NoError(t, err)
	assert.Equal(t, 6, n, "the session sees the full write")
	assert.Equal(t, "uciok", string(<-c.send))
}

func TestLineWriterFailsInsteadOfBlockingAfterTeardown(t *testing.T) {
	c := newTestConnection()
	w := lineWriter{c}

	// Fill the queue with nothing draining it, as after a dead client.
	_, err := w.Write([]byte("info depth 1\n"))
	require.NoError(t, err)

	c.cancel()
	done := make(chan error, 1)
	go func() {
		_, err := w.Write([]byte("bestmove e2e4\n"))
		done <- err
	}()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("write blocked on a torn-down connection")
	}
}
