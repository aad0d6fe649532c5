package main

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/tecu23/argo/pkg/server"
)

// handleWebSocket upgrades the connection and starts a UCI session on it
func (app *application) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Upgrade HTTP connection to WebSocket
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		app.Logger.Error("Failed to upgrade to WebSocket", zap.Error(err))
		return
	}

	// Every connection gets its own engine and session
	conn := server.NewConnection(ws, app.Hub, app.Hub.NewEngine(), app.Publisher, app.Logger)
	app.Hub.Register(conn)

	app.Logger.Info("WebSocket connection established",
		zap.String("remote_addr", r.RemoteAddr))

	// Start connection read/write goroutines and the session itself
	go conn.WritePump()
	go conn.ReadPump()
	go conn.RunSession()
}
