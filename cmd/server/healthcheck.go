package main

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// handleHealth reports liveness plus what this instance serves: the engine
// identity and how many UCI sessions are connected right now.
func (app *application) handleHealth(w http.ResponseWriter, _ *http.Request) {
	payload := struct {
		Status   string `json:"status"`
		Engine   string `json:"engine"`
		Sessions int    `json:"sessions"`
		Uptime   string `json:"uptime"`
	}{
		Status:   "ok",
		Engine:   app.Config.EngineName,
		Sessions: app.Hub.ConnectionCount(),
		Uptime:   time.Since(app.StartTime).Round(time.Second).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		app.Logger.Error("health response", zap.Error(err))
	}
}
