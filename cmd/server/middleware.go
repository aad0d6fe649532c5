package main

import (
	"net/http"

	"go.uber.org/zap"
)

// apiKeyHeader carries the client's key. Browser WebSocket clients cannot
// set custom headers, so the api_key query parameter is accepted too.
const apiKeyHeader = "X-Api-Key"

// authenticate rejects requests without a valid API key. With no keys
// configured the check is open, which suits local use.
func (app *application) authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(apiKeyHeader)
		if key == "" {
			key = r.URL.Query().Get("api_key")
		}
		if !app.Auth.IsValidKey(key) {
			app.Logger.Warn("rejected connection",
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr))
			http.Error(w, "invalid API key", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}
