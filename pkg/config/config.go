// Package config holds the runtime configuration shared by the stdio and
// WebSocket binaries. Flags provide the base values; a .env file, when
// present, overlays identity and server settings.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Defaults for the engine identity announced during the UCI handshake.
const (
	DefaultName   = "Argo"
	DefaultAuthor = "The Argo Authors"
)

// Config encapsulates everything the binaries need to wire up a session.
type Config struct {
	Debug bool
	Port  string

	// Engine identity for the "id name"/"id author" lines.
	EngineName   string
	EngineAuthor string

	// APIKeys guards the WebSocket endpoint; empty means open access.
	APIKeys []string
}

// LoadEnv overlays the config with values from the environment, after
// loading a .env file if one exists. A missing .env file is normal for the
// stdio binary, which GUIs launch from arbitrary directories.
func (c *Config) LoadEnv() {
	_ = godotenv.Load()

	if v := os.Getenv("ENGINE_NAME"); v != "" {
		c.EngineName = v
	}
	if v := os.Getenv("ENGINE_AUTHOR"); v != "" {
		c.EngineAuthor = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("API_KEYS"); v != "" {
		keys := strings.Split(v, ",")
		for i, key := range keys {
			keys[i] = strings.TrimSpace(key)
		}
		c.APIKeys = keys
	}
	if v := os.Getenv("DEBUG"); v == "true" || v == "1" {
		c.Debug = true
	}
}
