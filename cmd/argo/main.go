// Package main is the stdio UCI engine: it runs one session on standard
// input and output, which is how chess GUIs launch engines.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tecu23/argo/pkg/config"
	"github.com/tecu23/argo/pkg/events"
	"github.com/tecu23/argo/pkg/material"
	"github.com/tecu23/argo/pkg/session"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	name := flag.String("name", config.DefaultName, "engine name for the UCI handshake")
	author := flag.String("author", config.DefaultAuthor, "engine author for the UCI handshake")
	flag.Parse()

	cfg := &config.Config{
		Debug:        *debug,
		EngineName:   *name,
		EngineAuthor: *author,
	}
	cfg.LoadEnv()

	logger := initLogger(cfg.Debug)
	defer logger.Sync()

	publisher := events.NewPublisher()
	publisher.SubscribeAll(func(event events.Event) {
		logger.Debug("event",
			zap.String("type", string(event.Type)),
			zap.String("session_id", event.SessionID),
			zap.Any("payload", event.Payload))
	})

	// SIGINT/SIGTERM are treated like quit: cancel the session's context,
	// which cancels any running search, and exit cleanly.
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		s := <-sig
		logger.Info("shutting down", zap.String("signal", s.String()))
		cancel()
	}()

	eng := material.New(cfg.EngineName, cfg.EngineAuthor, logger)
	sess := session.New(eng, publisher, logger)

	if err := sess.Run(ctx, os.Stdin, os.Stdout); err != nil {
		logger.Error("session error", zap.Error(err))
		os.Exit(1)
	}
}

// initLogger builds the logger on stderr: stdout carries the protocol and
// must never see log output.
func initLogger(debug bool) *zap.Logger {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	return logger
}
