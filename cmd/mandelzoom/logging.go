package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	mandel "github.com/marben/mandelzoom"
	"github.com/marben/mandelzoom/internal/config"
)

// setupLogging installs the package logger. Logs go to cfg.LogFile when set.
// Otherwise the web frontend logs to stderr and the terminal frontend, which
// owns the screen, does not log at all.
func setupLogging(cfg config.Config, stderr io.Writer) (func(), error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	switch {
	case cfg.LogFile != "":
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log: %w", err)
		}
		mandel.SetLogger(slog.New(slog.NewTextHandler(f, opts)))
		return func() {
			mandel.SetLogger(nil)
			f.Close()
		}, nil
	case cfg.Frontend == config.FrontendWeb:
		mandel.SetLogger(slog.New(slog.NewTextHandler(stderr, opts)))
	default:
		mandel.SetLogger(nil)
	}
	return func() { mandel.SetLogger(nil) }, nil
}
