// Package logger provides a configured zerolog instance.
package logger

import (
	"github.com/ilindan-dev/slot-watcher/internal/config"
	"github.com/rs/zerolog"
	"io"
	"os"
)

// NewLogger creates a new configured instance of zerolog.Logger.
// It reads the log level from the config and adds default fields like service name and caller.
func NewLogger(cfg *config.Config) (*zerolog.Logger, error) {
	return New(os.Stderr, cfg.Logger.Level), nil
}

// New builds a console logger writing to out at the given level.
// An unknown or empty level falls back to info.
func New(out io.Writer, levelName string) *zerolog.Logger {
	level, err := zerolog.ParseLevel(levelName)
	if err != nil || levelName == "" {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: out}).With().
		Timestamp().
		Str("service", "slot-watcher").
		Caller().
		Logger().
		Level(level)

	return &logger
}
