package main

import (
	"errors"
	"github.com/ilindan-dev/slot-watcher/internal/app"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
	"io/fs"
	"time"
)

// stopTimeout leaves room for an in-flight poll cycle to finish on shutdown.
const stopTimeout = 45 * time.Second

// main is the entry point for the availability watcher.
func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatal().Err(err).Msg("failed to load .env file")
	}

	fx.New(app.WatcherModule, fx.StopTimeout(stopTimeout)).Run()
}
