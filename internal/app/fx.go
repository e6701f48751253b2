package app

import (
	"context"
	"fmt"
	"github.com/ilindan-dev/slot-watcher/internal/config"
	deliveryHTTP "github.com/ilindan-dev/slot-watcher/internal/delivery/http"
	repo "github.com/ilindan-dev/slot-watcher/internal/domain/repository"
	"github.com/ilindan-dev/slot-watcher/internal/logger"
	"github.com/ilindan-dev/slot-watcher/internal/notifiers"
	"github.com/ilindan-dev/slot-watcher/internal/scheduler"
	"github.com/ilindan-dev/slot-watcher/internal/service"
	"github.com/ilindan-dev/slot-watcher/internal/shutdown"
	"github.com/ilindan-dev/slot-watcher/internal/storage/fielmann"
	"github.com/ilindan-dev/slot-watcher/internal/storage/memory"
	"github.com/ilindan-dev/slot-watcher/internal/storage/redis"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"net/http"
)

// CoreModule provides the polling pipeline: source, formatter, notifiers and scheduler.
var CoreModule = fx.Options(
	fx.Provide(
		// Core components
		config.NewConfig,
		logger.NewLogger,
		shutdown.NewCoordinator,

		// Storage Layer
		fielmann.NewClient,
		NewStatusStore,

		// Service Layer
		service.NewFormatter,
		notifiers.NewDispatcher,
		service.NewPollService,
		scheduler.New,

		// Interface bindings
		func(c *fielmann.Client) repo.AvailabilitySource { return c },
		func(d *notifiers.Dispatcher) notifiers.Notifier { return d },
		func(s *service.PollService) scheduler.Cycler { return s },
	),

	// Transports are closed last, after the scheduler has stopped.
	fx.Invoke(func(d *notifiers.Dispatcher, lc fx.Lifecycle) {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return d.Close()
			},
		})
	}),

	fx.Invoke(func(
		sched *scheduler.Scheduler,
		coord *shutdown.Coordinator,
		shutdowner fx.Shutdowner,
		lc fx.Lifecycle,
	) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				coord.Trap(shutdowner)
				// The start context expires once startup is over; the loop outlives it.
				sched.Start(context.Background(), coord.Signal())
				return nil
			},
			OnStop: func(ctx context.Context) error {
				coord.Release()
				coord.Shutdown("application stopping")
				return sched.Wait(ctx)
			},
		})
	}),
)

// WatcherModule defines the Fx module for the watcher with its status API.
var WatcherModule = fx.Options(
	CoreModule,
	fx.Provide(
		deliveryHTTP.NewHandlers,
		deliveryHTTP.NewServer,
	),

	fx.Invoke(func(cfg *config.Config, server *deliveryHTTP.Server, logger *zerolog.Logger, lc fx.Lifecycle) {
		if cfg.HTTP.Port == "" {
			return
		}
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				go func() {
					if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						logger.Error().Err(err).Str("addr", server.Addr).Msg("status server stopped")
					}
				}()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				return server.Shutdown(ctx)
			},
		})
	}),
)

// NewStatusStore returns a Redis backed store when redis.addr is set, an in-memory one otherwise.
func NewStatusStore(cfg *config.Config, logger *zerolog.Logger, lc fx.Lifecycle) repo.StatusStore {
	if cfg.Redis.Addr == "" {
		return memory.NewStatusStore()
	}

	client := redis.NewClient(cfg.Redis)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis: ping %s: %w", cfg.Redis.Addr, err)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return redis.NewStatusStore(client, cfg.Redis.TTL, logger)
}
