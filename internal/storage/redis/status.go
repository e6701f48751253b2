package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ilindan-dev/slot-watcher/internal/config"
	"github.com/ilindan-dev/slot-watcher/internal/domain/model"
	repo "github.com/ilindan-dev/slot-watcher/internal/domain/repository"
	"github.com/ilindan-dev/slot-watcher/pkg/keybuilder"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"time"
)

// Ensure StatusStore implements the interface
var _ repo.StatusStore = (*StatusStore)(nil)

// StatusStore keeps the latest cycle report in Redis.
type StatusStore struct {
	redis  goredis.Cmdable
	key    string
	ttl    time.Duration
	logger zerolog.Logger
}

// NewClient creates a go-redis client from the configuration.
func NewClient(cfg config.RedisConfig) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewStatusStore creates a new instance of the StatusStore.
func NewStatusStore(redis goredis.Cmdable, ttl time.Duration, logger *zerolog.Logger) *StatusStore {
	return &StatusStore{
		redis:  redis,
		key:    keybuilder.RedisStatusKeyBuild(),
		ttl:    ttl,
		logger: logger.With().Str("layer", "redis_status").Logger(),
	}
}

// Save stores the report under the status key.
func (s *StatusStore) Save(ctx context.Context, report *model.CycleReport) error {
	b, err := json.Marshal(report)
	if err != nil {
		s.logger.Error().Err(err).Stringer("cycle_id", report.ID).Msg("failed to marshal cycle report")
		return fmt.Errorf("failed to marshal cycle report: %w", err)
	}

	if err := s.redis.Set(ctx, s.key, b, s.ttl).Err(); err != nil {
		s.logger.Error().Err(err).Str("key", s.key).Msg("failed to set key in redis")
		return err
	}
	return nil
}

// Latest returns the stored report.
func (s *StatusStore) Latest(ctx context.Context) (*model.CycleReport, error) {
	val, err := s.redis.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, repo.ErrNotFound
		}
		s.logger.Error().Err(err).Str("key", s.key).Msg("failed to get key from redis")
		return nil, err
	}

	var report model.CycleReport
	if err := json.Unmarshal([]byte(val), &report); err != nil {
		s.logger.Error().Err(err).Str("key", s.key).Msg("failed to unmarshal cycle report")
		return nil, fmt.Errorf("failed to unmarshal cycle report: %w", err)
	}
	return &report, nil
}
