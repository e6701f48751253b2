package notifiers

import (
	"context"
	"github.com/ilindan-dev/slot-watcher/internal/domain/model"
	repo "github.com/ilindan-dev/slot-watcher/internal/domain/repository"
	"github.com/rs/zerolog"
)

// QueueNotifier publishes messages to a broker for downstream consumers.
type QueueNotifier struct {
	queue  repo.MessageQueue
	logger zerolog.Logger
}

// NewQueueNotifier creates a new instance of QueueNotifier.
func NewQueueNotifier(queue repo.MessageQueue, logger *zerolog.Logger) *QueueNotifier {
	return &QueueNotifier{
		queue:  queue,
		logger: logger.With().Str("component", "queue_notifier").Logger(),
	}
}

// Send implements the Notifier interface.
func (n *QueueNotifier) Send(ctx context.Context, m *model.Message) error {
	if err := n.queue.Publish(ctx, m); err != nil {
		n.logger.Error().Err(err).Stringer("message_id", m.ID).Msg("failed to publish message")
		return err
	}
	n.logger.Info().Stringer("message_id", m.ID).Msg("message published")
	return nil
}
