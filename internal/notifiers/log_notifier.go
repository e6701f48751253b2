package notifiers

import (
	"context"
	"github.com/ilindan-dev/slot-watcher/internal/domain/model"
	"github.com/rs/zerolog"
)

// LogNotifier is a mock notifier that implements the Notifier interface.
// It logs the message instead of sending it through a real transport.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a new instance of LogNotifier.
func NewLogNotifier(logger *zerolog.Logger) *LogNotifier {
	return &LogNotifier{
		logger: logger.With().Str("component", "log_notifier").Logger(),
	}
}

// Send implements the Notifier interface.
func (n *LogNotifier) Send(_ context.Context, m *model.Message) error {
	n.logger.Info().
		Stringer("message_id", m.ID).
		Stringer("cycle_id", m.CycleID).
		Str("subject", m.Subject).
		Str("body", m.Body).
		Msg(">>> MOCK SEND: availability message dispatched")
	return nil
}
