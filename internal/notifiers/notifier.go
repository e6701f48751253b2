package notifiers

import (
	"context"
	"github.com/ilindan-dev/slot-watcher/internal/domain/model"
)

// Notifier defines the interface for any message delivery transport.
type Notifier interface {
	// Send delivers the message.
	Send(ctx context.Context, m *model.Message) error
}
