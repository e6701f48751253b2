package rabbitmq

import (
	"fmt"
	"github.com/ilindan-dev/slot-watcher/internal/config"
	amqp "github.com/rabbitmq/amqp091-go"
)

// NewConnection creates and returns a raw amqp.Connection.
func NewConnection(cfg config.RabbitMQConfig) (*amqp.Connection, error) {
	conn, err := amqp.Dial(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: failed to connect: %w", err)
	}
	return conn, nil
}
