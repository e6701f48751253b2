package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ilindan-dev/slot-watcher/internal/domain/model"
	repo "github.com/ilindan-dev/slot-watcher/internal/domain/repository"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Ensure Publisher implements the repository interface at compile time.
var _ repo.MessageQueue = (*Publisher)(nil)

const (
	// NotificationsQueue is bound to the exchange so messages survive without consumers.
	NotificationsQueue = "availability.queue.notifications"

	Fanout = "fanout"
)

// Publisher implements the MessageQueue interface on top of a fanout exchange.
type Publisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	logger   zerolog.Logger
}

// NewPublisher creates a new instance of Publisher.
// It receives a connection and owns it from then on.
func NewPublisher(conn *amqp.Connection, exchange string, logger *zerolog.Logger) (*Publisher, error) {
	channel, err := conn.Channel()
	if err != nil {
		logger.Error().Err(err).Msg("storage: rabbitMQ: New: Failed to open a channel")
		return nil, fmt.Errorf("storage: rabbitMQ: New: Failed to open a channel: %w", err)
	}

	p := &Publisher{
		conn:     conn,
		ch:       channel,
		exchange: exchange,
		logger:   logger.With().Str("component", "rabbitmq_publisher").Logger(),
	}

	if err = p.setupTopology(); err != nil {
		p.logger.Error().Err(err).Msg("storage: rabbitMQ: New: Failed to setup topology")
		_ = channel.Close()
		return nil, fmt.Errorf("storage: rabbitMQ: New: Failed to setup topology: %w", err)
	}

	return p, nil
}

// setupTopology declares the exchange and the durable queue bound to it.
func (p *Publisher) setupTopology() error {
	p.logger.Info().Str("exchange", p.exchange).Msg("setting up rabbitmq topology")

	if err := p.ch.ExchangeDeclare(p.exchange, Fanout, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", p.exchange, err)
	}
	if _, err := p.ch.QueueDeclare(NotificationsQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", NotificationsQueue, err)
	}
	if err := p.ch.QueueBind(NotificationsQueue, "", p.exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s to exchange %s: %w", NotificationsQueue, p.exchange, err)
	}

	p.logger.Info().Msg("rabbitmq topology setup successful")
	return nil
}

// Publish sends the message as JSON to the exchange.
func (p *Publisher) Publish(ctx context.Context, m *model.Message) error {
	body, err := json.Marshal(m)
	if err != nil {
		p.logger.Error().Err(err).Stringer("id", m.ID).Msg("failed to marshal message")
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    m.ID.String(),
		Timestamp:    m.CreatedAt,
		Body:         body,
		DeliveryMode: amqp.Persistent,
	}

	return p.ch.PublishWithContext(ctx, p.exchange, "", false, false, msg)
}

// Close shuts down the channel and the connection.
func (p *Publisher) Close() error {
	var errs []error
	if p.ch != nil {
		errs = append(errs, p.ch.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}
