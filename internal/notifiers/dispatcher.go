package notifiers

import (
	"context"
	"errors"
	"fmt"
	"github.com/ilindan-dev/slot-watcher/internal/config"
	"github.com/ilindan-dev/slot-watcher/internal/domain/model"
	repo "github.com/ilindan-dev/slot-watcher/internal/domain/repository"
	"github.com/ilindan-dev/slot-watcher/internal/storage/rabbitmq"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"io"
)

// Transport is a named Notifier owned by the Dispatcher.
type Transport struct {
	Name     string
	Notifier Notifier
}

// Dispatcher is a composite notifier that delivers every message to all enabled transports.
// It implements the Notifier interface itself.
type Dispatcher struct {
	transports []Transport
	closers    []io.Closer
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// NewDispatcher creates a new Dispatcher and initializes the transports
// based on the application's configuration mode.
func NewDispatcher(cfg *config.Config, logger *zerolog.Logger) (*Dispatcher, error) {
	log := logger.With().Str("component", "dispatcher").Logger()
	n := cfg.Notifiers
	log.Info().Str("mode", n.Mode).Msg("initializing notifiers")

	if n.Mode != config.ModeProduction {
		return NewDispatcherWith(logger, n.RatePerSec, Transport{Name: "log", Notifier: NewLogNotifier(logger)}), nil
	}

	var (
		transports []Transport
		closers    []io.Closer
	)
	fail := func(err error) (*Dispatcher, error) {
		for _, c := range closers {
			_ = c.Close()
		}
		return nil, err
	}

	if n.Discord.BotToken != "" {
		dn, err := NewDiscordNotifier(n.Discord, logger)
		if err != nil {
			return fail(fmt.Errorf("failed to initialize discord notifier: %w", err))
		}
		transports = append(transports, Transport{Name: "discord", Notifier: dn})
		closers = append(closers, dn)
		log.Info().Msg("discord notifier enabled")
	}
	if n.Telegram.BotToken != "" {
		tn, err := NewTelegramNotifier(n.Telegram, logger)
		if err != nil {
			return fail(fmt.Errorf("failed to initialize telegram notifier: %w", err))
		}
		transports = append(transports, Transport{Name: "telegram", Notifier: tn})
		log.Info().Msg("telegram notifier enabled")
	}
	if n.Slack.BotToken != "" {
		transports = append(transports, Transport{Name: "slack", Notifier: NewSlackNotifier(n.Slack, logger)})
		log.Info().Msg("slack notifier enabled")
	}
	if n.Email.Host != "" {
		transports = append(transports, Transport{Name: "email", Notifier: NewEmailNotifier(n.Email, logger)})
		log.Info().Msg("email notifier enabled")
	}
	if n.RabbitMQ.DSN != "" {
		conn, err := rabbitmq.NewConnection(n.RabbitMQ)
		if err != nil {
			return fail(fmt.Errorf("failed to initialize rabbitmq notifier: %w", err))
		}
		publisher, err := rabbitmq.NewPublisher(conn, n.RabbitMQ.Exchange, logger)
		if err != nil {
			_ = conn.Close()
			return fail(fmt.Errorf("failed to initialize rabbitmq notifier: %w", err))
		}
		transports = append(transports, Transport{Name: "rabbitmq", Notifier: NewQueueNotifier(publisher, logger)})
		closers = append(closers, publisher)
		log.Info().Str("exchange", n.RabbitMQ.Exchange).Msg("rabbitmq notifier enabled")
	}

	d := NewDispatcherWith(logger, n.RatePerSec, transports...)
	d.closers = closers
	return d, nil
}

// NewDispatcherWith creates a Dispatcher over the given transports.
// ratePerSec limits transport sends; zero disables the limit.
func NewDispatcherWith(logger *zerolog.Logger, ratePerSec float64, transports ...Transport) *Dispatcher {
	d := &Dispatcher{
		transports: transports,
		logger:     logger.With().Str("component", "dispatcher").Logger(),
	}
	if ratePerSec > 0 {
		burst := int(ratePerSec)
		if burst < 1 {
			burst = 1
		}
		d.limiter = rate.NewLimiter(rate.Limit(ratePerSec), burst)
	}
	return d
}

// Send implements the Notifier interface. Every transport is tried; failures are
// returned together as *repository.NotifyError values.
func (d *Dispatcher) Send(ctx context.Context, m *model.Message) error {
	if len(d.transports) == 0 {
		return &repo.NotifyError{Transport: "dispatcher", Err: errors.New("no transports configured")}
	}

	var errs []error
	for _, t := range d.transports {
		if d.limiter != nil {
			if err := d.limiter.Wait(ctx); err != nil {
				errs = append(errs, &repo.NotifyError{Transport: t.Name, Err: err})
				continue
			}
		}
		if err := t.Notifier.Send(ctx, m); err != nil {
			d.logger.Warn().Err(err).Str("transport", t.Name).Stringer("message_id", m.ID).Msg("transport failed")
			errs = append(errs, &repo.NotifyError{Transport: t.Name, Err: err})
		}
	}
	return errors.Join(errs...)
}

// Close releases transport connections.
func (d *Dispatcher) Close() error {
	var errs []error
	for _, c := range d.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}
