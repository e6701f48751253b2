package notifiers

import (
	"context"
	"errors"
	"github.com/google/uuid"
	"github.com/ilindan-dev/slot-watcher/internal/config"
	"github.com/ilindan-dev/slot-watcher/internal/domain/model"
	repo "github.com/ilindan-dev/slot-watcher/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sync"
	"testing"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []*model.Message
	err  error
}

func (r *recordingNotifier) Send(_ context.Context, m *model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, m)
	return r.err
}

type fakeQueue struct {
	published []*model.Message
	err       error
}

func (q *fakeQueue) Publish(_ context.Context, m *model.Message) error {
	q.published = append(q.published, m)
	return q.err
}

func testMessage() *model.Message {
	return model.NewMessage(uuid.New(), "Appointment availability", "Store: Bonn city center\nDate: 2024-09-01\nFrom: 10:00\nTo: 10:30\n\n")
}

func TestDispatcher_Send(t *testing.T) {
	logger := zerolog.Nop()
	ok := &recordingNotifier{}
	broken := &recordingNotifier{err: errors.New("unauthorized")}
	d := NewDispatcherWith(&logger, 0,
		Transport{Name: "discord", Notifier: broken},
		Transport{Name: "telegram", Notifier: ok},
	)
	msg := testMessage()

	err := d.Send(context.Background(), msg)

	var ne *repo.NotifyError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, "discord", ne.Transport)
	assert.ErrorIs(t, err, broken.err)
	require.Len(t, ok.sent, 1, "a failing transport must not block the others")
	assert.Same(t, msg, ok.sent[0])
}

func TestDispatcher_Send_AllSucceed(t *testing.T) {
	logger := zerolog.Nop()
	a, b := &recordingNotifier{}, &recordingNotifier{}
	d := NewDispatcherWith(&logger, 100, Transport{Name: "a", Notifier: a}, Transport{Name: "b", Notifier: b})

	require.NoError(t, d.Send(context.Background(), testMessage()))
	require.NoError(t, d.Send(context.Background(), testMessage()))

	assert.Len(t, a.sent, 2)
	assert.Len(t, b.sent, 2)
}

func TestDispatcher_Send_NoTransports(t *testing.T) {
	logger := zerolog.Nop()
	d := NewDispatcherWith(&logger, 0)

	err := d.Send(context.Background(), testMessage())

	var ne *repo.NotifyError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, "dispatcher", ne.Transport)
}

func TestDispatcher_Send_CanceledWhileThrottled(t *testing.T) {
	logger := zerolog.Nop()
	n := &recordingNotifier{}
	d := NewDispatcherWith(&logger, 0.001, Transport{Name: "a", Notifier: n}, Transport{Name: "b", Notifier: n})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := d.Send(ctx, testMessage())

	var ne *repo.NotifyError
	require.ErrorAs(t, err, &ne)
	assert.Empty(t, n.sent)
}

func TestNewDispatcher_NonProductionUsesLog(t *testing.T) {
	logger := zerolog.Nop()
	for _, mode := range []string{config.ModeLogOnly, config.ModeDevelopment} {
		t.Run(mode, func(t *testing.T) {
			cfg := &config.Config{Notifiers: config.NotifiersConfig{
				Mode:    mode,
				Discord: config.DiscordConfig{BotToken: "ignored", ChannelID: "1"},
			}}

			d, err := NewDispatcher(cfg, &logger)
			require.NoError(t, err)
			defer d.Close()

			require.Len(t, d.transports, 1)
			assert.Equal(t, "log", d.transports[0].Name)
			assert.NoError(t, d.Send(context.Background(), testMessage()))
		})
	}
}

func TestNewDispatcher_Production(t *testing.T) {
	logger := zerolog.Nop()
	cfg := &config.Config{Notifiers: config.NotifiersConfig{
		Mode:  config.ModeProduction,
		Slack: config.SlackConfig{BotToken: "xoxb-test", ChannelID: "C123"},
		Email: config.EmailConfig{Host: "smtp.example.com", Port: 587, From: "a@example.com", To: "b@example.com"},
	}}

	d, err := NewDispatcher(cfg, &logger)
	require.NoError(t, err)
	defer d.Close()

	names := make([]string, 0, len(d.transports))
	for _, tr := range d.transports {
		names = append(names, tr.Name)
	}
	assert.Equal(t, []string{"slack", "email"}, names)
}

func TestQueueNotifier_Send(t *testing.T) {
	logger := zerolog.Nop()
	q := &fakeQueue{}
	n := NewQueueNotifier(q, &logger)
	msg := testMessage()

	require.NoError(t, n.Send(context.Background(), msg))
	assert.Equal(t, []*model.Message{msg}, q.published)

	q.err = errors.New("channel closed")
	assert.ErrorIs(t, n.Send(context.Background(), msg), q.err)
}
