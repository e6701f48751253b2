package notifiers

import (
	"context"
	"github.com/ilindan-dev/slot-watcher/internal/config"
	"github.com/ilindan-dev/slot-watcher/internal/domain/model"
	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
)

// SlackPoster is the part of the Slack client used to post messages.
type SlackPoster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// SlackNotifier posts messages to a Slack channel.
type SlackNotifier struct {
	client    SlackPoster
	channelID string
	logger    zerolog.Logger
}

// NewSlackNotifier creates a new instance of SlackNotifier.
func NewSlackNotifier(cfg config.SlackConfig, logger *zerolog.Logger) *SlackNotifier {
	return newSlackNotifier(slack.New(cfg.BotToken), cfg.ChannelID, logger)
}

func newSlackNotifier(client SlackPoster, channelID string, logger *zerolog.Logger) *SlackNotifier {
	return &SlackNotifier{
		client:    client,
		channelID: channelID,
		logger:    logger.With().Str("component", "slack_notifier").Logger(),
	}
}

// Send implements the Notifier interface for Slack.
func (n *SlackNotifier) Send(ctx context.Context, m *model.Message) error {
	_, _, err := n.client.PostMessageContext(ctx, n.channelID,
		slack.MsgOptionText(m.Body, false),
		slack.MsgOptionAsUser(false),
	)
	if err != nil {
		n.logger.Error().Err(err).Stringer("message_id", m.ID).Msg("failed to send slack message")
		return err
	}

	n.logger.Info().Stringer("message_id", m.ID).Str("channel_id", n.channelID).Msg("slack message sent successfully")
	return nil
}
