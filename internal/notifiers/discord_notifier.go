package notifiers

import (
	"context"
	"fmt"
	"github.com/bwmarrin/discordgo"
	"github.com/ilindan-dev/slot-watcher/internal/config"
	"github.com/ilindan-dev/slot-watcher/internal/domain/model"
	"github.com/rs/zerolog"
)

// discordLimit is the maximum length of a Discord message.
const discordLimit = 2000

// DiscordNotifier posts messages to a Discord channel through the REST API.
type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
	logger    zerolog.Logger
}

// NewDiscordNotifier creates a new instance of DiscordNotifier.
func NewDiscordNotifier(cfg config.DiscordConfig, logger *zerolog.Logger) (*DiscordNotifier, error) {
	session, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	return &DiscordNotifier{
		session:   session,
		channelID: cfg.ChannelID,
		logger:    logger.With().Str("component", "discord_notifier").Logger(),
	}, nil
}

// Send implements the Notifier interface for Discord.
func (n *DiscordNotifier) Send(ctx context.Context, m *model.Message) error {
	for _, chunk := range splitMessage(m.Body, discordLimit) {
		if _, err := n.session.ChannelMessageSend(n.channelID, chunk, discordgo.WithContext(ctx)); err != nil {
			n.logger.Error().Err(err).Stringer("message_id", m.ID).Msg("failed to send discord message")
			return err
		}
	}

	n.logger.Info().Stringer("message_id", m.ID).Str("channel_id", n.channelID).Msg("discord message sent successfully")
	return nil
}

// Close releases the session.
func (n *DiscordNotifier) Close() error {
	return n.session.Close()
}
