package notifiers

import (
	"context"
	"fmt"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/ilindan-dev/slot-watcher/internal/config"
	"github.com/ilindan-dev/slot-watcher/internal/domain/model"
	"github.com/rs/zerolog"
)

// telegramLimit is the maximum length of a Telegram text message.
const telegramLimit = 4096

// TelegramNotifier sends messages via a Telegram bot.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger zerolog.Logger
}

// NewTelegramNotifier creates a new instance of TelegramNotifier.
func NewTelegramNotifier(cfg config.TelegramConfig, logger *zerolog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot api: %w", err)
	}
	return &TelegramNotifier{
		bot:    bot,
		chatID: cfg.ChatID,
		logger: logger.With().Str("component", "telegram_notifier").Logger(),
	}, nil
}

// Send implements the Notifier interface for Telegram.
func (n *TelegramNotifier) Send(_ context.Context, m *model.Message) error {
	for _, chunk := range splitMessage(m.Body, telegramLimit) {
		if _, err := n.bot.Send(tgbotapi.NewMessage(n.chatID, chunk)); err != nil {
			n.logger.Error().Err(err).Stringer("message_id", m.ID).Msg("failed to send telegram message")
			return err
		}
	}

	n.logger.Info().Stringer("message_id", m.ID).Int64("chat_id", n.chatID).Msg("telegram message sent successfully")
	return nil
}
