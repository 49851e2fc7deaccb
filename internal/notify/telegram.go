// Package notify pushes operational alerts to a fleet managers chat.
package notify

import (
	"fmt"

	"fleetdesk/internal/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// TelegramNotifier sends plain text messages to a single configured chat.
// Disabled (nil api) when no token is configured; Notify is then a no-op.
type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
	logger zerolog.Logger
}

func NewTelegramNotifier(cfg config.NotifyConfig, logger *zerolog.Logger) (*TelegramNotifier, error) {
	n := &TelegramNotifier{
		chatID: cfg.ChatID,
		logger: logger.With().Str("component", "notifier").Logger(),
	}

	if cfg.TelegramToken == "" {
		n.logger.Info().Msg("telegram token not set, notifications disabled")
		return n, nil
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	n.api = api
	n.logger.Info().Str("bot", api.Self.UserName).Msg("telegram notifier ready")
	return n, nil
}

func (n *TelegramNotifier) Notify(text string) error {
	if n == nil || n.api == nil {
		return nil
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.api.Send(msg); err != nil {
		n.logger.Error().Err(err).Msg("failed to send notification")
		return fmt.Errorf("failed to send notification: %w", err)
	}
	return nil
}
