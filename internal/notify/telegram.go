// Package notify delivers daily-limit alerts to a Telegram chat.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram authenticates the bot token against the Bot API.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	return NewTelegramWithEndpoint(token, chatID, tgbotapi.APIEndpoint, http.DefaultClient)
}

// NewTelegramWithEndpoint targets a custom Bot API endpoint, for example a
// local Bot API server. endpoint uses the "%s/%s" token/method layout.
func NewTelegramWithEndpoint(token string, chatID int64, endpoint string, client *http.Client) (*Telegram, error) {
	if token == "" {
		return nil, errors.New("missing TELEGRAM_BOT_TOKEN")
	}
	if chatID == 0 {
		return nil, errors.New("missing TELEGRAM_CHAT_ID")
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	slog.Info("Telegram bot authorized", "username", bot.Self.UserName, "chat_id", chatID)
	return &Telegram{bot: bot, chatID: chatID}, nil
}

// Alert sends text to the configured chat.
func (t *Telegram) Alert(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, text)); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	slog.InfoContext(ctx, "Telegram alert sent", "chat_id", t.chatID)
	return nil
}
