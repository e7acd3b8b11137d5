package notify

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Sender is the part of *bot.Bot the Telegram sink needs.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Telegram sends notifications to a chat.
type Telegram struct {
	Bot    Sender
	ChatID int64
}

// NewTelegramBot creates a send-only bot client for token.
func NewTelegramBot(token string) (*bot.Bot, error) {
	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return b, nil
}

func (t *Telegram) Notify(ctx context.Context, n Notification) error {
	text := n.Text()
	if n.Kind == KindWarning {
		text = "⏰ " + text
	}

	if _, err := t.Bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: t.ChatID,
		Text:   text,
	}); err != nil {
		return fmt.Errorf("telegram notify: %w", err)
	}
	return nil
}
