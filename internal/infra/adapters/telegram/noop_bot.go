package telegram

import (
	"context"

	"github.com/rs/zerolog"

	"avito-telegram-relay/internal/domain/ports/adapter"
)

var _ adapter.TelegramBotAdapter = (*NoopBotAdapter)(nil)

// NoopBotAdapter implements adapter.TelegramBotAdapter for local/dev runs.
// It logs messages instead of sending them.
type NoopBotAdapter struct {
	log *zerolog.Logger
}

func NewNoopBotAdapter(logger *zerolog.Logger) *NoopBotAdapter {
	l := logger.With().Str("component", "NoopTelegram").Logger()
	return &NoopBotAdapter{log: &l}
}

func (b *NoopBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.log.Info().Int64("tg_chat", chatID).Str("text", text).Msg("send message")
	return nil
}

func (b *NoopBotAdapter) SendHTML(ctx context.Context, chatID int64, html string, rows [][]adapter.InlineButton) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.log.Info().Int64("tg_chat", chatID).Str("html", html).Interface("buttons", rows).Msg("send html")
	return nil
}
