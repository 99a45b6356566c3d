package adapter

import "context"

type InlineButton struct {
	Text string
	Data string
}

type TelegramBotAdapter interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	// SendHTML sends text rendered with Telegram's HTML parse mode. rows may be nil.
	SendHTML(ctx context.Context, chatID int64, html string, rows [][]InlineButton) error
}
