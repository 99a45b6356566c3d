package adapter

import (
	"context"

	"avito-telegram-relay/internal/domain/model"
)

// MarketplaceAdapter is the port to the Avito messenger API.
// Every call except AcquireToken needs a bearer token obtained in the same cycle.
type MarketplaceAdapter interface {
	AccountID() string
	AcquireToken(ctx context.Context) (string, error)
	ListChats(ctx context.Context, token string) ([]model.Chat, error)
	ListMessages(ctx context.Context, token, chatID string) ([]model.ChatMessage, error)
	SendMessage(ctx context.Context, token, chatID, text string) error
}
