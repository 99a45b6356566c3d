package application

import (
	"context"

	"avito-telegram-relay/internal/domain/model"
	"avito-telegram-relay/internal/usecase"
)

// ---- small interfaces to decouple the facade from concrete usecase structs ----
// Using interfaces lets tests pass in light-weight mocks.

type CommandUseCaseIface interface {
	History(ctx context.Context, conversationID string) ([]model.HistoryRecord, error)
	Reply(ctx context.Context, conversationID, text string) error
}

// StatusSource exposes the relay state read by /status.
type StatusSource interface {
	Snapshot() usecase.TrackerSnapshot
}
