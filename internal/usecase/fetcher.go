package usecase

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"avito-telegram-relay/internal/domain/model"
	"avito-telegram-relay/internal/domain/ports/adapter"
	"avito-telegram-relay/internal/infra/logging"
)

// MessageFetcher lists the account's chats and selects new inbound messages.
type MessageFetcher struct {
	market adapter.MarketplaceAdapter
	log    *zerolog.Logger
}

func NewMessageFetcher(market adapter.MarketplaceAdapter, logger *zerolog.Logger) *MessageFetcher {
	l := logger.With().Str("component", "MessageFetcher").Logger()
	return &MessageFetcher{market: market, log: &l}
}

// FetchNew returns the new inbound messages and the advanced watermark.
// On any listing failure it returns no messages, the unchanged watermark and
// the error; the caller treats the error as the end of the cycle.
func (f *MessageFetcher) FetchNew(ctx context.Context, token string, watermark int64, isNew func(string) bool) ([]model.InboundMessage, int64, error) {
	defer logging.TraceDuration(f.log, "MessageFetcher.FetchNew")()

	chats, err := f.market.ListChats(ctx, token)
	if err != nil {
		return nil, watermark, err
	}
	msgs, next := FilterNew(chats, f.market.AccountID(), watermark, isNew)
	f.log.Debug().Int("chats", len(chats)).Int("new", len(msgs)).Int64("watermark", next).Msg("chats listed")
	return msgs, next, nil
}

// FilterNew applies the relay selection rules to a chat list.
//
// Only the last message of every chat is considered. It is selected when it
// is inbound, strictly newer than watermark and isNew reports it unseen.
// The returned watermark is the maximum of watermark and the creation time of
// every considered message, selected or not. Selected messages are ordered
// oldest first.
func FilterNew(chats []model.Chat, ownerID string, watermark int64, isNew func(string) bool) ([]model.InboundMessage, int64) {
	next := watermark
	var out []model.InboundMessage
	for i := range chats {
		chat := &chats[i]
		last := chat.LastMessage
		if last == nil {
			continue
		}
		if last.Created > next {
			next = last.Created
		}
		if last.Direction != model.DirectionIn || last.Created <= watermark || !isNew(last.ID) {
			continue
		}

		sender := model.ChatUser{ID: model.UnknownValue, Name: model.UnknownValue, PublicKey: model.UnknownValue}
		if u, ok := chat.Counterpart(ownerID); ok {
			sender = u
		}
		listingID := chat.ListingID
		if listingID == "" {
			listingID = model.UnknownValue
		}
		out = append(out, model.InboundMessage{
			ConversationID:  chat.ID,
			MessageID:       last.ID,
			SenderName:      sender.Name,
			SenderID:        sender.ID,
			SenderPublicKey: sender.PublicKey,
			Body:            last.Text,
			SentAt:          last.Created,
			ListingTitle:    chat.ListingTitle,
			ListingID:       listingID,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SentAt < out[j].SentAt })
	return out, next
}
