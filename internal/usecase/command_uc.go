package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"avito-telegram-relay/internal/domain"
	"avito-telegram-relay/internal/domain/model"
	"avito-telegram-relay/internal/domain/ports/adapter"
	"avito-telegram-relay/internal/infra/i18n"
	"avito-telegram-relay/internal/infra/logging"
)

// Callback payload prefixes of the notification buttons.
const (
	ReplyCallbackPrefix   = "reply_"
	HistoryCallbackPrefix = "history_"
)

const historyTimeLayout = "15:04 02.01.2006"

// Compile-time check
var _ CommandUseCase = (*commandUC)(nil)

// CommandUseCase serves operator requests. It never touches the relay tracker.
type CommandUseCase interface {
	// History returns one page of the conversation, oldest first. An empty
	// conversation yields an empty slice and no error.
	History(ctx context.Context, conversationID string) ([]model.HistoryRecord, error)
	// Reply posts text into the conversation.
	Reply(ctx context.Context, conversationID, text string) error
}

type commandUC struct {
	market     adapter.MarketplaceAdapter
	translator *i18n.Translator
	log        *zerolog.Logger
}

func NewCommandUseCase(market adapter.MarketplaceAdapter, translator *i18n.Translator, logger *zerolog.Logger) *commandUC {
	l := logger.With().Str("component", "CommandUC").Logger()
	return &commandUC{market: market, translator: translator, log: &l}
}

func (c *commandUC) History(ctx context.Context, conversationID string) ([]model.HistoryRecord, error) {
	defer logging.TraceDuration(c.log, "CommandUC.History")()
	conversationID = strings.TrimSpace(conversationID)
	if conversationID == "" {
		return nil, fmt.Errorf("conversation id: %w", domain.ErrInvalidArgument)
	}

	token, err := c.market.AcquireToken(ctx)
	if err != nil {
		return nil, err
	}
	msgs, err := c.market.ListMessages(ctx, token, conversationID)
	if err != nil {
		c.log.Error().Err(err).Str("conversation_id", conversationID).Msg("history fetch failed")
		return nil, wrapCommand(err)
	}

	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].Created < msgs[j].Created })
	owner := c.market.AccountID()
	out := make([]model.HistoryRecord, 0, len(msgs))
	for _, m := range msgs {
		sender := c.translator.T("history_sender_buyer")
		if m.AuthorID == owner || (m.AuthorID == "" && m.Direction == model.DirectionOut) {
			sender = c.translator.T("history_sender_you")
		}
		out = append(out, model.HistoryRecord{
			Time:   time.Unix(m.Created, 0).In(DisplayZone).Format(historyTimeLayout),
			Sender: sender,
			Text:   m.Text,
		})
	}
	return out, nil
}

func (c *commandUC) Reply(ctx context.Context, conversationID, text string) error {
	defer logging.TraceDuration(c.log, "CommandUC.Reply")()
	conversationID, text = strings.TrimSpace(conversationID), strings.TrimSpace(text)
	if conversationID == "" || text == "" {
		return fmt.Errorf("conversation id and text: %w", domain.ErrInvalidArgument)
	}

	token, err := c.market.AcquireToken(ctx)
	if err != nil {
		return err
	}
	if err := c.market.SendMessage(ctx, token, conversationID, text); err != nil {
		c.log.Error().Err(err).Str("conversation_id", conversationID).Msg("reply not sent")
		return wrapCommand(err)
	}
	c.log.Info().Str("conversation_id", conversationID).Int("length", len(text)).Msg("reply sent")
	return nil
}

func wrapCommand(err error) error {
	if errors.Is(err, domain.ErrCommand) || errors.Is(err, domain.ErrInvalidArgument) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrCommand, err)
}
