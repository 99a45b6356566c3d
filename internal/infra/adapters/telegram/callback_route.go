package telegram

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"avito-telegram-relay/internal/infra/logging"
	"avito-telegram-relay/internal/infra/metrics"
	"avito-telegram-relay/internal/usecase"
)

type cbHandler func(ctx context.Context, chatID int64, data string) error
type prefixCB struct {
	Prefix string
	Name   string
	Fn     cbHandler
}

// Prefix-match callbacks
func (r *RealTelegramBotAdapter) cbPrefixRoutes() []prefixCB {
	return []prefixCB{
		{Prefix: usecase.ReplyCallbackPrefix, Name: "cb:reply", Fn: r.replyPrefixCBRoute},
		{Prefix: usecase.HistoryCallbackPrefix, Name: "cb:history", Fn: r.historyPrefixCBRoute},
	}
}

func (r *RealTelegramBotAdapter) replyPrefixCBRoute(ctx context.Context, chatID int64, data string) error {
	id := strings.TrimPrefix(data, usecase.ReplyCallbackPrefix)
	return r.SendMessage(ctx, chatID, r.facade.HandleReplyPrompt(id))
}

func (r *RealTelegramBotAdapter) historyPrefixCBRoute(ctx context.Context, chatID int64, data string) error {
	id := strings.TrimPrefix(data, usecase.HistoryCallbackPrefix)
	return r.sendChunks(ctx, chatID, r.facade.HandleHistory(ctx, id))
}

func (r *RealTelegramBotAdapter) handleQuery(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query == nil || query.From == nil {
		return errors.New("invalid callback query")
	}

	// Stop telegram spinner when we return
	defer func() {
		if _, err := r.bot.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
			r.log.Debug().Err(err).Msg("answer callback failed")
		}
	}()

	chatID := query.From.ID
	if query.Message != nil && query.Message.Chat != nil {
		chatID = query.Message.Chat.ID
	}
	ctx = logging.WithTgChat(ctx, chatID)
	data := strings.TrimSpace(query.Data)

	for _, pr := range r.cbPrefixRoutes() {
		if !strings.HasPrefix(data, pr.Prefix) {
			continue
		}
		if !r.authorized(chatID, query.From.ID) {
			metrics.IncTelegramCommand(pr.Name, "unauthorized")
			return r.SendMessage(ctx, chatID, r.translator.T("error_unauthorized"))
		}
		if !r.allow(ctx, chatID, pr.Name) {
			metrics.IncTelegramCommand(pr.Name, "limited")
			return r.SendMessage(ctx, chatID, r.translator.T("error_rate_limited"))
		}
		metrics.IncTelegramCommand(pr.Name, "authorized")
		return pr.Fn(ctx, chatID, data)
	}

	logging.With(ctx, r.log).Warn().Str("data", data).Msg("unknown callback data")
	return r.SendMessage(ctx, chatID, r.translator.T("error_unknown_action"))
}
