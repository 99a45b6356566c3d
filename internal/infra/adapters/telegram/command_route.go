package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"avito-telegram-relay/internal/infra/logging"
	"avito-telegram-relay/internal/infra/metrics"
	red "avito-telegram-relay/internal/infra/redis"
)

type commandHandler func(ctx context.Context, message *tgbotapi.Message) error

// commandRoutes defines all available bot commands and their handlers.
func (r *RealTelegramBotAdapter) commandRoutes() map[string]commandHandler {
	return map[string]commandHandler{
		"start":   r.guard("start", r.handleStartCommand),
		"help":    r.guard("help", r.handleHelpCommand),
		"reply":   r.guard("reply", r.handleReplyCommand),
		"history": r.guard("history", r.handleHistoryCommand),
		"status":  r.guard("status", r.handleStatusCommand),
	}
}

// authorized accepts the destination chat and configured admins anywhere.
func (r *RealTelegramBotAdapter) authorized(chatID, userID int64) bool {
	if chatID == r.cfg.ChatID {
		return true
	}
	_, ok := r.adminIDsMap[userID]
	return ok
}

// allow applies the optional per-chat rate limit. Limiter errors let the
// command through.
func (r *RealTelegramBotAdapter) allow(ctx context.Context, chatID int64, action string) bool {
	if r.rateLimiter == nil {
		return true
	}
	ok, err := r.rateLimiter.Allow(ctx, red.ChatCommandKey(chatID, action))
	if err != nil {
		r.log.Warn().Err(err).Msg("rate limiter unavailable")
		return true
	}
	if !ok {
		metrics.IncRateLimitTriggered()
	}
	return ok
}

// guard wraps a handler with the chat check and rate limiting.
func (r *RealTelegramBotAdapter) guard(name string, next commandHandler) commandHandler {
	return func(ctx context.Context, message *tgbotapi.Message) error {
		chatID := message.Chat.ID
		ctx = logging.WithTgChat(ctx, chatID)
		if !r.authorized(chatID, message.From.ID) {
			metrics.IncTelegramCommand("/"+name, "unauthorized")
			logging.With(ctx, r.log).Warn().Int64("tg_user", message.From.ID).Str("command", name).Msg("command from foreign chat")
			return r.SendMessage(ctx, chatID, r.translator.T("error_unauthorized"))
		}
		if !r.allow(ctx, chatID, "/"+name) {
			metrics.IncTelegramCommand("/"+name, "limited")
			return r.SendMessage(ctx, chatID, r.translator.T("error_rate_limited"))
		}
		metrics.IncTelegramCommand("/"+name, "authorized")
		return next(ctx, message)
	}
}

func (r *RealTelegramBotAdapter) handleStartCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.SendMessage(ctx, message.Chat.ID, r.facade.HandleStart())
}

func (r *RealTelegramBotAdapter) handleHelpCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.SendMessage(ctx, message.Chat.ID, r.facade.HandleHelp())
}

// handleReplyCommand handles /reply <conversation_id> <text...>.
func (r *RealTelegramBotAdapter) handleReplyCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.SendMessage(ctx, message.Chat.ID, r.facade.HandleReply(ctx, message.CommandArguments()))
}

// handleHistoryCommand handles /history <conversation_id>.
func (r *RealTelegramBotAdapter) handleHistoryCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.sendChunks(ctx, message.Chat.ID, r.facade.HandleHistory(ctx, message.CommandArguments()))
}

func (r *RealTelegramBotAdapter) handleStatusCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.SendMessage(ctx, message.Chat.ID, r.facade.HandleStatus())
}
