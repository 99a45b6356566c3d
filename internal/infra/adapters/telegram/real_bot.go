package telegram

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"avito-telegram-relay/internal/application"
	"avito-telegram-relay/internal/config"
	"avito-telegram-relay/internal/domain/ports/adapter"
	"avito-telegram-relay/internal/infra/i18n"
	"avito-telegram-relay/internal/infra/worker"
)

// botAPI is the subset of *tgbotapi.BotAPI the adapter uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Limiter decides whether a chat may run one more command.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

// RealTelegramBotAdapter sends notifications and serves operator commands
// through the Telegram bot API.
type RealTelegramBotAdapter struct {
	bot         botAPI
	cfg         *config.TelegramConfig
	facade      *application.BotFacade
	translator  *i18n.Translator
	rateLimiter Limiter
	log         *zerolog.Logger

	adminIDsMap map[int64]struct{}
}

// NewRealTelegramBotAdapter connects to Telegram. limiter may be nil.
func NewRealTelegramBotAdapter(cfg *config.TelegramConfig, facade *application.BotFacade, translator *i18n.Translator, limiter Limiter, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("telegram config is nil")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}
	return newAdapter(bot, cfg, facade, translator, limiter, logger)
}

func newAdapter(bot botAPI, cfg *config.TelegramConfig, facade *application.BotFacade, translator *i18n.Translator, limiter Limiter, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}
	if translator == nil {
		return nil, errors.New("translator is nil")
	}
	adminMap := map[int64]struct{}{}
	for _, id := range cfg.AdminIDs {
		adminMap[id] = struct{}{}
	}
	l := logger.With().Str("component", "TelegramBot").Logger()
	return &RealTelegramBotAdapter{
		bot:         bot,
		cfg:         cfg,
		facade:      facade,
		translator:  translator,
		rateLimiter: limiter,
		log:         &l,
		adminIDsMap: adminMap,
	}, nil
}

// StartPolling reads updates until ctx is cancelled and hands each one to a
// worker pool.
func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	pool := worker.NewPool(r.cfg.Workers, r.log)
	pool.Start(ctx)
	defer pool.Stop()

	for {
		select {
		case <-ctx.Done():
			r.bot.StopReceivingUpdates()
			return ctx.Err()
		case up, ok := <-updates:
			if !ok {
				return nil
			}
			err := pool.Submit(ctx, func(ctx context.Context) error { return r.handleUpdate(ctx, up) })
			if err != nil && ctx.Err() == nil {
				r.log.Warn().Err(err).Int("update_id", up.UpdateID).Msg("update dropped")
			}
		}
	}
}

// RegisterCommands publishes the command menu shown by Telegram clients.
func (r *RealTelegramBotAdapter) RegisterCommands(ctx context.Context) error {
	cmds := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "help", Description: r.translator.T("cmd_help_desc")},
		tgbotapi.BotCommand{Command: "reply", Description: r.translator.T("cmd_reply_desc")},
		tgbotapi.BotCommand{Command: "history", Description: r.translator.T("cmd_history_desc")},
		tgbotapi.BotCommand{Command: "status", Description: r.translator.T("cmd_status_desc")},
	)
	_, err := r.bot.Request(cmds)
	return err
}

func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := r.bot.Send(msg)
	return err
}

// SendHTML sends text in HTML parse mode with link previews disabled.
func (r *RealTelegramBotAdapter) SendHTML(ctx context.Context, chatID int64, html string, rows [][]adapter.InlineButton) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, html)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if markup, ok := keyboard(rows); ok {
		msg.ReplyMarkup = markup
	}
	_, err := r.bot.Send(msg)
	return err
}

func keyboard(rows [][]adapter.InlineButton) (tgbotapi.InlineKeyboardMarkup, bool) {
	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		kr := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			label := strings.TrimSpace(btn.Text)
			if label == "" {
				label = "•"
			}
			data := btn.Data
			if data == "" {
				data = label
			}
			kr = append(kr, tgbotapi.NewInlineKeyboardButtonData(label, data))
		}
		kbRows = append(kbRows, kr)
	}
	if len(kbRows) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	return tgbotapi.NewInlineKeyboardMarkup(kbRows...), true
}

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	if update.CallbackQuery != nil {
		return r.handleQuery(ctx, update.CallbackQuery)
	}
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil || !msg.IsCommand() {
		return nil
	}
	handler, ok := r.commandRoutes()[msg.Command()]
	if !ok {
		return nil
	}
	return handler(ctx, msg)
}

// sendChunks sends texts in order and stops at the first failure.
func (r *RealTelegramBotAdapter) sendChunks(ctx context.Context, chatID int64, texts []string) error {
	for _, t := range texts {
		if err := r.SendMessage(ctx, chatID, t); err != nil {
			return err
		}
	}
	return nil
}
