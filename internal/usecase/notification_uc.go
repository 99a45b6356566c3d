package usecase

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"avito-telegram-relay/internal/domain"
	"avito-telegram-relay/internal/domain/model"
	"avito-telegram-relay/internal/domain/ports/adapter"
	"avito-telegram-relay/internal/infra/i18n"
	"avito-telegram-relay/internal/infra/metrics"
)

// DisplayZone is the fixed UTC+3 zone used for every rendered timestamp.
var DisplayZone = time.FixedZone("MSK", 3*60*60)

const listingURLPrefix = "https://www.avito.ru/"

// Compile-time check
var _ NotificationUseCase = (*notificationUC)(nil)

type NotificationUseCase interface {
	// Notify pushes one buyer message to the destination chat.
	Notify(ctx context.Context, msg model.InboundMessage) error
	// Alert sends an operational plain-text notice. Failures are only logged.
	Alert(ctx context.Context, text string)
}

type NotifierOptions struct {
	ChatID       int64
	ProfileURL   string
	AccountLabel string
}

type notificationUC struct {
	bot        adapter.TelegramBotAdapter
	translator *i18n.Translator
	opts       NotifierOptions
	log        *zerolog.Logger
}

func NewNotificationUseCase(bot adapter.TelegramBotAdapter, translator *i18n.Translator, opts NotifierOptions, logger *zerolog.Logger) *notificationUC {
	l := logger.With().Str("component", "Notifier").Logger()
	return &notificationUC{bot: bot, translator: translator, opts: opts, log: &l}
}

func (n *notificationUC) Notify(ctx context.Context, msg model.InboundMessage) error {
	text := n.Format(msg)
	rows := [][]adapter.InlineButton{
		{{Text: n.translator.T("button_reply"), Data: ReplyCallbackPrefix + msg.ConversationID}},
		{{Text: n.translator.T("button_history"), Data: HistoryCallbackPrefix + msg.ConversationID}},
	}
	if err := n.bot.SendHTML(ctx, n.opts.ChatID, text, rows); err != nil {
		metrics.IncNotification("message", "failed")
		n.log.Error().Err(err).
			Str("message_id", msg.MessageID).
			Str("conversation_id", msg.ConversationID).
			Msg("telegram delivery failed")
		return fmt.Errorf("%w: %v", domain.ErrDelivery, err)
	}
	metrics.IncNotification("message", "sent")
	metrics.IncMessagesRelayed()
	n.log.Info().
		Str("message_id", msg.MessageID).
		Str("conversation_id", msg.ConversationID).
		Str("sender_id", msg.SenderID).
		Str("listing_id", msg.ListingID).
		Msg("message relayed")
	return nil
}

func (n *notificationUC) Alert(ctx context.Context, text string) {
	body := n.translator.T("system_prefix", text)
	if err := n.bot.SendMessage(ctx, n.opts.ChatID, body); err != nil {
		metrics.IncNotification("alert", "failed")
		n.log.Error().Err(err).Str("alert", text).Msg("system alert not delivered")
		return
	}
	metrics.IncNotification("alert", "sent")
	n.log.Info().Str("alert", text).Msg("system alert sent")
}

// Format renders msg as Telegram HTML.
func (n *notificationUC) Format(msg model.InboundMessage) string {
	sender := msg.SenderName
	if sender == "" || sender == model.UnknownValue {
		sender = n.translator.T("unknown_buyer")
	}
	senderLink := fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(n.opts.ProfileURL), html.EscapeString(sender))

	title := msg.ListingTitle
	if title == "" {
		title = n.translator.T("unknown_listing")
	}
	listing := html.EscapeString(title)
	if isDigits(msg.ListingID) {
		listing = fmt.Sprintf(`<a href="%s%s">%s</a>`, listingURLPrefix, msg.ListingID, listing)
	}

	sentAt := time.Unix(msg.SentAt, 0).In(DisplayZone).Format("15:04")

	lines := []string{
		n.translator.T("notif_header"),
		n.translator.T("notif_account", html.EscapeString(n.opts.AccountLabel)),
		n.translator.T("notif_buyer", senderLink),
		n.translator.T("notif_listing", listing),
		n.translator.T("notif_message", html.EscapeString(msg.Body)),
		n.translator.T("notif_time", sentAt),
	}
	return strings.Join(lines, "\n")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
