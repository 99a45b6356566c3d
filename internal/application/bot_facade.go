package application

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"avito-telegram-relay/internal/domain"
	"avito-telegram-relay/internal/infra/i18n"
	"avito-telegram-relay/internal/usecase"
)

// MaxMessageLength is Telegram's limit for one text message.
const MaxMessageLength = 4096

const statusTimeLayout = "15:04 02.01.2006"

// BotFacade composes usecases into high-level bot commands.
// Methods return ready-to-send texts so the Telegram adapter just forwards them to the chat.
type BotFacade struct {
	CmdUC      CommandUseCaseIface
	Status     StatusSource
	translator *i18n.Translator
	log        *zerolog.Logger
}

func NewBotFacade(cmdUC CommandUseCaseIface, status StatusSource, translator *i18n.Translator, logger *zerolog.Logger) *BotFacade {
	l := logger.With().Str("component", "BotFacade").Logger()
	return &BotFacade{CmdUC: cmdUC, Status: status, translator: translator, log: &l}
}

func (b *BotFacade) HandleStart() string { return b.translator.T("start_message") }

func (b *BotFacade) HandleHelp() string { return b.translator.T("help_message") }

// HandleReply parses "<conversation_id> <text...>" and posts the reply.
func (b *BotFacade) HandleReply(ctx context.Context, args string) string {
	id, text := splitFirstField(args)
	if id == "" || text == "" {
		return b.translator.T("usage_reply")
	}

	err := b.CmdUC.Reply(ctx, id, text)
	switch {
	case err == nil:
		return b.translator.T("reply_sent", id)
	case errors.Is(err, domain.ErrAuth):
		return b.translator.T("token_failed")
	case errors.Is(err, domain.ErrInvalidArgument):
		return b.translator.T("usage_reply")
	default:
		b.log.Warn().Err(err).Str("conversation_id", id).Msg("reply command failed")
		return b.translator.T("reply_failed")
	}
}

// splitFirstField splits s at the first run of whitespace. Any whitespace,
// including newlines and tabs, separates the id from the text.
func splitFirstField(s string) (first, rest string) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

// HandleReplyPrompt answers the reply button with a ready /reply template.
func (b *BotFacade) HandleReplyPrompt(conversationID string) string {
	return b.translator.T("reply_prompt", conversationID, conversationID)
}

// HandleHistory renders the conversation history split into sendable chunks.
func (b *BotFacade) HandleHistory(ctx context.Context, args string) []string {
	id := strings.TrimSpace(args)
	if id == "" || strings.ContainsAny(id, " \t\n") {
		return []string{b.translator.T("usage_history")}
	}

	recs, err := b.CmdUC.History(ctx, id)
	switch {
	case errors.Is(err, domain.ErrAuth):
		return []string{b.translator.T("token_failed")}
	case err != nil:
		b.log.Warn().Err(err).Str("conversation_id", id).Msg("history command failed")
		return []string{b.translator.T("history_failed", id)}
	case len(recs) == 0:
		return []string{b.translator.T("history_empty", id)}
	}

	lines := make([]string, 0, len(recs)+1)
	lines = append(lines, b.translator.T("history_header", id))
	for _, r := range recs {
		lines = append(lines, b.translator.T("history_line", r.Time, r.Sender, r.Text))
	}
	return SplitMessage(strings.Join(lines, "\n"), MaxMessageLength)
}

// HandleStatus reports the poll loop state.
func (b *BotFacade) HandleStatus() string {
	s := b.Status.Snapshot()
	state := b.translator.T("state_polling")
	if s.State == usecase.StateDegraded {
		state = b.translator.T("state_degraded")
	}
	wm := time.Unix(s.Watermark, 0).In(usecase.DisplayZone).Format(statusTimeLayout)

	lines := []string{
		b.translator.T("status_header"),
		b.translator.T("status_state", state),
		b.translator.T("status_watermark", wm),
		b.translator.T("status_seen", s.Seen),
		b.translator.T("status_auth_failures", s.AuthFailures),
		b.translator.T("status_pending", s.Pending),
	}
	return strings.Join(lines, "\n")
}

// SplitMessage cuts text into chunks of at most limit characters, breaking on
// line boundaries when possible. Lines longer than limit are cut hard.
func SplitMessage(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var cur strings.Builder
	curLen := 0
	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, line := range strings.Split(text, "\n") {
		runes := []rune(line)
		for len(runes) > limit {
			flush()
			chunks = append(chunks, string(runes[:limit]))
			runes = runes[limit:]
		}
		n := len(runes)
		sep := 0
		if curLen > 0 {
			sep = 1
		}
		if curLen+sep+n > limit {
			flush()
			sep = 0
		}
		if sep == 1 {
			cur.WriteByte('\n')
		}
		cur.WriteString(string(runes))
		curLen += sep + n
	}
	flush()
	return chunks
}
