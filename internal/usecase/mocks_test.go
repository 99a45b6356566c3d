// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"avito-telegram-relay/internal/domain"
	"avito-telegram-relay/internal/domain/model"
	"avito-telegram-relay/internal/domain/ports/adapter"
	"avito-telegram-relay/internal/infra/i18n"
	"avito-telegram-relay/internal/infra/memory"
)

// ---- Mock MarketplaceAdapter ----

type MockMarket struct {
	mu sync.Mutex

	Owner            string
	AcquireTokenFunc func(ctx context.Context) (string, error)
	ListChatsFunc    func(ctx context.Context, token string) ([]model.Chat, error)
	ListMessagesFunc func(ctx context.Context, token, chatID string) ([]model.ChatMessage, error)
	SendMessageFunc  func(ctx context.Context, token, chatID, text string) error

	TokenCalls int
	Sent       []struct{ ChatID, Text string }
}

var _ adapter.MarketplaceAdapter = (*MockMarket)(nil)

func (m *MockMarket) AccountID() string { return m.Owner }

func (m *MockMarket) AcquireToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	m.TokenCalls++
	m.mu.Unlock()
	if m.AcquireTokenFunc != nil {
		return m.AcquireTokenFunc(ctx)
	}
	return "token", nil
}

func (m *MockMarket) ListChats(ctx context.Context, token string) ([]model.Chat, error) {
	if m.ListChatsFunc != nil {
		return m.ListChatsFunc(ctx, token)
	}
	return nil, nil
}

func (m *MockMarket) ListMessages(ctx context.Context, token, chatID string) ([]model.ChatMessage, error) {
	if m.ListMessagesFunc != nil {
		return m.ListMessagesFunc(ctx, token, chatID)
	}
	return nil, nil
}

func (m *MockMarket) SendMessage(ctx context.Context, token, chatID, text string) error {
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(ctx, token, chatID, text)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, struct{ ChatID, Text string }{chatID, text})
	return nil
}

func failingToken(ctx context.Context) (string, error) {
	return "", errors.Join(domain.ErrAuth, errors.New("status 401"))
}

// ---- Mock TelegramBotAdapter ----

type SentMessage struct {
	ChatID int64
	Text   string
	HTML   bool
	Rows   [][]adapter.InlineButton
}

type MockTelegramBot struct {
	mu   sync.Mutex
	Sent []SentMessage

	SendHTMLFunc func(ctx context.Context, chatID int64, html string) error
}

var _ adapter.TelegramBotAdapter = (*MockTelegramBot)(nil)

func (m *MockTelegramBot) record(s SentMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, s)
}

func (m *MockTelegramBot) SendMessage(ctx context.Context, chatID int64, text string) error {
	m.record(SentMessage{ChatID: chatID, Text: text})
	return nil
}

func (m *MockTelegramBot) SendHTML(ctx context.Context, chatID int64, html string, rows [][]adapter.InlineButton) error {
	if m.SendHTMLFunc != nil {
		if err := m.SendHTMLFunc(ctx, chatID, html); err != nil {
			return err
		}
	}
	m.record(SentMessage{ChatID: chatID, Text: html, HTML: true, Rows: rows})
	return nil
}

func (m *MockTelegramBot) htmlCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.Sent {
		if s.HTML {
			n++
		}
	}
	return n
}

func (m *MockTelegramBot) plain() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, s := range m.Sent {
		if !s.HTML {
			out = append(out, s.Text)
		}
	}
	return out
}

// ---- helpers ----

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func newTestTranslator(t *testing.T) *i18n.Translator {
	t.Helper()
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		t.Fatalf("translator: %v", err)
	}
	return tr
}

func newTestTracker(t *testing.T, watermark int64) *Tracker {
	t.Helper()
	seen, err := memory.NewSeenStore(100)
	if err != nil {
		t.Fatalf("seen store: %v", err)
	}
	return NewTracker(seen, watermark)
}

func inboundChat(id, msgID string, created int64) model.Chat {
	return model.Chat{
		ID:           id,
		ListingID:    "555",
		ListingTitle: "Laptop",
		Users: []model.ChatUser{
			{ID: "1", Name: "Owner", PublicKey: "owner-pk"},
			{ID: "2", Name: "Buyer", PublicKey: "buyer-pk"},
		},
		LastMessage: &model.ChatMessage{ID: msgID, AuthorID: "2", Created: created, Direction: model.DirectionIn, Text: "is it available?"},
	}
}

func outboundChat(id, msgID string, created int64) model.Chat {
	c := inboundChat(id, msgID, created)
	c.LastMessage.Direction = model.DirectionOut
	c.LastMessage.AuthorID = "1"
	return c
}
