package application_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"avito-telegram-relay/internal/application"
	"avito-telegram-relay/internal/domain"
	"avito-telegram-relay/internal/domain/model"
	"avito-telegram-relay/internal/infra/i18n"
	"avito-telegram-relay/internal/usecase"
)

// mockCommandUC records calls and returns canned results.
type mockCommandUC struct {
	replyErr   error
	history    []model.HistoryRecord
	historyErr error

	repliedID   string
	repliedText string
}

func (m *mockCommandUC) History(ctx context.Context, conversationID string) ([]model.HistoryRecord, error) {
	return m.history, m.historyErr
}

func (m *mockCommandUC) Reply(ctx context.Context, conversationID, text string) error {
	m.repliedID, m.repliedText = conversationID, text
	return m.replyErr
}

type fixedStatus usecase.TrackerSnapshot

func (s fixedStatus) Snapshot() usecase.TrackerSnapshot { return usecase.TrackerSnapshot(s) }

func newFacade(t *testing.T, cmd *mockCommandUC, status application.StatusSource) *application.BotFacade {
	t.Helper()
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		t.Fatalf("translator: %v", err)
	}
	logger := zerolog.New(io.Discard)
	return application.NewBotFacade(cmd, status, tr, &logger)
}

func TestHandleReply(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name string
		args string
		err  error
		want string
	}{
		{"success", "u2i-1 hello there", nil, "✅ Reply sent to chat u2i-1"},
		{"missing text", "u2i-1", nil, "Usage: /reply <chat_id> <text>"},
		{"empty", "", nil, "Usage: /reply <chat_id> <text>"},
		{"token failure", "u2i-1 hi", fmt.Errorf("token: %w", domain.ErrAuth), "⚠️ Could not obtain an Avito token."},
		{"vendor failure", "u2i-1 hi", fmt.Errorf("%w: status 500", domain.ErrCommand), "❌ Failed to send the reply to Avito. Check the log."},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cmd := &mockCommandUC{replyErr: c.err}
			f := newFacade(t, cmd, nil)
			if got := f.HandleReply(ctx, c.args); got != c.want {
				t.Fatalf("HandleReply(%q) = %q, want %q", c.args, got, c.want)
			}
		})
	}

	split := []struct {
		args, id, text string
	}{
		{"u2i-1  hello  there ", "u2i-1", "hello  there"},
		{"u2i-1\nhello there", "u2i-1", "hello there"},
		{"u2i-1\thello\nthere", "u2i-1", "hello\nthere"},
		{" \nu2i-1 \t hi", "u2i-1", "hi"},
	}
	for _, c := range split {
		cmd := &mockCommandUC{}
		newFacade(t, cmd, nil).HandleReply(ctx, c.args)
		if cmd.repliedID != c.id || cmd.repliedText != c.text {
			t.Fatalf("HandleReply(%q) args = %q %q, want %q %q", c.args, cmd.repliedID, cmd.repliedText, c.id, c.text)
		}
	}
}

func TestHandleHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("records", func(t *testing.T) {
		cmd := &mockCommandUC{history: []model.HistoryRecord{
			{Time: "10:00 01.02.2024", Sender: "Buyer", Text: "hi"},
			{Time: "10:05 01.02.2024", Sender: "You", Text: "hello"},
		}}
		out := newFacade(t, cmd, nil).HandleHistory(ctx, "u2i-1")
		if len(out) != 1 {
			t.Fatalf("chunks = %d", len(out))
		}
		want := "Conversation history for chat u2i-1:\n" +
			"🕒 10:00 01.02.2024 | From: Buyer | Message: hi\n" +
			"🕒 10:05 01.02.2024 | From: You | Message: hello"
		if out[0] != want {
			t.Fatalf("got %q", out[0])
		}
	})

	t.Run("empty", func(t *testing.T) {
		out := newFacade(t, &mockCommandUC{history: []model.HistoryRecord{}}, nil).HandleHistory(ctx, "u2i-1")
		if len(out) != 1 || out[0] != "No messages in chat u2i-1." {
			t.Fatalf("got %q", out)
		}
	})

	t.Run("failure", func(t *testing.T) {
		out := newFacade(t, &mockCommandUC{historyErr: errors.New("status 404")}, nil).HandleHistory(ctx, "u2i-1")
		if !strings.Contains(out[0], "Could not load the history of chat u2i-1") {
			t.Fatalf("got %q", out)
		}
	})

	t.Run("token failure", func(t *testing.T) {
		out := newFacade(t, &mockCommandUC{historyErr: domain.ErrAuth}, nil).HandleHistory(ctx, "u2i-1")
		if out[0] != "⚠️ Could not obtain an Avito token." {
			t.Fatalf("got %q", out)
		}
	})

	t.Run("usage", func(t *testing.T) {
		out := newFacade(t, &mockCommandUC{}, nil).HandleHistory(ctx, "")
		if out[0] != "Usage: /history <chat_id>" {
			t.Fatalf("got %q", out)
		}
	})

	t.Run("long history is split", func(t *testing.T) {
		var recs []model.HistoryRecord
		for i := 0; i < 200; i++ {
			recs = append(recs, model.HistoryRecord{Time: "10:00 01.02.2024", Sender: "Buyer", Text: strings.Repeat("x", 50)})
		}
		out := newFacade(t, &mockCommandUC{history: recs}, nil).HandleHistory(ctx, "u2i-1")
		if len(out) < 2 {
			t.Fatalf("expected several chunks, got %d", len(out))
		}
		for _, chunk := range out {
			if utf8.RuneCountInString(chunk) > application.MaxMessageLength {
				t.Fatalf("chunk too long: %d", utf8.RuneCountInString(chunk))
			}
		}
	})
}

func TestSplitMessage(t *testing.T) {
	if got := application.SplitMessage("short", 10); len(got) != 1 || got[0] != "short" {
		t.Fatalf("short text: %q", got)
	}

	got := application.SplitMessage("aaaa\nbbbb\ncccc", 9)
	want := []string{"aaaa\nbbbb", "cccc"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("got %q, want %q", got, want)
	}

	got = application.SplitMessage("ééééééé", 3)
	want = []string{"ééé", "ééé", "é"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestHandleStatus(t *testing.T) {
	f := newFacade(t, &mockCommandUC{}, fixedStatus{
		State:        usecase.StateDegraded,
		Watermark:    0,
		Seen:         12,
		AuthFailures: 2,
	})

	out := f.HandleStatus()

	for _, want := range []string{"degraded", "03:00 01.01.1970", "Message ids in memory: 12", "Consecutive token failures: 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("status %q missing %q", out, want)
		}
	}
}

func TestHandleReplyPrompt(t *testing.T) {
	out := newFacade(t, &mockCommandUC{}, nil).HandleReplyPrompt("u2i-9")
	if !strings.Contains(out, "/reply u2i-9 <your message>") {
		t.Fatalf("got %q", out)
	}
}
