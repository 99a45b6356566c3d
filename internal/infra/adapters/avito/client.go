package avito

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"avito-telegram-relay/internal/config"
	"avito-telegram-relay/internal/domain"
	"avito-telegram-relay/internal/domain/model"
	"avito-telegram-relay/internal/domain/ports/adapter"
	"avito-telegram-relay/internal/infra/logging"
	"avito-telegram-relay/internal/infra/metrics"
)

// Compile-time check
var _ adapter.MarketplaceAdapter = (*Client)(nil)

const (
	tokenScope   = "messenger"
	historyLimit = 50
	maxBodyBytes = 4 << 20
)

// Client talks to the Avito messenger API. It holds no token state: callers
// acquire a fresh token each cycle.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	accountID    string
	http         *http.Client
	log          *zerolog.Logger
	dev          bool
}

func NewClient(cfg *config.AvitoConfig, logger *zerolog.Logger, dev bool) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("avito config is nil")
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.UserID == "" {
		return nil, fmt.Errorf("avito credentials: %w", domain.ErrInvalidArgument)
	}
	if logger == nil {
		logger = logging.Nop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	l := logger.With().Str("component", "AvitoClient").Logger()
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		accountID:    cfg.UserID,
		http:         &http.Client{Timeout: timeout},
		log:          &l,
		dev:          dev,
	}, nil
}

func (c *Client) AccountID() string { return c.accountID }

// AcquireToken exchanges the client credentials for a bearer token.
func (c *Client) AcquireToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("scope", tokenScope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrAuth, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	status, body, err := c.do(req, "token")
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrAuth, err)
	}
	if status/100 != 2 {
		return "", fmt.Errorf("%w: status %d: %s", domain.ErrAuth, status, snippet(body))
	}
	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("%w: decode: %v", domain.ErrAuth, err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access_token", domain.ErrAuth)
	}
	c.log.Debug().Str("token", logging.Redact(tr.AccessToken, c.dev)).Msg("avito token acquired")
	return tr.AccessToken, nil
}

// ListChats returns one page of conversation summaries with their last message.
func (c *Client) ListChats(ctx context.Context, token string) ([]model.Chat, error) {
	u := fmt.Sprintf("%s/messenger/v2/accounts/%s/chats", c.baseURL, url.PathEscape(c.accountID))
	req, err := c.authed(ctx, http.MethodGet, u, token, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetch, err)
	}
	status, body, err := c.do(req, "chats")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetch, err)
	}
	if status/100 != 2 {
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrFetch, status, snippet(body))
	}
	var resp chatsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrFetch, err)
	}
	chats := make([]model.Chat, 0, len(resp.Chats))
	for _, ch := range resp.Chats {
		chats = append(chats, ch.toModel())
	}
	return chats, nil
}

// ListMessages fetches a single page of a conversation's messages.
func (c *Client) ListMessages(ctx context.Context, token, chatID string) ([]model.ChatMessage, error) {
	if strings.TrimSpace(chatID) == "" {
		return nil, fmt.Errorf("chat id: %w", domain.ErrInvalidArgument)
	}
	u := fmt.Sprintf("%s/messenger/v3/accounts/%s/chats/%s/messages?limit=%d",
		c.baseURL, url.PathEscape(c.accountID), url.PathEscape(chatID), historyLimit)
	req, err := c.authed(ctx, http.MethodGet, u, token, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCommand, err)
	}
	status, body, err := c.do(req, "messages")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCommand, err)
	}
	if status/100 != 2 {
		c.log.Error().Int("status", status).Str("body", snippet(body)).Str("chat_id", chatID).Msg("avito history request failed")
		return nil, fmt.Errorf("%w: history status %d", domain.ErrCommand, status)
	}
	dtos, err := decodeMessages(body)
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrCommand, err)
	}
	out := make([]model.ChatMessage, 0, len(dtos))
	for i := range dtos {
		out = append(out, *dtos[i].toModel())
	}
	return out, nil
}

// SendMessage posts a text message into the conversation.
func (c *Client) SendMessage(ctx context.Context, token, chatID, text string) error {
	if strings.TrimSpace(chatID) == "" || strings.TrimSpace(text) == "" {
		return fmt.Errorf("chat id and text: %w", domain.ErrInvalidArgument)
	}
	var payload sendRequest
	payload.Content.Type = "text"
	payload.Content.Text = text
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", domain.ErrCommand, err)
	}

	u := fmt.Sprintf("%s/messenger/v1/accounts/%s/chats/%s/messages",
		c.baseURL, url.PathEscape(c.accountID), url.PathEscape(chatID))
	req, err := c.authed(ctx, http.MethodPost, u, token, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCommand, err)
	}
	req.Header.Set("Content-Type", "application/json")

	status, body, err := c.do(req, "send")
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCommand, err)
	}
	if status/100 != 2 {
		c.log.Error().Int("status", status).Str("body", snippet(body)).Str("chat_id", chatID).Msg("avito send failed")
		return fmt.Errorf("%w: send status %d", domain.ErrCommand, status)
	}
	return nil
}

func (c *Client) authed(ctx context.Context, method, u, token string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do executes req and returns status and body. Transport errors are recorded with status 0.
func (c *Client) do(req *http.Request, endpoint string) (int, []byte, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveAvitoCall(endpoint, 0, time.Since(start))
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	metrics.ObserveAvitoCall(endpoint, resp.StatusCode, time.Since(start))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read body: %w", err)
	}
	c.log.Trace().Str("endpoint", endpoint).Int("status", resp.StatusCode).Str("body", snippet(body)).Msg("avito response")
	return resp.StatusCode, body, nil
}
