package avito

import (
	"bytes"
	"encoding/json"
	"strconv"

	"avito-telegram-relay/internal/domain/model"
)

// flexID accepts ids the API sends either as JSON numbers or strings.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

type messageContent struct {
	Text string `json:"text"`
}

type messageDTO struct {
	ID        flexID         `json:"id"`
	AuthorID  flexID         `json:"author_id"`
	Created   int64          `json:"created"`
	Direction string         `json:"direction"`
	Type      string         `json:"type"`
	Content   messageContent `json:"content"`
}

type userDTO struct {
	ID        flexID `json:"id"`
	Name      string `json:"name"`
	PublicKey string `json:"public_key"`
}

type chatDTO struct {
	ID      flexID `json:"id"`
	Context struct {
		Type  string `json:"type"`
		Value struct {
			ID    flexID `json:"id"`
			Title string `json:"title"`
		} `json:"value"`
	} `json:"context"`
	Users       []userDTO   `json:"users"`
	LastMessage *messageDTO `json:"last_message"`
}

type chatsResponse struct {
	Chats []chatDTO `json:"chats"`
}

type messagesResponse struct {
	Messages []messageDTO `json:"messages"`
}

type sendRequest struct {
	Content struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (m *messageDTO) toModel() *model.ChatMessage {
	if m == nil {
		return nil
	}
	return &model.ChatMessage{
		ID:        string(m.ID),
		AuthorID:  string(m.AuthorID),
		Created:   m.Created,
		Direction: m.Direction,
		Text:      m.Content.Text,
	}
}

func (c chatDTO) toModel() model.Chat {
	users := make([]model.ChatUser, 0, len(c.Users))
	for _, u := range c.Users {
		pk := u.PublicKey
		if pk == "" {
			pk = model.UnknownValue
		}
		users = append(users, model.ChatUser{ID: string(u.ID), Name: u.Name, PublicKey: pk})
	}
	listingID := string(c.Context.Value.ID)
	if listingID == "" {
		listingID = model.UnknownValue
	}
	return model.Chat{
		ID:           string(c.ID),
		Users:        users,
		ListingID:    listingID,
		ListingTitle: c.Context.Value.Title,
		LastMessage:  c.LastMessage.toModel(),
	}
}

// decodeMessages accepts both {"messages":[...]} and a bare array.
func decodeMessages(b []byte) ([]messageDTO, error) {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var out []messageDTO
		err := json.Unmarshal(trimmed, &out)
		return out, err
	}
	var resp messagesResponse
	if err := json.Unmarshal(trimmed, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

func snippet(b []byte) string {
	const limit = 200
	if len(b) > limit {
		return string(b[:limit]) + "...(" + strconv.Itoa(len(b)) + " bytes)"
	}
	return string(b)
}
