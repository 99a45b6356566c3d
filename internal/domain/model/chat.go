package model

// Direction values reported by the messenger API.
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// ChatUser is a conversation participant.
type ChatUser struct {
	ID        string
	Name      string
	PublicKey string
}

// ChatMessage is a single message as returned by the chat list (as last_message)
// or by the message list of a conversation.
type ChatMessage struct {
	ID        string
	AuthorID  string
	Created   int64
	Direction string
	Text      string
}

// Chat is a conversation summary from the chat list.
type Chat struct {
	ID           string
	Users        []ChatUser
	ListingID    string
	ListingTitle string
	LastMessage  *ChatMessage
}

// Counterpart returns the first participant that is not the account owner.
func (c *Chat) Counterpart(ownerID string) (ChatUser, bool) {
	for _, u := range c.Users {
		if u.ID != ownerID {
			return u, true
		}
	}
	return ChatUser{}, false
}
