package model

// UnknownValue marks identity or listing fields the marketplace did not return.
const UnknownValue = "unknown"

// InboundMessage is a buyer message selected for relay in one poll cycle.
// It is derived from the chat list every cycle and never persisted.
type InboundMessage struct {
	ConversationID  string
	MessageID       string
	SenderName      string
	SenderID        string
	SenderPublicKey string
	Body            string
	SentAt          int64 // unix seconds
	ListingTitle    string
	ListingID       string
}

// HistoryRecord is one rendered line of a conversation history.
type HistoryRecord struct {
	Time   string
	Sender string
	Text   string
}
