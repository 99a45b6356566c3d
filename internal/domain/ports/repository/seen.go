package repository

// SeenStore remembers relayed message ids. Implementations may evict old ids.
type SeenStore interface {
	Contains(messageID string) bool
	Add(messageID string)
	Len() int
}
