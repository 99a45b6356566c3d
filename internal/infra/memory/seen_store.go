package memory

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"avito-telegram-relay/internal/domain/ports/repository"
)

var _ repository.SeenStore = (*SeenStore)(nil)

// SeenStore is a size-capped set of message ids. Once full, the least
// recently added id is evicted.
type SeenStore struct {
	cache *lru.Cache[string, struct{}]
}

func NewSeenStore(capacity int) (*SeenStore, error) {
	c, err := lru.New[string, struct{}](capacity)
	if err != nil {
		return nil, fmt.Errorf("seen store: %w", err)
	}
	return &SeenStore{cache: c}, nil
}

// Contains reports whether id was added and not yet evicted. It does not
// refresh the entry's recency.
func (s *SeenStore) Contains(messageID string) bool {
	return s.cache.Contains(messageID)
}

func (s *SeenStore) Add(messageID string) {
	s.cache.Add(messageID, struct{}{})
}

func (s *SeenStore) Len() int {
	return s.cache.Len()
}
