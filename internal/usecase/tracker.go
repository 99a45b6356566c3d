package usecase

import (
	"sync"

	"avito-telegram-relay/internal/domain/ports/repository"
	"avito-telegram-relay/internal/infra/metrics"
)

// State of the poll loop.
type State string

const (
	StatePolling  State = "polling"
	StateDegraded State = "degraded"
)

// TrackerSnapshot is a read-only copy of the tracker for status reporting.
type TrackerSnapshot struct {
	State        State
	Watermark    int64
	Seen         int
	AuthFailures int
	Pending      int
}

// Tracker owns the relay state that survives between poll cycles: the
// watermark, the seen-set, the consecutive token failure counter and the
// delivery attempts of messages that could not be pushed yet.
// Only the poll loop mutates it; Snapshot is safe from any goroutine.
type Tracker struct {
	mu           sync.RWMutex
	watermark    int64
	seen         repository.SeenStore
	authFailures int
	pending      map[string]int
}

func NewTracker(seen repository.SeenStore, initialWatermark int64) *Tracker {
	metrics.SetWatermark(initialWatermark)
	return &Tracker{
		watermark: initialWatermark,
		seen:      seen,
		pending:   make(map[string]int),
	}
}

func (t *Tracker) IsNew(messageID string) bool {
	return !t.seen.Contains(messageID)
}

// MarkSeen records a message as relayed and forgets its delivery attempts.
func (t *Tracker) MarkSeen(messageID string) {
	t.seen.Add(messageID)
	t.mu.Lock()
	delete(t.pending, messageID)
	t.mu.Unlock()
	metrics.SetSeenSetSize(t.seen.Len())
}

func (t *Tracker) Watermark() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.watermark
}

// Advance moves the watermark to w if w is ahead of it and returns the result.
func (t *Tracker) Advance(w int64) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if w > t.watermark {
		t.watermark = w
		metrics.SetWatermark(w)
	}
	return t.watermark
}

// RecordAuthFailure increments the consecutive failure counter and returns it.
func (t *Tracker) RecordAuthFailure() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.authFailures++
	return t.authFailures
}

func (t *Tracker) ResetAuthFailures() {
	t.mu.Lock()
	t.authFailures = 0
	t.mu.Unlock()
}

// RecordDeliveryFailure counts one failed delivery of messageID and returns
// the attempts made so far.
func (t *Tracker) RecordDeliveryFailure(messageID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending[messageID]++
	return t.pending[messageID]
}

// RetainPending forgets delivery attempts of messages outside keep, e.g. ones
// that are no longer the last message of their chat.
func (t *Tracker) RetainPending(keep map[string]struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id := range t.pending {
		if _, ok := keep[id]; !ok {
			delete(t.pending, id)
		}
	}
}

func (t *Tracker) Snapshot() TrackerSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	st := StatePolling
	if t.authFailures > 0 {
		st = StateDegraded
	}
	return TrackerSnapshot{
		State:        st,
		Watermark:    t.watermark,
		Seen:         t.seen.Len(),
		AuthFailures: t.authFailures,
		Pending:      len(t.pending),
	}
}
