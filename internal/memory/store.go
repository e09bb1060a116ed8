// Package memory provides the bounded, thread-safe in-memory conversation
// store. Each conversation identifier maps to a window of recent turns,
// capacity-bounded with FIFO eviction. State does not survive a restart.
package memory

import (
	"sync"

	"github.com/haasonsaas/medassist/pkg/models"
)

// DefaultCapacity is the number of turns retained per conversation.
const DefaultCapacity = 5

// Store keeps the most recent turns per conversation identifier. All methods
// are safe for concurrent use; a single coarse mutex serializes mutations,
// which is sufficient at front-desk call volumes.
type Store struct {
	mu       sync.Mutex
	capacity int
	windows  map[string][]models.Turn
}

// NewStore creates a store retaining up to capacity turns per conversation.
// A non-positive capacity falls back to DefaultCapacity.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		capacity: capacity,
		windows:  make(map[string][]models.Turn),
	}
}

// Capacity returns the per-conversation window size.
func (s *Store) Capacity() int {
	return s.capacity
}

// Get returns a snapshot copy of the current window for the conversation,
// or an empty slice when the identifier is unknown.
func (s *Store) Get(conversationID string) []models.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	window := s.windows[conversationID]
	out := make([]models.Turn, len(window))
	copy(out, window)
	return out
}

// Replace atomically sets the conversation window to the given turns,
// truncated from the front when longer than the capacity. Callers use this
// to resync server-side state from client-supplied history.
func (s *Store) Replace(conversationID string, turns []models.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	window := make([]models.Turn, len(turns))
	copy(window, turns)
	s.windows[conversationID] = trim(window, s.capacity)
}

// Append atomically appends turns to the existing (or newly created) window,
// evicting the oldest entries beyond capacity. A single call is never
// interleaved with another writer's turns.
func (s *Store) Append(conversationID string, turns ...models.Turn) {
	if len(turns) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	window := append(s.windows[conversationID], turns...)
	s.windows[conversationID] = trim(window, s.capacity)
}

// Clear removes all state for the conversation. No-op when absent.
func (s *Store) Clear(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.windows, conversationID)
}

// trim keeps the most recent capacity turns.
func trim(turns []models.Turn, capacity int) []models.Turn {
	if len(turns) <= capacity {
		return turns
	}
	return turns[len(turns)-capacity:]
}
