package pipeline

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/leadlens/internal/conversation"
)

// Snapshot is one complete, read-only chat set.
type Snapshot struct {
	ID         uuid.UUID           `json:"id"`
	IngestedAt time.Time           `json:"ingested_at"`
	Chats      []conversation.Chat `json:"chats"`
}

// NewSnapshot stamps a chat set with a fresh id.
func NewSnapshot(chats []conversation.Chat) *Snapshot {
	return &Snapshot{
		ID:         uuid.New(),
		IngestedAt: time.Now().UTC(),
		Chats:      chats,
	}
}

var empty = &Snapshot{}

// Holder is the caller-held current snapshot. Replace swaps the whole set;
// readers see either the old set or the new one, never a mix.
type Holder struct {
	current atomic.Pointer[Snapshot]
}

// Load returns the current snapshot, or an empty one before any ingestion.
func (h *Holder) Load() *Snapshot {
	if s := h.current.Load(); s != nil {
		return s
	}
	return empty
}

// Replace installs s as the current snapshot.
func (h *Holder) Replace(s *Snapshot) {
	if s == nil {
		s = empty
	}
	h.current.Store(s)
}
