package memory

import (
	"context"
	"sync"

	"github.com/omarshaarawi/f1bot/internal/models"
)

type slotKey struct {
	chatID int64
	view   models.View
}

type slot struct {
	seq    uint64
	cancel context.CancelFunc
	key    models.SeasonKey
	value  any
	loaded bool
}

// Ticket identifies one fetch cycle for a chat's view. Only the most recent
// ticket for a (chat, view) pair may commit.
type Ticket struct {
	ChatID int64
	View   models.View
	Key    models.SeasonKey
	seq    uint64
}

// Repository holds each chat's per-view display state. Starting a new fetch
// cycle cancels the previous in-flight one for the same view.
type Repository struct {
	slots map[slotKey]*slot
	// seq is shared by every slot and only grows, so a ticket issued before
	// Clear can never match a slot created after it.
	seq uint64
	mu  sync.RWMutex
}

func NewRepository() *Repository {
	return &Repository{slots: make(map[slotKey]*slot)}
}

func (r *Repository) Begin(ctx context.Context, chatID int64, view models.View, key models.SeasonKey) (context.Context, Ticket) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := slotKey{chatID: chatID, view: view}
	s, ok := r.slots[k]
	if !ok {
		s = &slot{}
		r.slots[k] = s
	}
	if s.cancel != nil {
		s.cancel()
	}

	cycleCtx, cancel := context.WithCancel(ctx)
	r.seq++
	s.seq = r.seq
	s.cancel = cancel

	return cycleCtx, Ticket{ChatID: chatID, View: view, Key: key, seq: s.seq}
}

// Commit stores value if ticket is still current and reports whether it did.
// A stale ticket never overwrites newer state.
func (r *Repository) Commit(ticket Ticket, value any) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[slotKey{chatID: ticket.ChatID, view: ticket.View}]
	if !ok || s.seq != ticket.seq {
		return false
	}

	s.key = ticket.Key
	s.value = value
	s.loaded = true
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	return true
}

// Abandon releases the ticket's context without storing anything.
func (r *Repository) Abandon(ticket Ticket) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[slotKey{chatID: ticket.ChatID, view: ticket.View}]
	if !ok || s.seq != ticket.seq || s.cancel == nil {
		return
	}
	s.cancel()
	s.cancel = nil
}

func (r *Repository) Get(chatID int64, view models.View) (any, models.SeasonKey, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.slots[slotKey{chatID: chatID, view: view}]
	if !ok || !s.loaded {
		return nil, models.SeasonKey{}, false
	}
	return s.value, s.key, true
}

// Clear drops a chat's state for every view and cancels in-flight work.
func (r *Repository) Clear(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k, s := range r.slots {
		if k.chatID != chatID {
			continue
		}
		if s.cancel != nil {
			s.cancel()
		}
		delete(r.slots, k)
	}
}
