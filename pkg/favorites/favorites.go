// Package favorites keeps the user's saved events as full snapshots under
// one storage key, independent of the live catalog: a favorited event stays
// renderable exactly as saved even after the source event changes or
// disappears. Mutations broadcast the complete updated list to subscribers.
package favorites

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/spotonhq/spoton/pkg/errors"
	"github.com/spotonhq/spoton/pkg/events"
	"github.com/spotonhq/spoton/pkg/logging"
	"github.com/spotonhq/spoton/pkg/storage"
)

// subscriberBuffer is the channel depth per subscriber. A subscriber that
// falls further behind misses broadcasts instead of blocking mutations.
const subscriberBuffer = 8

// Store is the favorites store. Safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	kv     storage.KV
	subs   map[int]chan []events.Event
	nextID int
}

// New creates a favorites store on top of the given KV store.
func New(kv storage.KV) *Store {
	return &Store{
		kv:   kv,
		subs: make(map[int]chan []events.Event),
	}
}

// List returns the current favorites snapshot. A missing or corrupt
// snapshot reads as empty.
func (s *Store) List(ctx context.Context) []events.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Store) load(ctx context.Context) []events.Event {
	data, err := s.kv.Get(ctx, storage.KeyFavorites)
	if err != nil {
		if !errors.IsNotFound(err) {
			logging.Ctx(ctx).Warn().Err(err).
				Str("key", storage.KeyFavorites).
				Msg("Unreadable favorites snapshot, starting empty")
		}
		return nil
	}

	var list []events.Event
	if err := json.Unmarshal(data, &list); err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Str("key", storage.KeyFavorites).
			Msg("Corrupt favorites snapshot, starting empty")
		return nil
	}
	return list
}

// IsFavorite reports whether the event id is currently saved.
func (s *Store) IsFavorite(ctx context.Context, eventID string) bool {
	for _, e := range s.List(ctx) {
		if e.ID == eventID {
			return true
		}
	}
	return false
}

// Toggle adds the event to the favorites if absent and removes it if
// present, returning whether the event is saved afterwards. The snapshot
// is persisted before subscribers hear about it; a persistence failure
// leaves the stored list untouched and broadcasts nothing.
func (s *Store) Toggle(ctx context.Context, event events.Event) (bool, error) {
	if event.ID == "" {
		return false, errors.NewValidationError("id", event.ID, "event id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.load(ctx)
	updated := make([]events.Event, 0, len(list)+1)
	saved := true
	for _, e := range list {
		if e.ID == event.ID {
			saved = false
			continue
		}
		updated = append(updated, e)
	}
	if saved {
		updated = append(updated, event)
	}

	if err := s.persist(ctx, updated); err != nil {
		return false, err
	}

	s.broadcast(updated)
	return saved, nil
}

// Remove deletes the event from the favorites. Removing an absent event
// is a no-op and broadcasts nothing.
func (s *Store) Remove(ctx context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.load(ctx)
	updated := make([]events.Event, 0, len(list))
	found := false
	for _, e := range list {
		if e.ID == eventID {
			found = true
			continue
		}
		updated = append(updated, e)
	}
	if !found {
		return nil
	}

	if err := s.persist(ctx, updated); err != nil {
		return err
	}

	s.broadcast(updated)
	return nil
}

func (s *Store) persist(ctx context.Context, list []events.Event) error {
	data, err := json.Marshal(list)
	if err != nil {
		return errors.WrapParse("json", storage.KeyFavorites, err)
	}
	if err := s.kv.Set(ctx, storage.KeyFavorites, data); err != nil {
		return errors.WrapStorage("set", storage.KeyFavorites, err)
	}
	return nil
}

// Subscribe registers for full-list broadcasts. Every successful mutation
// delivers the complete updated list. The returned cancel func is
// idempotent and stops delivery deterministically; after it returns the
// channel is closed.
func (s *Store) Subscribe() (<-chan []events.Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan []events.Event, subscriberBuffer)
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// broadcast delivers the updated list to every subscriber. Callers hold mu.
func (s *Store) broadcast(list []events.Event) {
	for _, ch := range s.subs {
		// Each subscriber gets its own copy; receivers may mutate freely.
		snapshot := make([]events.Event, len(list))
		copy(snapshot, list)
		select {
		case ch <- snapshot:
		default:
			// Full buffer: subscriber misses this update.
		}
	}
}
