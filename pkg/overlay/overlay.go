// Package overlay persists the device-local modifications to the seed
// catalog: sparse field edits and tombstones for deleted seed events. The
// seed itself ships read-only inside the binary; this overlay is the only
// place a seed event ever changes, and it changes only on this device.
package overlay

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/spotonhq/spoton/pkg/errors"
	"github.com/spotonhq/spoton/pkg/events"
	"github.com/spotonhq/spoton/pkg/logging"
	"github.com/spotonhq/spoton/pkg/storage"
)

// State is the overlay's full persisted content, shaped for the merge
// engine. Both maps are never nil.
type State struct {
	Tombstones map[string]bool
	Edits      map[string]events.Patch
}

func emptyState() State {
	return State{
		Tombstones: make(map[string]bool),
		Edits:      make(map[string]events.Patch),
	}
}

// Store reads and writes the overlay through the device KV store.
// A mutex serializes read-modify-write cycles within this process.
type Store struct {
	mu sync.Mutex
	kv storage.KV
}

// New creates an overlay store on top of the given KV store.
func New(kv storage.KV) *Store {
	return &Store{kv: kv}
}

// Load returns the current overlay state. Missing keys mean a first run
// and corrupt snapshots mean a wiped cache; both degrade to an empty
// overlay rather than failing the catalog.
func (s *Store) Load(ctx context.Context) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Store) load(ctx context.Context) State {
	state := emptyState()

	if data, err := s.kv.Get(ctx, storage.KeyTombstones); err == nil {
		var ids []string
		if err := json.Unmarshal(data, &ids); err != nil {
			logging.Ctx(ctx).Warn().Err(err).
				Str("key", storage.KeyTombstones).
				Msg("Corrupt tombstone snapshot, starting empty")
		} else {
			for _, id := range ids {
				state.Tombstones[id] = true
			}
		}
	} else if !errors.IsNotFound(err) {
		logging.Ctx(ctx).Warn().Err(err).
			Str("key", storage.KeyTombstones).
			Msg("Unreadable tombstone snapshot, starting empty")
	}

	if data, err := s.kv.Get(ctx, storage.KeyEdits); err == nil {
		var edits map[string]events.Patch
		if err := json.Unmarshal(data, &edits); err != nil {
			logging.Ctx(ctx).Warn().Err(err).
				Str("key", storage.KeyEdits).
				Msg("Corrupt edit snapshot, starting empty")
		} else {
			state.Edits = edits
		}
	} else if !errors.IsNotFound(err) {
		logging.Ctx(ctx).Warn().Err(err).
			Str("key", storage.KeyEdits).
			Msg("Unreadable edit snapshot, starting empty")
	}

	if state.Edits == nil {
		state.Edits = make(map[string]events.Patch)
	}
	return state
}

// RecordEdit merges a patch into the stored edits for an event and
// persists the whole edit map. Later patches win per field; fields the
// new patch leaves alone keep their earlier overrides. An empty patch is
// rejected.
func (s *Store) RecordEdit(ctx context.Context, eventID string, patch events.Patch) error {
	if eventID == "" {
		return errors.NewValidationError("eventID", eventID, "event id is required")
	}
	if patch.IsZero() {
		return errors.NewValidationError("patch", patch, "patch overrides no fields")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.load(ctx)
	state.Edits[eventID] = state.Edits[eventID].Merge(patch)

	data, err := json.Marshal(state.Edits)
	if err != nil {
		return errors.WrapParse("json", storage.KeyEdits, err)
	}
	if err := s.kv.Set(ctx, storage.KeyEdits, data); err != nil {
		return errors.WrapStorage("set", storage.KeyEdits, err)
	}

	logging.Ctx(ctx).Debug().Str("event_id", eventID).Msg("Recorded local edit")
	return nil
}

// RecordDeletion adds a tombstone for a seed event. Recording the same
// tombstone twice is a no-op.
func (s *Store) RecordDeletion(ctx context.Context, eventID string) error {
	if eventID == "" {
		return errors.NewValidationError("eventID", eventID, "event id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.load(ctx)
	if state.Tombstones[eventID] {
		return nil
	}
	state.Tombstones[eventID] = true

	ids := make([]string, 0, len(state.Tombstones))
	for id := range state.Tombstones {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	data, err := json.Marshal(ids)
	if err != nil {
		return errors.WrapParse("json", storage.KeyTombstones, err)
	}
	if err := s.kv.Set(ctx, storage.KeyTombstones, data); err != nil {
		return errors.WrapStorage("set", storage.KeyTombstones, err)
	}

	logging.Ctx(ctx).Debug().Str("event_id", eventID).Msg("Recorded tombstone")
	return nil
}
