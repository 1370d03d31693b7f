// Package storage defines the device-local key-value store the overlay and
// favorites persist through. The surface is deliberately tiny: a handful of
// named keys holding opaque snapshot blobs, the way a mobile client treats
// its local storage.
package storage

import "context"

// KV is a device-local key-value store.
//
// Get returns errors.ErrNotFound (possibly wrapped) when the key has never
// been written. Delete of an absent key is a no-op.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Well-known keys. The names are part of the persisted format and must not
// change without a migration.
const (
	// KeyFavorites holds the favorites snapshot list.
	KeyFavorites = "savedEvents"

	// KeyEdits holds the overlay's per-event field patches.
	KeyEdits = "editedEvents"

	// KeyTombstones holds the overlay's deleted seed-event ids.
	KeyTombstones = "deletedEvents"

	// KeyGuestSession holds the signed guest session token.
	KeyGuestSession = "guestSession"
)
