// Package auth provides the principal model for event mutations. Most
// users are anonymous guests: the device mints a stable guest identity on
// first use and keeps it in a signed session token in local storage, so
// the same device owns the same remote events across sessions.
package auth

import (
	"context"

	"github.com/spotonhq/spoton/pkg/errors"
	"github.com/spotonhq/spoton/pkg/events"
)

// Principal is the identity performing an operation.
type Principal struct {
	ID        string
	Anonymous bool
}

// Authenticator resolves the current principal.
type Authenticator interface {
	Current(ctx context.Context) (Principal, error)
}

// CanModify checks whether a principal may mutate an event at its source.
// Seed events are read-only at the source for everyone; local edits and
// deletions go through the overlay instead. Remote events may only be
// mutated by their owner.
func CanModify(p Principal, e events.Event) error {
	if e.IsSeed() {
		return errors.ErrReadOnly
	}
	if p.ID == "" {
		return errors.NewPermissionError("", "event", e.ID, "no principal")
	}
	if e.OwnerID != p.ID {
		return errors.NewPermissionError(p.ID, "event", e.ID, "not the owner")
	}
	return nil
}
