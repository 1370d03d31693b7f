// Package events defines the canonical event model shared by the catalog
// merge engine, the local overlay, favorites, tickets, and reviews. Events
// arrive from two origins: the immutable seed catalog embedded in the binary
// and the live remote document store. The loosely-shaped remote documents are
// normalized into this one type at the boundary.
package events

import (
	"fmt"
	"strings"
	"time"

	"github.com/agentstation/utc"

	"github.com/spotonhq/spoton/pkg/errors"
)

// Origin identifies where an event came from.
type Origin string

const (
	// OriginSeed marks events from the embedded seed catalog. Seed events
	// are immutable at the source; edits and deletions live in the overlay.
	OriginSeed Origin = "seed"

	// OriginRemote marks events from the remote document store.
	OriginRemote Origin = "remote"
)

// SeedIDPrefix prefixes every seed catalog id. Remote ids are store-assigned
// UUIDs, so the two id namespaces never collide.
const SeedIDPrefix = "seed-"

// DisplayDateLayout is the date form events carry end to end, e.g.
// "Nov 17, 2025". Dates stay display strings; parse on demand.
const DisplayDateLayout = "Jan 2, 2006"

// Event is the canonical catalog entry.
type Event struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Date        string   `json:"date" yaml:"date"`
	Location    string   `json:"location" yaml:"location"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Price       float64  `json:"price" yaml:"price"`
	Organizer   string   `json:"organized_by,omitempty" yaml:"organized_by,omitempty"`
	Image       string   `json:"image,omitempty" yaml:"image,omitempty"`
	Duration    string   `json:"duration,omitempty" yaml:"duration,omitempty"`
	Status      string   `json:"status,omitempty" yaml:"status,omitempty"`
	Attendees   int      `json:"attendees,omitempty" yaml:"attendees,omitempty"`
	Origin      Origin   `json:"origin,omitempty" yaml:"-"`
	OwnerID     string   `json:"ownerId,omitempty" yaml:"-"`
	Quantity    *int     `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	Sold        int      `json:"sold,omitempty" yaml:"sold,omitempty"`
	CreatedAt   utc.Time `json:"createdAt,omitzero" yaml:"-"`
}

// IsSeed reports whether the event belongs to the seed catalog. The id
// prefix is authoritative; Origin is a convenience stamp set during merge.
func (e Event) IsSeed() bool {
	return strings.HasPrefix(e.ID, SeedIDPrefix)
}

// Remaining returns the remaining ticket inventory. An absent quantity
// means unlimited, reported as -1.
func (e Event) Remaining() int {
	if e.Quantity == nil {
		return -1
	}
	return *e.Quantity
}

// Day parses the event's display date. Unparsable dates are validation
// errors; callers that only display the event never hit this path.
func (e Event) Day() (time.Time, error) {
	t, err := time.Parse(DisplayDateLayout, e.Date)
	if err != nil {
		return time.Time{}, errors.NewValidationError("date", e.Date,
			fmt.Sprintf("not a display date like %q", "Nov 17, 2025"))
	}
	return t, nil
}

// Validate checks the fields every event needs regardless of origin.
func (e Event) Validate() error {
	if e.ID == "" {
		return errors.NewValidationError("id", e.ID, "id is required")
	}
	if e.Name == "" {
		return errors.NewValidationError("name", e.Name, "name is required")
	}
	if e.Date == "" {
		return errors.NewValidationError("date", e.Date, "date is required")
	}
	if e.Location == "" {
		return errors.NewValidationError("location", e.Location, "location is required")
	}
	if e.Price < 0 {
		return errors.NewValidationError("price", e.Price, "price cannot be negative")
	}
	return nil
}

// Review is one user's review of one event. The store holds at most one
// review per (event, user) pair, enforced by query before write.
type Review struct {
	ID        string   `json:"id"`
	EventID   string   `json:"eventId"`
	UserID    string   `json:"userId"`
	Rating    int      `json:"rating"`
	Comment   string   `json:"comment,omitempty"`
	CreatedAt utc.Time `json:"createdAt,omitzero"`
}

// Validate checks review fields before submission.
func (r Review) Validate() error {
	if r.EventID == "" {
		return errors.NewValidationError("eventId", r.EventID, "event id is required")
	}
	if r.UserID == "" {
		return errors.NewValidationError("userId", r.UserID, "user id is required")
	}
	if r.Rating < 1 || r.Rating > 5 {
		return errors.NewValidationError("rating", r.Rating, "rating must be between 1 and 5")
	}
	return nil
}
