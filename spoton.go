// Package spoton is the client facade for the SpotOn event catalog: the
// embedded seed catalog, the device-local overlay of edits and tombstones,
// the favorites store, and the live remote event store, reconciled into one
// merged view with change hooks and a watch lifecycle.
package spoton

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/agentstation/utc"

	"github.com/spotonhq/spoton/pkg/auth"
	"github.com/spotonhq/spoton/pkg/catalog"
	"github.com/spotonhq/spoton/pkg/errors"
	"github.com/spotonhq/spoton/pkg/events"
	"github.com/spotonhq/spoton/pkg/favorites"
	"github.com/spotonhq/spoton/pkg/logging"
	"github.com/spotonhq/spoton/pkg/overlay"
	"github.com/spotonhq/spoton/pkg/remote"
	"github.com/spotonhq/spoton/pkg/reviews"
	"github.com/spotonhq/spoton/pkg/tickets"
)

// Client is the spoton facade.
type Client interface {
	// Catalog returns the current merged event view.
	Catalog(ctx context.Context) ([]events.Event, error)

	// Search filters the merged view by case-insensitive substring match
	// on name and location.
	Search(ctx context.Context, name, location string) ([]events.Event, error)

	// Event returns one event from the merged view.
	Event(ctx context.Context, id string) (events.Event, error)

	// CreateEvent stores a new remote event owned by the current
	// principal and returns its id.
	CreateEvent(ctx context.Context, event events.Event) (string, error)

	// UpdateEvent applies a patch to an event: seed events get a local
	// overlay edit, remote events an owner-checked store update.
	UpdateEvent(ctx context.Context, id string, patch events.Patch) error

	// DeleteEvent removes an event: seed events get a local tombstone,
	// remote events an owner-checked store delete.
	DeleteEvent(ctx context.Context, id string) error

	// ImportSeed copies the seed catalog into the remote store, skipping
	// events already present by (name, date). Idempotent.
	ImportSeed(ctx context.Context) (created, skipped int, err error)

	// Principal returns the current principal.
	Principal(ctx context.Context) (auth.Principal, error)

	// Favorites returns the favorites store.
	Favorites() *favorites.Store

	// Tickets returns the ticket updater.
	Tickets() *tickets.Updater

	// Reviews returns the review aggregator.
	Reviews() *reviews.Aggregator

	// WatchOn subscribes to the remote store and keeps the merged view
	// current, firing hooks on changes.
	WatchOn(ctx context.Context) error

	// WatchOff tears the subscription down. Safe to call twice.
	WatchOff()

	// OnEventAdded registers a callback for events appearing in the view.
	OnEventAdded(EventAddedHook)

	// OnEventUpdated registers a callback for events changing in the view.
	OnEventUpdated(EventUpdatedHook)

	// OnEventRemoved registers a callback for events leaving the view.
	OnEventRemoved(EventRemovedHook)

	// Close stops the watch.
	Close() error
}

// client is the internal implementation of the Client interface.
type client struct {
	mu     sync.RWMutex
	config *config

	seed      []events.Event
	overlay   *overlay.Store
	favorites *favorites.Store
	store     remote.DocumentStore
	adapter   *remote.CatalogAdapter
	auth      auth.Authenticator
	tickets   *tickets.Updater
	reviews   *reviews.Aggregator

	hooks *hooks

	// Watch state, guarded by mu.
	watching     bool
	watchCancel  func()
	watchDone    chan struct{}
	cachedRemote []events.Event

	// Last merged view, for hook diffing.
	lastView []events.Event
	hasView  bool
}

// New creates a Client with the given options. Without options it runs
// fully self-contained: embedded seed, in-memory KV and document stores,
// and a guest authenticator.
func New(opts ...Option) (Client, error) {
	c := &client{
		config: defaultConfig(),
		hooks:  newHooks(),
	}

	if err := c.options(opts...); err != nil {
		return nil, err
	}

	if c.config.seed != nil {
		c.seed = c.config.seed
	} else {
		seed, err := events.LoadSeed(c.config.seedFS)
		if err != nil {
			return nil, err
		}
		c.seed = seed
	}

	c.store = c.config.store
	c.adapter = remote.NewCatalogAdapter(c.store)
	c.overlay = overlay.New(c.config.kv)
	c.favorites = favorites.New(c.config.kv)
	c.tickets = tickets.New(c.store)
	c.reviews = reviews.New(c.store)

	if c.config.auth != nil {
		c.auth = c.config.auth
	} else {
		guest, err := auth.NewGuestAuthenticator(c.config.kv, c.config.sessionSecret)
		if err != nil {
			return nil, err
		}
		c.auth = guest
	}

	return c, nil
}

// Catalog returns the current merged event view.
func (c *client) Catalog(ctx context.Context) ([]events.Event, error) {
	remoteList, err := c.remoteEvents(ctx)
	if err != nil {
		return nil, err
	}

	state := c.overlay.Load(ctx)
	merged := catalog.Merge(c.seed, state.Tombstones, state.Edits, remoteList)
	c.setView(merged)
	return merged, nil
}

// remoteEvents returns the cached remote list while a watch is active,
// otherwise a one-shot fetch.
func (c *client) remoteEvents(ctx context.Context) ([]events.Event, error) {
	c.mu.RLock()
	if c.watching {
		cached := c.cachedRemote
		c.mu.RUnlock()
		return cached, nil
	}
	c.mu.RUnlock()

	return c.adapter.Events(ctx)
}

// Search filters the merged view.
func (c *client) Search(ctx context.Context, name, location string) ([]events.Event, error) {
	merged, err := c.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Filter(merged, name, location), nil
}

// Event returns one event from the merged view.
func (c *client) Event(ctx context.Context, id string) (events.Event, error) {
	merged, err := c.Catalog(ctx)
	if err != nil {
		return events.Event{}, err
	}
	for _, e := range merged {
		if e.ID == id {
			return e, nil
		}
	}
	return events.Event{}, errors.NewNotFoundError("event", id)
}

// CreateEvent stores a new remote event owned by the current principal.
func (c *client) CreateEvent(ctx context.Context, event events.Event) (string, error) {
	if event.ID != "" {
		return "", errors.NewValidationError("id", event.ID, "ids are store-assigned")
	}
	if event.Name == "" || event.Date == "" || event.Location == "" {
		return "", errors.NewValidationError("event", nil, "name, date, and location are required")
	}
	if event.Price < 0 {
		return "", errors.NewValidationError("price", event.Price, "price cannot be negative")
	}

	principal, err := c.auth.Current(ctx)
	if err != nil {
		return "", err
	}

	event.OwnerID = principal.ID
	event.CreatedAt = utc.Time{Time: time.Now().UTC()}

	id, err := c.store.Create(ctx, remote.CollectionEvents, event.DocumentFields())
	if err != nil {
		return "", err
	}

	logging.Ctx(ctx).Info().
		Str("event_id", id).
		Str("user_id", principal.ID).
		Msg("Created event")
	return id, nil
}

// UpdateEvent routes a patch to the overlay or the remote store.
func (c *client) UpdateEvent(ctx context.Context, id string, patch events.Patch) error {
	if patch.IsZero() {
		return errors.NewValidationError("patch", patch, "patch overrides no fields")
	}

	event, err := c.Event(ctx, id)
	if err != nil {
		return err
	}

	if event.IsSeed() {
		return c.overlay.RecordEdit(ctx, id, patch)
	}

	principal, err := c.auth.Current(ctx)
	if err != nil {
		return err
	}
	if err := auth.CanModify(principal, event); err != nil {
		return err
	}
	return c.store.Update(ctx, remote.CollectionEvents, id, patch.DocumentFields())
}

// DeleteEvent routes a deletion to the overlay or the remote store.
func (c *client) DeleteEvent(ctx context.Context, id string) error {
	event, err := c.Event(ctx, id)
	if err != nil {
		return err
	}

	if event.IsSeed() {
		return c.overlay.RecordDeletion(ctx, id)
	}

	principal, err := c.auth.Current(ctx)
	if err != nil {
		return err
	}
	if err := auth.CanModify(principal, event); err != nil {
		return err
	}
	return c.store.Delete(ctx, remote.CollectionEvents, id)
}

// ImportSeed copies seed events into the remote store, skipping events
// already present by (name, date) so re-imports are no-ops.
func (c *client) ImportSeed(ctx context.Context) (created, skipped int, err error) {
	existing, err := c.adapter.Events(ctx)
	if err != nil {
		return 0, 0, err
	}

	present := make(map[[2]string]bool, len(existing))
	for _, e := range existing {
		present[[2]string{e.Name, e.Date}] = true
	}

	for _, e := range c.seed {
		if present[[2]string{e.Name, e.Date}] {
			skipped++
			continue
		}
		imported := e
		imported.ID = "" // the store assigns remote ids
		imported.CreatedAt = utc.Time{Time: time.Now().UTC()}
		if _, err := c.store.Create(ctx, remote.CollectionEvents, imported.DocumentFields()); err != nil {
			return created, skipped, err
		}
		created++
	}

	logging.Ctx(ctx).Info().
		Int("created", created).
		Int("skipped", skipped).
		Msg("Imported seed catalog")
	return created, skipped, nil
}

// Principal returns the current principal.
func (c *client) Principal(ctx context.Context) (auth.Principal, error) {
	return c.auth.Current(ctx)
}

// Favorites returns the favorites store.
func (c *client) Favorites() *favorites.Store { return c.favorites }

// Tickets returns the ticket updater.
func (c *client) Tickets() *tickets.Updater { return c.tickets }

// Reviews returns the review aggregator.
func (c *client) Reviews() *reviews.Aggregator { return c.reviews }

// Close stops the watch.
func (c *client) Close() error {
	c.WatchOff()
	return nil
}

// setView records the merged view and fires hooks on the diff against the
// previous one. The first view fires no hooks; there is nothing to diff
// against.
func (c *client) setView(view []events.Event) {
	c.mu.Lock()
	old := c.lastView
	had := c.hasView
	c.lastView = view
	c.hasView = true
	c.mu.Unlock()

	if had && !reflect.DeepEqual(old, view) {
		c.hooks.triggerViewUpdate(old, view)
	}
}
