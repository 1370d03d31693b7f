package spoton

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spotonhq/spoton/pkg/auth"
	"github.com/spotonhq/spoton/pkg/errors"
	"github.com/spotonhq/spoton/pkg/events"
	"github.com/spotonhq/spoton/pkg/logging"
	"github.com/spotonhq/spoton/pkg/remote/memstore"
)

func testSeed() []events.Event {
	return []events.Event{
		{ID: "seed-01", Name: "Jazz Night", Date: "Nov 17, 2025", Location: "Peja Cultural Hall", Price: 20},
		{ID: "seed-02", Name: "Food Festival", Date: "Dec 5, 2025", Location: "Mother Teresa Square", Price: 0},
	}
}

func newTestClient(t *testing.T, opts ...Option) Client {
	t.Helper()
	logging.DisableLoggingForTest(t)

	c, err := New(append([]Option{WithSeed(testSeed())}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCatalogStartsWithSeed(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	list, err := c.Catalog(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "seed-01", list[0].ID)
	assert.Equal(t, events.OriginSeed, list[0].Origin)
}

func TestEmbeddedSeedLoads(t *testing.T) {
	logging.DisableLoggingForTest(t)

	c, err := New()
	require.NoError(t, err)
	defer c.Close()

	list, err := c.Catalog(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, list, "default client carries the embedded seed catalog")
	for _, e := range list {
		assert.True(t, e.IsSeed())
	}
}

func TestSeedEditAndDeleteRouteToOverlay(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	require.NoError(t, c.UpdateEvent(ctx, "seed-01", events.Patch{Price: events.Float(25)}))
	e, err := c.Event(ctx, "seed-01")
	require.NoError(t, err)
	assert.Equal(t, 25.0, e.Price)
	assert.Equal(t, "Jazz Night", e.Name)

	require.NoError(t, c.DeleteEvent(ctx, "seed-01"))
	_, err = c.Event(ctx, "seed-01")
	assert.True(t, errors.IsNotFound(err), "tombstoned seed event never reappears")

	list, err := c.Catalog(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "seed-02", list[0].ID)
}

func TestCreateUpdateDeleteRemoteEvent(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	id, err := c.CreateEvent(ctx, events.Event{
		Name:     "Open Mic",
		Date:     "Jan 9, 2026",
		Location: "Soma Book Station",
		Price:    5,
	})
	require.NoError(t, err)

	e, err := c.Event(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, events.OriginRemote, e.Origin)

	principal, err := c.Principal(ctx)
	require.NoError(t, err)
	assert.Equal(t, principal.ID, e.OwnerID, "creator owns the event")

	require.NoError(t, c.UpdateEvent(ctx, id, events.Patch{Price: events.Float(8)}))
	e, err = c.Event(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 8.0, e.Price)

	require.NoError(t, c.DeleteEvent(ctx, id))
	_, err = c.Event(ctx, id)
	assert.True(t, errors.IsNotFound(err))
}

func TestRemoteMutationDeniedForNonOwner(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	// Another device created this event.
	c := newTestClient(t, WithDocumentStore(store),
		WithAuthenticator(staticAuth{id: "guest-owner"}))
	id, err := c.CreateEvent(ctx, events.Event{
		Name: "Open Mic", Date: "Jan 9, 2026", Location: "Soma", Price: 5,
	})
	require.NoError(t, err)

	other := newTestClient(t, WithDocumentStore(store),
		WithAuthenticator(staticAuth{id: "guest-other"}))

	err = other.UpdateEvent(ctx, id, events.Patch{Price: events.Float(1)})
	assert.True(t, errors.IsPermissionDenied(err))

	err = other.DeleteEvent(ctx, id)
	assert.True(t, errors.IsPermissionDenied(err))
}

func TestImportSeedIdempotent(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	created, skipped, err := c.ImportSeed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	assert.Zero(t, skipped)

	created, skipped, err = c.ImportSeed(ctx)
	require.NoError(t, err)
	assert.Zero(t, created, "re-import by (name, date) creates nothing")
	assert.Equal(t, 2, skipped)
}

func TestWatchFiresHooks(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	c := newTestClient(t, WithDocumentStore(store))

	var mu sync.Mutex
	var added []string
	c.OnEventAdded(func(e events.Event) {
		mu.Lock()
		defer mu.Unlock()
		added = append(added, e.Name)
	})

	require.NoError(t, c.WatchOn(ctx))

	// Establish the first view so the next change has a baseline to diff.
	_, err := c.Catalog(ctx)
	require.NoError(t, err)

	_, err = store.Create(ctx, "events", map[string]any{
		"name": "Open Mic", "date": "Jan 9, 2026", "location": "Soma", "price": 5.0,
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(added) == 1 && added[0] == "Open Mic"
	}, 2*time.Second, 10*time.Millisecond)

	c.WatchOff()
	c.WatchOff() // safe to call twice
}

func TestWatchKeepsCatalogCurrent(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	c := newTestClient(t, WithDocumentStore(store))

	require.NoError(t, c.WatchOn(ctx))

	_, err := store.Create(ctx, "events", map[string]any{
		"name": "Open Mic", "date": "Jan 9, 2026", "location": "Soma", "price": 5.0,
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		list, err := c.Catalog(ctx)
		return err == nil && len(list) == 3
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCreateEventValidation(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	_, err := c.CreateEvent(ctx, events.Event{Name: "x"})
	assert.True(t, errors.IsValidationError(err))

	_, err = c.CreateEvent(ctx, events.Event{ID: "chosen", Name: "x", Date: "Jan 9, 2026", Location: "y"})
	assert.True(t, errors.IsValidationError(err), "ids are store-assigned")
}

// staticAuth returns a fixed principal.
type staticAuth struct{ id string }

func (a staticAuth) Current(context.Context) (auth.Principal, error) {
	return auth.Principal{ID: a.id, Anonymous: true}, nil
}
