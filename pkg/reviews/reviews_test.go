package reviews

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spotonhq/spoton/pkg/errors"
	"github.com/spotonhq/spoton/pkg/events"
	"github.com/spotonhq/spoton/pkg/logging"
	"github.com/spotonhq/spoton/pkg/remote"
	"github.com/spotonhq/spoton/pkg/remote/memstore"
)

// All tests run "today" pinned to Dec 1, 2025.
var today = time.Date(2025, time.December, 1, 10, 30, 0, 0, time.UTC)

func newAggregator(t *testing.T) (*Aggregator, *memstore.Store, string) {
	t.Helper()
	logging.DisableLoggingForTest(t)

	store := memstore.New()
	eventID, err := store.Create(context.Background(), remote.CollectionEvents, map[string]any{
		"name":     "Jazz Night",
		"date":     "Nov 17, 2025",
		"location": "Peja Cultural Hall",
		"price":    20.0,
	})
	require.NoError(t, err)

	a := New(store)
	a.now = func() time.Time { return today }
	return a, store, eventID
}

func TestSubmitAndRecompute(t *testing.T) {
	ctx := context.Background()
	a, _, eventID := newAggregator(t)

	for i, r := range []struct {
		user   string
		rating int
	}{
		{"guest-1", 5}, {"guest-2", 3}, {"guest-3", 4},
	} {
		err := a.Submit(ctx, events.Review{EventID: eventID, UserID: r.user, Rating: r.rating})
		require.NoError(t, err, "review %d", i)
	}

	summary, err := a.Recompute(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, summary.Average)
	assert.Equal(t, 3, summary.Count)

	list, err := a.For(ctx, eventID)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestRecomputeZeroReviews(t *testing.T) {
	a, _, eventID := newAggregator(t)

	summary, err := a.Recompute(context.Background(), eventID)
	require.NoError(t, err)
	assert.Equal(t, Summary{}, summary, "zero reviews yield average 0, count 0, not NaN")
}

func TestSubmitRejectsFutureEvent(t *testing.T) {
	ctx := context.Background()
	a, store, _ := newAggregator(t)

	future, err := store.Create(ctx, remote.CollectionEvents, map[string]any{
		"name": "New Year Gala", "date": "Dec 31, 2025", "price": 50.0,
	})
	require.NoError(t, err)

	err = a.Submit(ctx, events.Review{EventID: future, UserID: "guest-1", Rating: 5})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestSubmitRejectsBadRating(t *testing.T) {
	ctx := context.Background()
	a, _, eventID := newAggregator(t)

	for _, rating := range []int{0, 6, -2} {
		err := a.Submit(ctx, events.Review{EventID: eventID, UserID: "guest-1", Rating: rating})
		require.Error(t, err, "rating %d", rating)
		assert.True(t, errors.IsValidationError(err))
	}
}

func TestSubmitRejectsDuplicateReviewer(t *testing.T) {
	ctx := context.Background()
	a, _, eventID := newAggregator(t)

	require.NoError(t, a.Submit(ctx, events.Review{EventID: eventID, UserID: "guest-1", Rating: 4}))

	err := a.Submit(ctx, events.Review{EventID: eventID, UserID: "guest-1", Rating: 5})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))

	has, err := a.HasReviewed(ctx, eventID, "guest-1")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = a.HasReviewed(ctx, eventID, "guest-2")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestSubmitUnknownEvent(t *testing.T) {
	a, _, _ := newAggregator(t)

	err := a.Submit(context.Background(), events.Review{EventID: "missing", UserID: "guest-1", Rating: 4})
	assert.True(t, errors.IsNotFound(err))
}
