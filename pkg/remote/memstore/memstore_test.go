package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spotonhq/spoton/pkg/errors"
	"github.com/spotonhq/spoton/pkg/remote"
)

func TestCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	id, err := s.Create(ctx, "events", map[string]any{"name": "Open Mic", "date": "Jan 9, 2026"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := s.Get(ctx, "events", id)
	require.NoError(t, err)
	assert.Equal(t, "Open Mic", doc.Fields["name"])

	require.NoError(t, s.Update(ctx, "events", id, map[string]any{"price": 5.0}))
	doc, err = s.Get(ctx, "events", id)
	require.NoError(t, err)
	assert.Equal(t, 5.0, doc.Fields["price"])
	assert.Equal(t, "Open Mic", doc.Fields["name"], "update merges, it does not replace")

	require.NoError(t, s.Delete(ctx, "events", id))
	_, err = s.Get(ctx, "events", id)
	assert.True(t, errors.IsNotFound(err))
	assert.True(t, errors.IsNotFound(s.Delete(ctx, "events", id)))
}

func TestListKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := New()

	first, err := s.Create(ctx, "events", map[string]any{"name": "A"})
	require.NoError(t, err)
	second, err := s.Create(ctx, "events", map[string]any{"name": "B"})
	require.NoError(t, err)

	docs, err := s.List(ctx, "events")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, first, docs[0].ID)
	assert.Equal(t, second, docs[1].ID)
}

func TestGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New()

	id, err := s.Create(ctx, "events", map[string]any{"name": "A"})
	require.NoError(t, err)

	doc, err := s.Get(ctx, "events", id)
	require.NoError(t, err)
	doc.Fields["name"] = "tampered"

	again, err := s.Get(ctx, "events", id)
	require.NoError(t, err)
	assert.Equal(t, "A", again.Fields["name"])
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.Create(ctx, "events", map[string]any{"name": "A"})
	require.NoError(t, err)

	ch, cancel, err := s.Subscribe(ctx, "events")
	require.NoError(t, err)

	initial := receive(t, ch)
	require.Len(t, initial, 1)

	_, err = s.Create(ctx, "events", map[string]any{"name": "B"})
	require.NoError(t, err)
	assert.Len(t, receive(t, ch), 2)

	cancel()
	cancel() // idempotent
	for range ch {
	}

	// Mutations after cancel must not panic or deliver.
	_, err = s.Create(ctx, "events", map[string]any{"name": "C"})
	require.NoError(t, err)
}

func TestSubscribeOtherCollectionUnaffected(t *testing.T) {
	ctx := context.Background()
	s := New()

	ch, cancel, err := s.Subscribe(ctx, "reviews")
	require.NoError(t, err)
	defer cancel()

	assert.Empty(t, receive(t, ch))

	_, err = s.Create(ctx, "events", map[string]any{"name": "A"})
	require.NoError(t, err)

	select {
	case docs := <-ch:
		t.Fatalf("unexpected delivery for other collection: %v", docs)
	case <-time.After(50 * time.Millisecond):
	}
}

func receive(t *testing.T, ch <-chan []remote.Document) []remote.Document {
	t.Helper()
	select {
	case docs := <-ch:
		return docs
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}
