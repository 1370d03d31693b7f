package redisstore

// Integration tests that need a running Redis. Point SPOTON_TEST_REDIS at
// it (host:port) to enable them:
//
//	SPOTON_TEST_REDIS=localhost:6379 go test ./pkg/remote/redisstore/

import (
	"context"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spotonhq/spoton/pkg/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	addr := os.Getenv("SPOTON_TEST_REDIS")
	if addr == "" {
		t.Skip("SPOTON_TEST_REDIS not set")
	}

	cfg := DefaultConfig()
	if host, port, ok := strings.Cut(addr, ":"); ok {
		cfg.Host = host
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Port = p
		}
	} else {
		cfg.Host = addr
	}
	// Separate namespace per test run so runs don't see each other's data.
	cfg.KeyPrefix = "spoton-test-" + uuid.NewString()
	cfg.MaxRetries = 0

	s, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRedisCRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.Create(ctx, "events", map[string]any{"name": "Open Mic", "price": 5.0})
	require.NoError(t, err)

	doc, err := s.Get(ctx, "events", id)
	require.NoError(t, err)
	assert.Equal(t, "Open Mic", doc.Fields["name"])

	require.NoError(t, s.Update(ctx, "events", id, map[string]any{"sold": 2.0}))
	doc, err = s.Get(ctx, "events", id)
	require.NoError(t, err)
	assert.Equal(t, 2.0, doc.Fields["sold"])
	assert.Equal(t, "Open Mic", doc.Fields["name"])

	docs, err := s.List(ctx, "events")
	require.NoError(t, err)
	require.Len(t, docs, 1)

	require.NoError(t, s.Delete(ctx, "events", id))
	_, err = s.Get(ctx, "events", id)
	assert.True(t, errors.IsNotFound(err))
}

func TestRedisSubscribe(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	ch, cancel, err := s.Subscribe(ctx, "events")
	require.NoError(t, err)
	defer cancel()

	select {
	case initial := <-ch:
		assert.Empty(t, initial)
	case <-time.After(2 * time.Second):
		t.Fatal("expected initial snapshot")
	}

	_, err = s.Create(ctx, "events", map[string]any{"name": "Open Mic"})
	require.NoError(t, err)

	select {
	case docs := <-ch:
		require.Len(t, docs, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("expected change snapshot")
	}
}
