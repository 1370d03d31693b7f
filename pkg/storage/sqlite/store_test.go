package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spotonhq/spoton/pkg/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(DefaultConfig(filepath.Join(t.TempDir(), "spoton.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Get(ctx, "editedEvents")
	assert.True(t, errors.IsNotFound(err))

	require.NoError(t, s.Set(ctx, "editedEvents", []byte(`{"seed-01":{"price":25}}`)))
	got, err := s.Get(ctx, "editedEvents")
	require.NoError(t, err)
	assert.JSONEq(t, `{"seed-01":{"price":25}}`, string(got))

	// Overwrite replaces the value.
	require.NoError(t, s.Set(ctx, "editedEvents", []byte(`{}`)))
	got, err = s.Get(ctx, "editedEvents")
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(got))

	require.NoError(t, s.Delete(ctx, "editedEvents"))
	_, err = s.Get(ctx, "editedEvents")
	assert.True(t, errors.IsNotFound(err))
	assert.NoError(t, s.Delete(ctx, "editedEvents"))
}

func TestStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "spoton.db")

	s, err := New(DefaultConfig(path))
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "deletedEvents", []byte(`["seed-01"]`)))
	require.NoError(t, s.Close())

	s, err = New(DefaultConfig(path))
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, "deletedEvents")
	require.NoError(t, err)
	assert.Equal(t, `["seed-01"]`, string(got))
}

func TestNewRequiresPath(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
	var cfgErr *errors.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}
