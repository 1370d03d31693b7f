package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spotonhq/spoton/pkg/errors"
	"github.com/spotonhq/spoton/pkg/events"
	"github.com/spotonhq/spoton/pkg/logging"
	"github.com/spotonhq/spoton/pkg/storage"
	"github.com/spotonhq/spoton/pkg/storage/memory"
)

func TestCanModify(t *testing.T) {
	owner := Principal{ID: "guest-1", Anonymous: true}
	other := Principal{ID: "guest-2", Anonymous: true}
	seedEvent := events.Event{ID: "seed-01"}
	remoteEvent := events.Event{ID: "abc", OwnerID: "guest-1"}

	assert.True(t, errors.IsReadOnly(CanModify(owner, seedEvent)),
		"seed events are read-only at the source for everyone")
	assert.NoError(t, CanModify(owner, remoteEvent))
	assert.True(t, errors.IsPermissionDenied(CanModify(other, remoteEvent)))
	assert.True(t, errors.IsPermissionDenied(CanModify(Principal{}, remoteEvent)))
}

func TestGuestIdentityStableAcrossSessions(t *testing.T) {
	logging.DisableLoggingForTest(t)
	ctx := context.Background()
	kv := memory.New()

	g, err := NewGuestAuthenticator(kv, []byte("test-secret"))
	require.NoError(t, err)

	first, err := g.Current(ctx)
	require.NoError(t, err)
	assert.True(t, first.Anonymous)
	assert.True(t, strings.HasPrefix(first.ID, GuestIDPrefix))

	// Same store, fresh authenticator: same identity.
	g2, err := NewGuestAuthenticator(kv, []byte("test-secret"))
	require.NoError(t, err)
	second, err := g2.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestGuestTamperedTokenMintsFresh(t *testing.T) {
	logging.DisableLoggingForTest(t)
	ctx := context.Background()
	kv := memory.New()

	g, err := NewGuestAuthenticator(kv, []byte("test-secret"))
	require.NoError(t, err)
	first, err := g.Current(ctx)
	require.NoError(t, err)

	require.NoError(t, kv.Set(ctx, storage.KeyGuestSession, []byte("garbage")))
	second, err := g.Current(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestGuestExpiredTokenMintsFresh(t *testing.T) {
	logging.DisableLoggingForTest(t)
	ctx := context.Background()
	kv := memory.New()

	g, err := NewGuestAuthenticator(kv, []byte("test-secret"))
	require.NoError(t, err)
	first, err := g.Current(ctx)
	require.NoError(t, err)

	// Jump past the session TTL.
	g.now = func() time.Time { return time.Now().Add(sessionTTL + time.Hour) }
	second, err := g.Current(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestNewGuestAuthenticatorRequiresSecret(t *testing.T) {
	_, err := NewGuestAuthenticator(memory.New(), nil)
	assert.Error(t, err)
}
