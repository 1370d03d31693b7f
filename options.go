package spoton

import (
	"io/fs"

	"github.com/spotonhq/spoton/internal/embedded"
	"github.com/spotonhq/spoton/pkg/auth"
	"github.com/spotonhq/spoton/pkg/errors"
	"github.com/spotonhq/spoton/pkg/events"
	"github.com/spotonhq/spoton/pkg/remote"
	"github.com/spotonhq/spoton/pkg/remote/memstore"
	"github.com/spotonhq/spoton/pkg/storage"
	"github.com/spotonhq/spoton/pkg/storage/memory"
)

// config holds the client configuration assembled from options.
type config struct {
	store         remote.DocumentStore
	kv            storage.KV
	seedFS        fs.FS
	seed          []events.Event
	auth          auth.Authenticator
	sessionSecret []byte
}

// defaultConfig returns a self-contained configuration: embedded seed,
// in-memory stores, guest sessions. The session secret only namespaces
// this device's local token; it is not a security boundary.
func defaultConfig() *config {
	return &config{
		store:         memstore.New(),
		kv:            memory.New(),
		seedFS:        embedded.FS,
		sessionSecret: []byte("spoton-device-session"),
	}
}

// Option configures the client.
type Option func(*config) error

// options applies the given options to the client's config.
func (c *client) options(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c.config); err != nil {
			return err
		}
	}
	return nil
}

// WithDocumentStore sets the remote document store.
func WithDocumentStore(store remote.DocumentStore) Option {
	return func(cfg *config) error {
		if store == nil {
			return errors.NewConfigError("spoton", "document store cannot be nil", nil)
		}
		cfg.store = store
		return nil
	}
}

// WithKV sets the device-local key-value store holding the overlay,
// favorites, and guest session.
func WithKV(kv storage.KV) Option {
	return func(cfg *config) error {
		if kv == nil {
			return errors.NewConfigError("spoton", "kv store cannot be nil", nil)
		}
		cfg.kv = kv
		return nil
	}
}

// WithSeedFS sets the filesystem the seed catalog is loaded from.
func WithSeedFS(fsys fs.FS) Option {
	return func(cfg *config) error {
		if fsys == nil {
			return errors.NewConfigError("spoton", "seed filesystem cannot be nil", nil)
		}
		cfg.seedFS = fsys
		return nil
	}
}

// WithSeed sets the seed catalog directly, bypassing the filesystem load.
func WithSeed(seed []events.Event) Option {
	return func(cfg *config) error {
		for _, e := range seed {
			if err := e.Validate(); err != nil {
				return err
			}
		}
		cfg.seed = seed
		return nil
	}
}

// WithAuthenticator replaces the default guest authenticator.
func WithAuthenticator(a auth.Authenticator) Option {
	return func(cfg *config) error {
		if a == nil {
			return errors.NewConfigError("spoton", "authenticator cannot be nil", nil)
		}
		cfg.auth = a
		return nil
	}
}

// WithSessionSecret sets the secret signing guest session tokens.
func WithSessionSecret(secret []byte) Option {
	return func(cfg *config) error {
		if len(secret) == 0 {
			return errors.NewConfigError("spoton", "session secret cannot be empty", nil)
		}
		cfg.sessionSecret = secret
		return nil
	}
}
