// Package app provides the application context and dependency management
// for the spoton CLI: configuration, logging, and the lazily-built spoton
// client wired to the device database and the configured remote store.
package app

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/spotonhq/spoton"
	"github.com/spotonhq/spoton/pkg/errors"
	"github.com/spotonhq/spoton/pkg/remote"
	"github.com/spotonhq/spoton/pkg/remote/redisstore"
	"github.com/spotonhq/spoton/pkg/storage/sqlite"
	"github.com/spotonhq/spoton/pkg/weather"
)

// App represents the spoton application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Client and its stores (lazy-initialized, singleton)
	mu      sync.RWMutex
	client  spoton.Client
	kv      *sqlite.Store
	docs    remote.DocumentStore
	weather *weather.Client
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.NewConfigError("spoton", "load config", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string { return a.version }

// Commit returns the git commit hash.
func (a *App) Commit() string { return a.commit }

// Date returns the build date.
func (a *App) Date() string { return a.date }

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string { return a.builtBy }

// Config returns the application configuration.
func (a *App) Config() *Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// Client returns the spoton client, creating it lazily if needed.
// Thread-safe; only one instance is ever created.
func (a *App) Client(ctx context.Context) (spoton.Client, error) {
	a.mu.RLock()
	if a.client != nil {
		c := a.client
		a.mu.RUnlock()
		return c, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.client != nil {
		return a.client, nil
	}

	opts, err := a.buildClientOptions(ctx)
	if err != nil {
		return nil, err
	}

	client, err := spoton.New(opts...)
	if err != nil {
		return nil, err
	}

	a.client = client
	return client, nil
}

// Weather returns the weather client, creating it lazily. It fails when
// no OpenWeather API key is configured.
func (a *App) Weather() (*weather.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.weather != nil {
		return a.weather, nil
	}

	w, err := weather.New(a.config.WeatherAPIKey)
	if err != nil {
		return nil, err
	}
	a.weather = w
	return w, nil
}

// Shutdown performs graceful shutdown of the application: stops any
// running watch and closes the stores.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	if a.client != nil {
		errs = append(errs, a.client.Close())
		a.client = nil
	}
	if closer, ok := a.docs.(io.Closer); ok {
		errs = append(errs, closer.Close())
	}
	a.docs = nil
	if a.kv != nil {
		errs = append(errs, a.kv.Close())
		a.kv = nil
	}
	return errors.Join(errs...)
}

// buildClientOptions constructs spoton options from the app configuration:
// a SQLite device store under the data directory, and the configured
// remote document store.
func (a *App) buildClientOptions(ctx context.Context) ([]spoton.Option, error) {
	if err := os.MkdirAll(a.config.DataDir, 0o755); err != nil {
		return nil, errors.WrapStorage("mkdir", a.config.DataDir, err)
	}

	kv, err := sqlite.New(sqlite.DefaultConfig(filepath.Join(a.config.DataDir, "spoton.db")))
	if err != nil {
		return nil, err
	}
	a.kv = kv

	opts := []spoton.Option{spoton.WithKV(kv)}

	if a.config.Store == "redis" {
		cfg := redisstore.DefaultConfig()
		cfg.Host = a.config.RedisHost
		cfg.Port = a.config.RedisPort
		cfg.Password = a.config.RedisPassword
		cfg.DB = a.config.RedisDB
		cfg.KeyPrefix = a.config.RedisPrefix

		store, err := redisstore.New(ctx, cfg)
		if err != nil {
			_ = kv.Close()
			a.kv = nil
			return nil, err
		}
		a.docs = store
		opts = append(opts, spoton.WithDocumentStore(store))
	}

	if a.config.SessionSecret != "" {
		opts = append(opts, spoton.WithSessionSecret([]byte(a.config.SessionSecret)))
	}

	return opts, nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithClient sets a custom spoton client (useful for testing).
func WithClient(client spoton.Client) Option {
	return func(a *App) error {
		a.client = client
		return nil
	}
}
