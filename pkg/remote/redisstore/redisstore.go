// Package redisstore implements remote.DocumentStore on Redis. Each
// document is one JSON value, each collection keeps a sorted-set index of
// its ids by insertion time, and a pub/sub channel per collection carries
// change notifications for subscriptions.
//
// Updates replace the whole document value with no compare-and-set, so the
// read-modify-write cycles above this store (ticket purchases in
// particular) stay exactly as race-prone as the interface documents.
package redisstore

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/spotonhq/spoton/pkg/errors"
	"github.com/spotonhq/spoton/pkg/logging"
	"github.com/spotonhq/spoton/pkg/remote"
)

// Config holds Redis connection configuration.
type Config struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Retry configuration for the initial connection.
	MaxRetries    int
	RetryInterval time.Duration

	// KeyPrefix namespaces every key this store writes.
	KeyPrefix string
}

// DefaultConfig returns default Redis configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:          "localhost",
		Port:          6379,
		Password:      "",
		DB:            0,
		PoolSize:      10,
		DialTimeout:   5 * time.Second,
		ReadTimeout:   3 * time.Second,
		WriteTimeout:  3 * time.Second,
		MaxRetries:    3,
		RetryInterval: time.Second,
		KeyPrefix:     "spoton",
	}
}

// Addr returns the Redis address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Store is a Redis-backed remote.DocumentStore.
type Store struct {
	client *redis.Client
	config *Config
}

// New creates a store and verifies the connection with retry.
func New(ctx context.Context, cfg *Config) (*Store, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(cfg.RetryInterval)
		}
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return &Store{client: client, config: cfg}, nil
		}
	}

	_ = client.Close()
	return nil, errors.NewConfigError("redis",
		fmt.Sprintf("failed to connect after %d attempts", cfg.MaxRetries+1), lastErr)
}

// Close closes the underlying Redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) docKey(collection, id string) string {
	return fmt.Sprintf("%s:doc:%s:%s", s.config.KeyPrefix, collection, id)
}

func (s *Store) indexKey(collection string) string {
	return fmt.Sprintf("%s:index:%s", s.config.KeyPrefix, collection)
}

func (s *Store) channel(collection string) string {
	return fmt.Sprintf("%s:changed:%s", s.config.KeyPrefix, collection)
}

// List returns every document in the collection, ordered by insertion.
func (s *Store) List(ctx context.Context, collection string) ([]remote.Document, error) {
	ids, err := s.client.ZRange(ctx, s.indexKey(collection), 0, -1).Result()
	if err != nil {
		return nil, errors.WrapStore("list", collection, "", err)
	}
	if len(ids) == 0 {
		return []remote.Document{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.docKey(collection, id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.WrapStore("list", collection, "", err)
	}

	docs := make([]remote.Document, 0, len(ids))
	for i, raw := range values {
		str, ok := raw.(string)
		if !ok {
			// Index entry with no document: dropped mid-scan.
			continue
		}
		var fields map[string]any
		if err := json.Unmarshal([]byte(str), &fields); err != nil {
			logging.Ctx(ctx).Warn().Err(err).
				Str("document_id", ids[i]).
				Str("collection", collection).
				Msg("Skipping undecodable document")
			continue
		}
		docs = append(docs, remote.Document{ID: ids[i], Fields: fields})
	}
	return docs, nil
}

// Get returns one document, or ErrNotFound.
func (s *Store) Get(ctx context.Context, collection, id string) (remote.Document, error) {
	raw, err := s.client.Get(ctx, s.docKey(collection, id)).Result()
	if stderrors.Is(err, redis.Nil) {
		return remote.Document{}, errors.NewNotFoundError("document", id)
	}
	if err != nil {
		return remote.Document{}, errors.WrapStore("get", collection, id, err)
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return remote.Document{}, errors.WrapParse("json", s.docKey(collection, id), err)
	}
	return remote.Document{ID: id, Fields: fields}, nil
}

// Create stores a new document under a fresh UUID and returns the id.
func (s *Store) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	id := uuid.NewString()
	if err := s.write(ctx, collection, id, fields); err != nil {
		return "", err
	}

	err := s.client.ZAdd(ctx, s.indexKey(collection), redis.Z{
		Score:  float64(time.Now().UnixNano()),
		Member: id,
	}).Err()
	if err != nil {
		return "", errors.WrapStore("create", collection, id, err)
	}

	s.publish(ctx, collection)
	return id, nil
}

// Update merges fields into an existing document. Read, merge, write:
// no conditional write, last writer wins.
func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	doc, err := s.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	for k, v := range fields {
		doc.Fields[k] = v
	}
	if err := s.write(ctx, collection, id, doc.Fields); err != nil {
		return err
	}

	s.publish(ctx, collection)
	return nil
}

// Delete removes a document and its index entry.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	removed, err := s.client.ZRem(ctx, s.indexKey(collection), id).Result()
	if err != nil {
		return errors.WrapStore("delete", collection, id, err)
	}
	if removed == 0 {
		return errors.NewNotFoundError("document", id)
	}
	if err := s.client.Del(ctx, s.docKey(collection, id)).Err(); err != nil {
		return errors.WrapStore("delete", collection, id, err)
	}

	s.publish(ctx, collection)
	return nil
}

// Subscribe delivers the full collection on every published change,
// starting with the current contents.
func (s *Store) Subscribe(ctx context.Context, collection string) (<-chan []remote.Document, func(), error) {
	initial, err := s.List(ctx, collection)
	if err != nil {
		return nil, nil, err
	}

	pubsub := s.client.Subscribe(ctx, s.channel(collection))
	// Force the subscription to be established before we return.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, errors.WrapStore("subscribe", collection, "", err)
	}

	out := make(chan []remote.Document, 1)
	out <- initial

	done := make(chan struct{})
	go func() {
		defer close(out)
		msgs := pubsub.Channel()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				docs, err := s.List(ctx, collection)
				if err != nil {
					logging.Ctx(ctx).Warn().Err(err).
						Str("collection", collection).
						Msg("Dropping change notification, list failed")
					continue
				}
				select {
				case out <- docs:
				default:
					// Slow subscriber misses this snapshot.
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = pubsub.Close()
		})
	}
	return out, cancel, nil
}

func (s *Store) write(ctx context.Context, collection, id string, fields map[string]any) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return errors.WrapParse("json", s.docKey(collection, id), err)
	}
	if err := s.client.Set(ctx, s.docKey(collection, id), data, 0).Err(); err != nil {
		return errors.WrapStore("set", collection, id, err)
	}
	return nil
}

func (s *Store) publish(ctx context.Context, collection string) {
	if err := s.client.Publish(ctx, s.channel(collection), "changed").Err(); err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Str("collection", collection).
			Msg("Failed to publish change notification")
	}
}

var _ remote.DocumentStore = (*Store)(nil)
