// Package memstore provides an in-memory remote.DocumentStore for tests
// and offline use. Documents keep insertion order per collection and
// subscriptions deliver the full collection on every change.
package memstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/spotonhq/spoton/pkg/errors"
	"github.com/spotonhq/spoton/pkg/remote"
)

// subscriberBuffer is the channel depth per subscriber. Slow subscribers
// miss intermediate snapshots rather than blocking writers.
const subscriberBuffer = 8

type collection struct {
	docs  map[string]map[string]any
	order []string
}

type subscriber struct {
	collection string
	ch         chan []remote.Document
}

// Store is an in-memory remote.DocumentStore. Safe for concurrent use.
type Store struct {
	mu          sync.Mutex
	collections map[string]*collection
	subs        map[int]*subscriber
	nextSub     int
}

// New creates an empty store.
func New() *Store {
	return &Store{
		collections: make(map[string]*collection),
		subs:        make(map[int]*subscriber),
	}
}

func (s *Store) collectionLocked(name string) *collection {
	c, ok := s.collections[name]
	if !ok {
		c = &collection{docs: make(map[string]map[string]any)}
		s.collections[name] = c
	}
	return c
}

func (s *Store) snapshotLocked(name string) []remote.Document {
	c := s.collectionLocked(name)
	docs := make([]remote.Document, 0, len(c.order))
	for _, id := range c.order {
		docs = append(docs, remote.Document{ID: id, Fields: copyFields(c.docs[id])})
	}
	return docs
}

// List returns every document in the collection in insertion order.
func (s *Store) List(_ context.Context, collection string) ([]remote.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(collection), nil
}

// Get returns one document, or ErrNotFound.
func (s *Store) Get(_ context.Context, collection, id string) (remote.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collectionLocked(collection)
	fields, ok := c.docs[id]
	if !ok {
		return remote.Document{}, errors.NewNotFoundError("document", id)
	}
	return remote.Document{ID: id, Fields: copyFields(fields)}, nil
}

// Create stores a new document under a fresh UUID and returns the id.
func (s *Store) Create(_ context.Context, collection string, fields map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	c := s.collectionLocked(collection)
	c.docs[id] = copyFields(fields)
	c.order = append(c.order, id)

	s.notifyLocked(collection)
	return id, nil
}

// Update merges fields into an existing document.
func (s *Store) Update(_ context.Context, collection, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collectionLocked(collection)
	doc, ok := c.docs[id]
	if !ok {
		return errors.NewNotFoundError("document", id)
	}
	for k, v := range fields {
		doc[k] = v
	}

	s.notifyLocked(collection)
	return nil
}

// Delete removes a document. Deleting an absent document is an error.
func (s *Store) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collectionLocked(collection)
	if _, ok := c.docs[id]; !ok {
		return errors.NewNotFoundError("document", id)
	}
	delete(c.docs, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}

	s.notifyLocked(collection)
	return nil
}

// Subscribe delivers the full collection on every change, starting with
// the current contents.
func (s *Store) Subscribe(_ context.Context, collection string) (<-chan []remote.Document, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	sub := &subscriber{
		collection: collection,
		ch:         make(chan []remote.Document, subscriberBuffer),
	}
	s.subs[id] = sub

	// Initial snapshot; buffer is empty so this never blocks.
	sub.ch <- s.snapshotLocked(collection)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(sub.ch)
		})
	}
	return sub.ch, cancel, nil
}

// notifyLocked pushes the updated collection to its subscribers.
func (s *Store) notifyLocked(collection string) {
	for _, sub := range s.subs {
		if sub.collection != collection {
			continue
		}
		select {
		case sub.ch <- s.snapshotLocked(collection):
		default:
			// Full buffer: subscriber misses this snapshot.
		}
	}
}

func copyFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		switch vv := v.(type) {
		case map[string]any:
			out[k] = copyFields(vv)
		case []any:
			list := make([]any, len(vv))
			for i, item := range vv {
				if m, ok := item.(map[string]any); ok {
					list[i] = copyFields(m)
				} else {
					list[i] = item
				}
			}
			out[k] = list
		default:
			out[k] = v
		}
	}
	return out
}

var _ remote.DocumentStore = (*Store)(nil)
