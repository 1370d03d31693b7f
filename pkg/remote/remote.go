// Package remote defines the opaque document store the catalog, tickets,
// and reviews talk to. Documents are schemaless field maps keyed by
// store-assigned ids; the store knows nothing about events. Implementations
// live in the memstore and redisstore subpackages.
package remote

import "context"

// Well-known collections.
const (
	// CollectionEvents holds event documents.
	CollectionEvents = "events"

	// CollectionReviews holds review documents.
	CollectionReviews = "reviews"
)

// Document is one schemaless record.
type Document struct {
	ID     string
	Fields map[string]any
}

// DocumentStore is the remote persistence boundary.
//
// List returns every document in a collection in a stable order. Get
// returns errors.ErrNotFound (possibly wrapped) for an unknown id. Create
// assigns and returns a new id. Update replaces only the given fields,
// keeping the rest of the document. Subscribe delivers the full collection
// on every change, starting with the current contents; the returned cancel
// func tears the subscription down and closes the channel.
type DocumentStore interface {
	List(ctx context.Context, collection string) ([]Document, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	Create(ctx context.Context, collection string, fields map[string]any) (string, error)
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	Subscribe(ctx context.Context, collection string) (<-chan []Document, func(), error)
}
