package remote

import (
	"context"

	"github.com/spotonhq/spoton/pkg/events"
	"github.com/spotonhq/spoton/pkg/logging"
)

// CatalogAdapter sits between the schemaless document store and the typed
// catalog: it lists and subscribes to the events collection and normalizes
// every document at this one boundary, so the merge engine only ever sees
// canonical events. Documents that cannot be normalized (no name, no date)
// are dropped with a warning instead of poisoning the whole list.
type CatalogAdapter struct {
	store DocumentStore
}

// NewCatalogAdapter wraps a document store.
func NewCatalogAdapter(store DocumentStore) *CatalogAdapter {
	return &CatalogAdapter{store: store}
}

// Events lists the remote event collection, normalized.
func (a *CatalogAdapter) Events(ctx context.Context) ([]events.Event, error) {
	docs, err := a.store.List(ctx, CollectionEvents)
	if err != nil {
		return nil, err
	}
	return a.normalize(ctx, docs), nil
}

// Subscribe republishes every change of the events collection as a
// normalized typed list, starting with the current contents. Cancelling
// tears down the underlying store subscription and closes the channel.
func (a *CatalogAdapter) Subscribe(ctx context.Context) (<-chan []events.Event, func(), error) {
	docs, cancel, err := a.store.Subscribe(ctx, CollectionEvents)
	if err != nil {
		return nil, nil, err
	}

	out := make(chan []events.Event)
	go func() {
		defer close(out)
		for batch := range docs {
			select {
			case out <- a.normalize(ctx, batch):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, cancel, nil
}

func (a *CatalogAdapter) normalize(ctx context.Context, docs []Document) []events.Event {
	list := make([]events.Event, 0, len(docs))
	for _, doc := range docs {
		e, err := events.FromDocument(doc.ID, doc.Fields)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).
				Str("document_id", doc.ID).
				Str("collection", CollectionEvents).
				Msg("Dropping malformed event document")
			continue
		}
		list = append(list, e)
	}
	return list
}
