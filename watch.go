package spoton

import (
	"context"

	"github.com/spotonhq/spoton/pkg/catalog"
	"github.com/spotonhq/spoton/pkg/errors"
	"github.com/spotonhq/spoton/pkg/events"
	"github.com/spotonhq/spoton/pkg/logging"
)

// WatchOn subscribes to the remote event collection and keeps the merged
// view current. Every remote change recomputes the merge and fires the
// diff hooks. Only one watch runs at a time.
func (c *client) WatchOn(ctx context.Context) error {
	c.mu.Lock()
	if c.watching {
		c.mu.Unlock()
		return errors.New("watch already running")
	}
	c.mu.Unlock()

	updates, cancel, err := c.adapter.Subscribe(ctx)
	if err != nil {
		return err
	}

	// Prime the view before returning so the first Catalog call after
	// WatchOn sees live data.
	select {
	case initial, ok := <-updates:
		if !ok {
			cancel()
			return errors.New("subscription closed before first snapshot")
		}
		c.mu.Lock()
		c.cachedRemote = initial
		c.watching = true
		c.watchCancel = cancel
		c.watchDone = make(chan struct{})
		c.mu.Unlock()
	case <-ctx.Done():
		cancel()
		return ctx.Err()
	}

	go c.watchLoop(ctx, updates)

	logging.Ctx(ctx).Debug().Msg("Watching remote events")
	return nil
}

// watchLoop consumes remote snapshots until the subscription closes.
func (c *client) watchLoop(ctx context.Context, updates <-chan []events.Event) {
	defer func() {
		c.mu.Lock()
		done := c.watchDone
		c.watching = false
		c.mu.Unlock()
		close(done)
	}()

	for remoteList := range updates {
		c.mu.Lock()
		c.cachedRemote = remoteList
		c.mu.Unlock()

		state := c.overlay.Load(ctx)
		merged := catalog.Merge(c.seed, state.Tombstones, state.Edits, remoteList)
		c.setView(merged)
	}
}

// WatchOff tears the subscription down and waits for the watch loop to
// drain. Safe to call without a running watch.
func (c *client) WatchOff() {
	c.mu.Lock()
	if !c.watching {
		c.mu.Unlock()
		return
	}
	cancel := c.watchCancel
	done := c.watchDone
	c.mu.Unlock()

	cancel()
	<-done
}
