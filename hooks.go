package spoton

import (
	"reflect"
	"sync"

	"github.com/spotonhq/spoton/pkg/events"
)

// Hook function types for merged-view changes
type (
	// EventAddedHook is called when an event appears in the merged view
	EventAddedHook func(event events.Event)

	// EventUpdatedHook is called when an event changes in the merged view
	EventUpdatedHook func(old, new events.Event)

	// EventRemovedHook is called when an event leaves the merged view
	EventRemovedHook func(event events.Event)
)

// hooks manages event callbacks for merged-view changes
type hooks struct {
	mu             sync.RWMutex
	onEventAdded   []EventAddedHook
	onEventUpdated []EventUpdatedHook
	onEventRemoved []EventRemovedHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnEventAdded registers a callback for events appearing in the view
func (c *client) OnEventAdded(fn EventAddedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onEventAdded = append(c.hooks.onEventAdded, fn)
}

// OnEventUpdated registers a callback for events changing in the view
func (c *client) OnEventUpdated(fn EventUpdatedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onEventUpdated = append(c.hooks.onEventUpdated, fn)
}

// OnEventRemoved registers a callback for events leaving the view
func (c *client) OnEventRemoved(fn EventRemovedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onEventRemoved = append(c.hooks.onEventRemoved, fn)
}

// triggerViewUpdate compares old and new views and triggers the hooks
func (h *hooks) triggerViewUpdate(oldView, newView []events.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	oldByID := make(map[string]events.Event, len(oldView))
	for _, e := range oldView {
		oldByID[e.ID] = e
	}

	newByID := make(map[string]events.Event, len(newView))
	for _, e := range newView {
		newByID[e.ID] = e
	}

	for _, newEvent := range newView {
		if oldEvent, exists := oldByID[newEvent.ID]; exists {
			if !reflect.DeepEqual(oldEvent, newEvent) {
				for _, hook := range h.onEventUpdated {
					hook(oldEvent, newEvent)
				}
			}
		} else {
			for _, hook := range h.onEventAdded {
				hook(newEvent)
			}
		}
	}

	for _, oldEvent := range oldView {
		if _, exists := newByID[oldEvent.ID]; !exists {
			for _, hook := range h.onEventRemoved {
				hook(oldEvent)
			}
		}
	}
}
