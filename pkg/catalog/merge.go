// Package catalog merges the three inputs of the event catalog into the one
// list every screen renders: the embedded seed catalog, the device-local
// overlay (edits and tombstones), and the live remote event list.
//
// Merge is a pure function. Given the same inputs it returns the same output
// in the same order, so callers may diff successive results to detect change.
package catalog

import (
	"github.com/spotonhq/spoton/pkg/events"
	"github.com/spotonhq/spoton/pkg/logging"
)

// Merge builds the unified catalog view.
//
// Seed events are filtered through the tombstone set, then overlaid with
// their recorded edit patches. Remote events pass through unmodified; they
// were already normalized at the store boundary. Seed-derived entries come
// first, remote entries after, each group in input order. Edits or
// tombstones referencing ids not present in the seed have no effect.
//
// Ids are expected to be unique across seed and remote by construction
// (disjoint prefixes). If a duplicate does appear, the first occurrence
// wins and the duplicate is dropped with a warning.
func Merge(seed []events.Event, tombstones map[string]bool, edits map[string]events.Patch, remote []events.Event) []events.Event {
	merged := make([]events.Event, 0, len(seed)+len(remote))
	seen := make(map[string]bool, len(seed)+len(remote))

	for _, e := range seed {
		if tombstones[e.ID] {
			continue
		}
		if patch, ok := edits[e.ID]; ok {
			e = patch.Apply(e)
		}
		e.Origin = events.OriginSeed
		if seen[e.ID] {
			logging.Warn().Str("event_id", e.ID).Msg("Duplicate event id in merge, dropping later occurrence")
			continue
		}
		seen[e.ID] = true
		merged = append(merged, e)
	}

	for _, e := range remote {
		e.Origin = events.OriginRemote
		if seen[e.ID] {
			logging.Warn().Str("event_id", e.ID).Msg("Duplicate event id in merge, dropping later occurrence")
			continue
		}
		seen[e.ID] = true
		merged = append(merged, e)
	}

	return merged
}
