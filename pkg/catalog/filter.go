package catalog

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/spotonhq/spoton/pkg/events"
)

var fold = cases.Fold()

// Filter narrows a merged view by case-insensitive substring match on the
// event name and location. Empty terms match everything, so Filter(list,
// "", "") returns the list unchanged in order.
func Filter(list []events.Event, name, location string) []events.Event {
	if name == "" && location == "" {
		return list
	}

	nameTerm := fold.String(name)
	locationTerm := fold.String(location)

	matched := make([]events.Event, 0, len(list))
	for _, e := range list {
		if nameTerm != "" && !strings.Contains(fold.String(e.Name), nameTerm) {
			continue
		}
		if locationTerm != "" && !strings.Contains(fold.String(e.Location), locationTerm) {
			continue
		}
		matched = append(matched, e)
	}
	return matched
}
