package events

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/agentstation/utc"

	"github.com/spotonhq/spoton/pkg/errors"
)

// Remote documents are schemaless maps. Older documents carry an image as
// {uri: "..."} instead of a plain string, prices as strings instead of
// numbers, and omit numeric fields entirely. FromDocument absorbs all of
// that so the rest of the system only ever sees the canonical Event shape.

// FromDocument normalizes a raw remote document into an Event.
// Missing numeric fields default to zero; a missing quantity means
// unlimited inventory and stays nil. Name and date are the only fields a
// document cannot do without.
func FromDocument(id string, fields map[string]any) (Event, error) {
	if id == "" {
		return Event{}, errors.NewValidationError("id", id, "document id is required")
	}

	e := Event{
		ID:          id,
		Name:        stringField(fields, "name"),
		Date:        stringField(fields, "date"),
		Location:    stringField(fields, "location"),
		Description: stringField(fields, "description"),
		Organizer:   stringField(fields, "organized_by"),
		Duration:    stringField(fields, "duration"),
		Status:      stringField(fields, "status"),
		OwnerID:     stringField(fields, "ownerId"),
		Image:       imageField(fields["image"]),
		Price:       floatField(fields, "price"),
		Attendees:   intField(fields, "attendees"),
		Sold:        intField(fields, "sold"),
		Origin:      OriginRemote,
	}

	if raw, ok := fields["quantity"]; ok && raw != nil {
		q := coerceInt(raw)
		e.Quantity = &q
	}

	if t, ok := timeField(fields["createdAt"]); ok {
		e.CreatedAt = utc.Time{Time: t}
	}

	if e.Name == "" {
		return Event{}, errors.NewValidationError("name", nil, "document has no name")
	}
	if e.Date == "" {
		return Event{}, errors.NewValidationError("date", nil, "document has no date")
	}
	return e, nil
}

// DocumentFields flattens an event into the remote document shape.
// The id is the document key and is not repeated in the fields.
func (e Event) DocumentFields() map[string]any {
	fields := map[string]any{
		"name":     e.Name,
		"date":     e.Date,
		"location": e.Location,
		"price":    e.Price,
		"image":    e.Image,
	}
	if e.Description != "" {
		fields["description"] = e.Description
	}
	if e.Organizer != "" {
		fields["organized_by"] = e.Organizer
	}
	if e.Duration != "" {
		fields["duration"] = e.Duration
	}
	if e.Status != "" {
		fields["status"] = e.Status
	}
	if e.Attendees != 0 {
		fields["attendees"] = e.Attendees
	}
	if e.OwnerID != "" {
		fields["ownerId"] = e.OwnerID
	}
	if e.Quantity != nil {
		fields["quantity"] = *e.Quantity
	}
	if e.Sold != 0 {
		fields["sold"] = e.Sold
	}
	if !e.CreatedAt.IsZero() {
		fields["createdAt"] = e.CreatedAt.Format(time.RFC3339)
	}
	return fields
}

// imageField accepts both the plain string form and the legacy
// {uri: "..."} object form.
func imageField(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case map[string]any:
		if uri, ok := v["uri"].(string); ok {
			return uri
		}
	}
	return ""
}

func stringField(fields map[string]any, key string) string {
	if s, ok := fields[key].(string); ok {
		return s
	}
	return ""
}

func floatField(fields map[string]any, key string) float64 {
	raw, ok := fields[key]
	if !ok || raw == nil {
		return 0
	}
	return coerceFloat(raw)
}

func intField(fields map[string]any, key string) int {
	raw, ok := fields[key]
	if !ok || raw == nil {
		return 0
	}
	return coerceInt(raw)
}

func coerceFloat(raw any) float64 {
	switch v := raw.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

func coerceInt(raw any) int {
	switch v := raw.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			f, _ := v.Float64()
			return int(f)
		}
		return int(i)
	case string:
		i, err := strconv.Atoi(v)
		if err != nil {
			return 0
		}
		return i
	}
	return 0
}

// timeField accepts RFC3339 strings and time.Time values.
func timeField(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		return v, true
	case utc.Time:
		return v.Time, true
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
