package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromDocumentNormalizesShapes(t *testing.T) {
	fields := map[string]any{
		"name":         "Indie Film Screening",
		"date":         "Dec 2, 2025",
		"location":     "Kino Armata",
		"image":        map[string]any{"uri": "https://img.example/film.jpg"},
		"price":        "25",
		"organized_by": "Kino Armata",
		"quantity":     float64(40),
		"sold":         float64(3),
		"ownerId":      "guest-abc",
		"createdAt":    "2025-10-01T12:00:00Z",
	}

	e, err := FromDocument("doc-1", fields)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", e.ID)
	assert.Equal(t, OriginRemote, e.Origin)
	assert.Equal(t, "https://img.example/film.jpg", e.Image, "legacy {uri:} image flattens to a string")
	assert.Equal(t, 25.0, e.Price, "string price parses")
	assert.Equal(t, 40, *e.Quantity)
	assert.Equal(t, 3, e.Sold)
	assert.Equal(t, "guest-abc", e.OwnerID)
	assert.False(t, e.CreatedAt.IsZero())
}

func TestFromDocumentDefaults(t *testing.T) {
	e, err := FromDocument("doc-2", map[string]any{
		"name": "Open Mic",
		"date": "Jan 9, 2026",
	})
	require.NoError(t, err)
	assert.Zero(t, e.Price, "missing price defaults to 0")
	assert.Zero(t, e.Attendees, "missing attendees defaults to 0")
	assert.Nil(t, e.Quantity, "missing quantity stays unlimited")
	assert.Empty(t, e.Image)
}

func TestFromDocumentRejectsMalformed(t *testing.T) {
	_, err := FromDocument("", map[string]any{"name": "x", "date": "y"})
	assert.Error(t, err)

	_, err = FromDocument("doc-3", map[string]any{"date": "Jan 9, 2026"})
	assert.Error(t, err, "document with no name is dropped")

	_, err = FromDocument("doc-4", map[string]any{"name": "Open Mic"})
	assert.Error(t, err, "document with no date is dropped")
}

func TestDocumentFieldsRoundTrip(t *testing.T) {
	q := 40
	e := Event{
		ID:       "doc-5",
		Name:     "Open Mic",
		Date:     "Jan 9, 2026",
		Location: "Soma Book Station",
		Price:    5,
		Image:    "https://img.example/mic.jpg",
		OwnerID:  "guest-abc",
		Quantity: &q,
		Sold:     2,
	}

	back, err := FromDocument(e.ID, e.DocumentFields())
	require.NoError(t, err)
	back.Origin = "" // origin is a merge-time stamp, not a stored field
	e.Origin = ""
	assert.Equal(t, e, back)
}
