package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spotonhq/spoton/pkg/errors"
)

func TestEventValidate(t *testing.T) {
	valid := Event{
		ID:       "seed-01",
		Name:     "Jazz Night",
		Date:     "Nov 17, 2025",
		Location: "Peja Cultural Hall",
		Price:    20,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Event)
	}{
		{"missing id", func(e *Event) { e.ID = "" }},
		{"missing name", func(e *Event) { e.Name = "" }},
		{"missing date", func(e *Event) { e.Date = "" }},
		{"missing location", func(e *Event) { e.Location = "" }},
		{"negative price", func(e *Event) { e.Price = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			err := e.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))
		})
	}
}

func TestEventDay(t *testing.T) {
	e := Event{Date: "Nov 17, 2025"}
	day, err := e.Day()
	require.NoError(t, err)
	assert.Equal(t, 2025, day.Year())
	assert.Equal(t, "November", day.Month().String())
	assert.Equal(t, 17, day.Day())

	bad := Event{Date: "2025-11-17"}
	_, err = bad.Day()
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestEventIsSeed(t *testing.T) {
	assert.True(t, Event{ID: "seed-01"}.IsSeed())
	assert.False(t, Event{ID: "8d4e7f9a-1b2c-4d3e-9f8a-7b6c5d4e3f2a"}.IsSeed())
}

func TestEventRemaining(t *testing.T) {
	assert.Equal(t, -1, Event{}.Remaining(), "absent quantity means unlimited")
	assert.Equal(t, 3, Event{Quantity: Int(3)}.Remaining())
	assert.Equal(t, 0, Event{Quantity: Int(0)}.Remaining())
}

func TestReviewValidate(t *testing.T) {
	valid := Review{EventID: "seed-01", UserID: "guest-1", Rating: 4}
	require.NoError(t, valid.Validate())

	for _, rating := range []int{0, -1, 6} {
		r := valid
		r.Rating = rating
		err := r.Validate()
		require.Error(t, err, "rating %d", rating)
		assert.True(t, errors.IsValidationError(err))
	}

	r := valid
	r.UserID = ""
	assert.Error(t, r.Validate())
}
