package weather

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spotonhq/spoton/pkg/errors"
	"github.com/spotonhq/spoton/pkg/events"
	"github.com/spotonhq/spoton/pkg/logging"
)

func TestCityFor(t *testing.T) {
	assert.Equal(t, "Peje, Kosovo", CityFor("Peja Cultural Hall"))
	assert.Equal(t, DefaultCity, CityFor("Some Unknown Venue"), "unknown venues fall back to the capital")
	assert.Equal(t, DefaultCity, CityFor(""))
}

func newTestClient(t *testing.T, forecastJSON string) *Client {
	t.Helper()
	logging.DisableLoggingForTest(t)

	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.NotEmpty(t, r.URL.Query().Get("appid"))
		fmt.Fprint(w, `[{"lat":42.66,"lon":20.29}]`)
	}))
	t.Cleanup(geo.Close)

	forecast := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		fmt.Fprint(w, forecastJSON)
	}))
	t.Cleanup(forecast.Close)

	c, err := New("test-key", WithGeoBaseURL(geo.URL), WithForecastBaseURL(forecast.URL))
	require.NoError(t, err)
	return c
}

func TestEventDayPrefersMiddayEntry(t *testing.T) {
	c := newTestClient(t, `{"list":[
		{"dt_txt":"2025-11-17 09:00:00","main":{"temp":8,"temp_min":5,"temp_max":9},"weather":[{"description":"mist","icon":"50d"}]},
		{"dt_txt":"2025-11-17 12:00:00","main":{"temp":12,"temp_min":7,"temp_max":13},"weather":[{"description":"clear sky","icon":"01d"}]},
		{"dt_txt":"2025-11-18 12:00:00","main":{"temp":6,"temp_min":2,"temp_max":7},"weather":[{"description":"rain","icon":"10d"}]}
	]}`)

	f, err := c.EventDay(context.Background(), events.Event{
		Name:     "Jazz Night",
		Date:     "Nov 17, 2025",
		Location: "Peja Cultural Hall",
	})
	require.NoError(t, err)
	assert.Equal(t, "Peje, Kosovo", f.City)
	assert.Equal(t, 12.0, f.Temp)
	assert.Equal(t, "clear sky", f.Description)
	assert.Equal(t, "01d", f.Icon)
}

func TestEventDayFallsBackToFirstEntryOfDay(t *testing.T) {
	c := newTestClient(t, `{"list":[
		{"dt_txt":"2025-11-17 18:00:00","main":{"temp":9,"temp_min":6,"temp_max":10},"weather":[{"description":"clouds","icon":"03d"}]},
		{"dt_txt":"2025-11-17 21:00:00","main":{"temp":7,"temp_min":4,"temp_max":8},"weather":[{"description":"clouds","icon":"03n"}]}
	]}`)

	f, err := c.ForDay(context.Background(), "Peje, Kosovo", time.Date(2025, 11, 17, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 9.0, f.Temp)
}

func TestEventDayOutsideForecastWindow(t *testing.T) {
	c := newTestClient(t, `{"list":[
		{"dt_txt":"2025-11-17 12:00:00","main":{"temp":12},"weather":[]}
	]}`)

	_, err := c.ForDay(context.Background(), "Peje, Kosovo", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, errors.IsNotFound(err))
}

func TestEventDayBadDate(t *testing.T) {
	c := newTestClient(t, `{"list":[]}`)

	_, err := c.EventDay(context.Background(), events.Event{Date: "2025-11-17", Location: "x"})
	assert.True(t, errors.IsValidationError(err))
}

func TestUnknownCity(t *testing.T) {
	logging.DisableLoggingForTest(t)
	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	t.Cleanup(geo.Close)

	c, err := New("test-key", WithGeoBaseURL(geo.URL))
	require.NoError(t, err)

	_, err = c.ForDay(context.Background(), "Atlantis", time.Now())
	assert.True(t, errors.IsNotFound(err))
}

func TestAPIErrorSurfaces(t *testing.T) {
	logging.DisableLoggingForTest(t)
	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid key", http.StatusUnauthorized)
	}))
	t.Cleanup(geo.Close)

	c, err := New("bad-key", WithGeoBaseURL(geo.URL))
	require.NoError(t, err)

	_, err = c.ForDay(context.Background(), "Peje, Kosovo", time.Now())
	require.Error(t, err)
	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}
