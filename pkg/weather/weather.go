// Package weather looks up the forecast for an event's day. Venues map to
// city names through a fixed table with a capital-city fallback; the city
// is geocoded once and the 5-day forecast scanned for the entry matching
// the event date. Events further out than the forecast window simply have
// no forecast, which is not an error worth surfacing to the screen.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spotonhq/spoton/pkg/errors"
	"github.com/spotonhq/spoton/pkg/events"
	"github.com/spotonhq/spoton/pkg/logging"
)

// DefaultCity is the fallback for venues missing from the mapping.
const DefaultCity = "Pristina, Kosovo"

// venueCities maps known venue names to geocodable city names.
var venueCities = map[string]string{
	"Peja Cultural Hall":    "Peje, Kosovo",
	"Mother Teresa Square":  "Pristina, Kosovo",
	"Kino Armata":           "Pristina, Kosovo",
	"Soma Book Station":     "Pristina, Kosovo",
	"Prizren Castle":        "Prizren, Kosovo",
	"Gjakova Old Bazaar":    "Gjakove, Kosovo",
	"Germia Park":           "Pristina, Kosovo",
	"Palace of Youth":       "Pristina, Kosovo",
	"National Library Park": "Pristina, Kosovo",
}

// CityFor resolves a venue to its forecast city.
func CityFor(venue string) string {
	if city, ok := venueCities[venue]; ok {
		return city
	}
	return DefaultCity
}

// Forecast is the weather for one event day.
type Forecast struct {
	City        string
	Temp        float64
	TempMin     float64
	TempMax     float64
	Description string
	Icon        string
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithGeoBaseURL overrides the geocoding endpoint, for tests.
func WithGeoBaseURL(base string) Option {
	return func(c *Client) { c.geoBase = base }
}

// WithForecastBaseURL overrides the forecast endpoint, for tests.
func WithForecastBaseURL(base string) Option {
	return func(c *Client) { c.forecastBase = base }
}

// Client talks to the OpenWeather geocoding and forecast APIs.
type Client struct {
	http         *http.Client
	apiKey       string
	geoBase      string
	forecastBase string
}

// New creates a weather client.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.NewConfigError("weather", "API key is required", nil)
	}
	c := &Client{
		http:         &http.Client{Timeout: 10 * time.Second},
		apiKey:       apiKey,
		geoBase:      "https://api.openweathermap.org/geo/1.0",
		forecastBase: "https://api.openweathermap.org/data/2.5",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// EventDay returns the forecast for an event's venue on its date.
// ErrNotFound means the date is outside the forecast window.
func (c *Client) EventDay(ctx context.Context, event events.Event) (Forecast, error) {
	day, err := event.Day()
	if err != nil {
		return Forecast{}, err
	}
	return c.ForDay(ctx, CityFor(event.Location), day)
}

// ForDay returns the forecast for a city on the given day.
func (c *Client) ForDay(ctx context.Context, city string, day time.Time) (Forecast, error) {
	lat, lon, err := c.geocode(ctx, city)
	if err != nil {
		return Forecast{}, err
	}

	entry, err := c.forecastEntry(ctx, lat, lon, day)
	if err != nil {
		return Forecast{}, err
	}

	f := Forecast{
		City:    city,
		Temp:    entry.Main.Temp,
		TempMin: entry.Main.TempMin,
		TempMax: entry.Main.TempMax,
	}
	if len(entry.Weather) > 0 {
		f.Description = entry.Weather[0].Description
		f.Icon = entry.Weather[0].Icon
	}

	logging.Ctx(ctx).Debug().
		Str("city", city).
		Str("day", day.Format("2006-01-02")).
		Float64("temp", f.Temp).
		Msg("Resolved event day forecast")
	return f, nil
}

type geoResult struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (c *Client) geocode(ctx context.Context, city string) (lat, lon float64, err error) {
	endpoint := fmt.Sprintf("%s/direct?q=%s&limit=1&appid=%s",
		c.geoBase, url.QueryEscape(city), url.QueryEscape(c.apiKey))

	var results []geoResult
	if err := c.getJSON(ctx, endpoint, &results); err != nil {
		return 0, 0, err
	}
	if len(results) == 0 {
		return 0, 0, errors.NewNotFoundError("city", city)
	}
	return results[0].Lat, results[0].Lon, nil
}

type forecastEntry struct {
	DtTxt string `json:"dt_txt"`
	Main  struct {
		Temp    float64 `json:"temp"`
		TempMin float64 `json:"temp_min"`
		TempMax float64 `json:"temp_max"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
}

type forecastResponse struct {
	List []forecastEntry `json:"list"`
}

// forecastEntry picks the forecast entry for the day: the midday entry
// when present, otherwise the first entry of that day.
func (c *Client) forecastEntry(ctx context.Context, lat, lon float64, day time.Time) (forecastEntry, error) {
	endpoint := fmt.Sprintf("%s/forecast?lat=%f&lon=%f&units=metric&appid=%s",
		c.forecastBase, lat, lon, url.QueryEscape(c.apiKey))

	var resp forecastResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return forecastEntry{}, err
	}

	prefix := day.Format("2006-01-02")
	var first *forecastEntry
	for i := range resp.List {
		entry := &resp.List[i]
		if !strings.HasPrefix(entry.DtTxt, prefix) {
			continue
		}
		if strings.HasSuffix(entry.DtTxt, "12:00:00") {
			return *entry, nil
		}
		if first == nil {
			first = entry
		}
	}
	if first != nil {
		return *first, nil
	}
	return forecastEntry{}, errors.NewNotFoundError("forecast", prefix)
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.WrapAPI("openweather", 0, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.WrapAPI("openweather", 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.NewAPIError("openweather", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.WrapParse("json", endpoint, err)
	}
	return nil
}
