package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
)

const (
	defaultBaseURL = "http://api.openweathermap.org"
	defaultTimeout = 10 * time.Second

	geocodePath      = "/geo/1.0/direct"
	weatherPath      = "/data/2.5/weather"
	airPollutionPath = "/data/2.5/air_pollution"
)

// Coordinates is a geocoded city position.
type Coordinates struct {
	Lat float64
	Lon float64
}

// WeatherSnapshot is the current-conditions reading for a city.
type WeatherSnapshot struct {
	Temperature float64 // degrees Celsius
	Condition   string
	Humidity    int
	WindSpeed   float64 // m/s
	ObservedAt  time.Time
}

// AirSnapshot is the air-quality reading for a coordinate pair.
type AirSnapshot struct {
	AQI  int // 1 (Good) to 5 (Very Poor)
	PM25 float64
	PM10 float64
	CO   float64
	NO2  float64
	O3   float64
}

// Client issues calls against the OpenWeatherMap geocoding, current-weather,
// and air-pollution endpoints. Every call carries an explicit timeout and maps
// non-success statuses and missing fields to typed errors. The client performs
// no retries; retry policy belongs to the caller. Each endpoint sits behind
// its own circuit breaker so a misbehaving endpoint fails fast without
// dragging the others down.
//
// Client is stateless apart from the breakers and safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	geoCB      *gobreaker.CircuitBreaker
	weatherCB  *gobreaker.CircuitBreaker
	airCB      *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the upstream base URL. Used by tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout sets the per-call timeout.
// Default is 10 seconds.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
	}
}

// NewClient creates an OpenWeatherMap client.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}

	c := &Client{
		apiKey:    apiKey,
		baseURL:   defaultBaseURL,
		timeout:   defaultTimeout,
		geoCB:     newBreaker("geocode"),
		weatherCB: newBreaker("weather"),
		airCB:     newBreaker("air_pollution"),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c, nil
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// Geocode resolves a city name to coordinates.
// Returns ErrCityNotFound when the geocoder has no match.
func (c *Client) Geocode(ctx context.Context, city string) (Coordinates, error) {
	values := url.Values{}
	values.Set("q", city)
	values.Set("limit", "1")
	values.Set("appid", c.apiKey)

	var payload []struct {
		Lat *float64 `json:"lat"`
		Lon *float64 `json:"lon"`
	}
	if err := c.getJSON(ctx, c.geoCB, geocodePath, values, &payload); err != nil {
		return Coordinates{}, err
	}

	// The geocoder signals an unknown city with an empty array, not a 404.
	if len(payload) == 0 {
		return Coordinates{}, fmt.Errorf("%w: %q", ErrCityNotFound, city)
	}
	if payload[0].Lat == nil || payload[0].Lon == nil {
		return Coordinates{}, fmt.Errorf("%w: geocode result missing coordinates", ErrMalformedResponse)
	}

	return Coordinates{Lat: *payload[0].Lat, Lon: *payload[0].Lon}, nil
}

// CurrentConditions fetches the current weather for a city.
func (c *Client) CurrentConditions(ctx context.Context, city string) (WeatherSnapshot, error) {
	values := url.Values{}
	values.Set("q", city)
	values.Set("units", "metric")
	values.Set("appid", c.apiKey)

	var payload struct {
		Cod  json.Number `json:"cod"` // OpenWeatherMap reports errors in the body too
		Dt   int64       `json:"dt"`
		Main *struct {
			Temp     float64 `json:"temp"`
			Humidity int     `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
		Message string `json:"message"`
	}
	if err := c.getJSON(ctx, c.weatherCB, weatherPath, values, &payload); err != nil {
		return WeatherSnapshot{}, err
	}

	if cod, err := payload.Cod.Int64(); err == nil && cod != http.StatusOK {
		return WeatherSnapshot{}, fmt.Errorf("%w: weather cod=%d message=%q", ErrUpstreamStatus, cod, payload.Message)
	}
	if payload.Main == nil || len(payload.Weather) == 0 {
		return WeatherSnapshot{}, fmt.Errorf("%w: weather response missing required fields", ErrMalformedResponse)
	}

	observedAt := time.Unix(payload.Dt, 0).UTC()
	if payload.Dt == 0 {
		observedAt = time.Now().UTC()
	}

	return WeatherSnapshot{
		Temperature: payload.Main.Temp,
		Condition:   payload.Weather[0].Description,
		Humidity:    payload.Main.Humidity,
		WindSpeed:   payload.Wind.Speed,
		ObservedAt:  observedAt,
	}, nil
}

// AirQuality fetches the air-pollution reading for a coordinate pair.
func (c *Client) AirQuality(ctx context.Context, lat, lon float64) (AirSnapshot, error) {
	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", lat))
	values.Set("lon", fmt.Sprintf("%f", lon))
	values.Set("appid", c.apiKey)

	var payload struct {
		List []struct {
			Main struct {
				AQI int `json:"aqi"`
			} `json:"main"`
			Components struct {
				PM25 float64 `json:"pm2_5"`
				PM10 float64 `json:"pm10"`
				CO   float64 `json:"co"`
				NO2  float64 `json:"no2"`
				O3   float64 `json:"o3"`
			} `json:"components"`
		} `json:"list"`
	}
	if err := c.getJSON(ctx, c.airCB, airPollutionPath, values, &payload); err != nil {
		return AirSnapshot{}, err
	}

	if len(payload.List) == 0 {
		return AirSnapshot{}, fmt.Errorf("%w: air pollution response missing list", ErrMalformedResponse)
	}

	entry := payload.List[0]
	return AirSnapshot{
		AQI:  entry.Main.AQI,
		PM25: entry.Components.PM25,
		PM10: entry.Components.PM10,
		CO:   entry.Components.CO,
		NO2:  entry.Components.NO2,
		O3:   entry.Components.O3,
	}, nil
}

// getJSON performs one GET through the endpoint's circuit breaker and decodes
// the response body into out. No retries.
func (c *Client) getJSON(ctx context.Context, cb *gobreaker.CircuitBreaker, path string, values url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := fmt.Sprintf("%s%s?%s", c.baseURL, path, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	_, err = cb.Execute(func() (any, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("%w: %s %d", ErrUpstreamStatus, path, resp.StatusCode)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		return nil, nil
	})
	if err != nil {
		c.logger.Debug("upstream call failed", "path", path, "err", err)
		return err
	}
	return nil
}
