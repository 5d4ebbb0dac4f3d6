// Package fetch produces weather snapshots from a remote provider and feeds
// them to the panel's weather store.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/flavioheleno/wxpanel/weather"
)

// Provider returns the current weather.
type Provider interface {
	Name() string
	Current(ctx context.Context) (weather.Snapshot, error)
}

// OpenWeatherMapOpts configures an OpenWeatherMap provider.
type OpenWeatherMapOpts struct {
	URL    string // current weather endpoint
	APIKey string
	City   string
	Units  string // "metric", anything else requests imperial units
	Client *http.Client
	Now    func() time.Time // stamps LastUpdated, nil uses time.Now
}

// OpenWeatherMap queries the OpenWeatherMap current weather API.
type OpenWeatherMap struct {
	endpoint   string
	units      string
	httpClient *http.Client
	now        func() time.Time
}

// NewOpenWeatherMap returns a provider for opts.City.
func NewOpenWeatherMap(opts OpenWeatherMapOpts) (*OpenWeatherMap, error) {
	if opts.APIKey == "" {
		return nil, errors.New("fetch: api key is required")
	}
	if opts.City == "" {
		return nil, errors.New("fetch: city is required")
	}
	u, err := url.Parse(opts.URL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("fetch: invalid endpoint %q", opts.URL)
	}
	units := "imperial"
	if opts.Units == "metric" {
		units = "metric"
	}
	params := url.Values{}
	params.Set("q", opts.City)
	params.Set("appid", opts.APIKey)
	params.Set("units", units)
	u.RawQuery = params.Encode()

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &OpenWeatherMap{
		endpoint:   u.String(),
		units:      units,
		httpClient: client,
		now:        now,
	}, nil
}

// Name returns the provider name.
func (p *OpenWeatherMap) Name() string {
	return "OpenWeatherMap"
}

type owmResponse struct {
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
		Pressure  float64 `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Clouds struct {
		All float64 `json:"all"`
	} `json:"clouds"`
	Visibility float64 `json:"visibility"`
	Weather    []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Sys struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
	Timezone int `json:"timezone"`
}

// Current fetches the current weather. Wind speed is converted to km/h and
// visibility to km; sunrise and sunset are in the city's time zone.
func (p *OpenWeatherMap) Current(ctx context.Context) (weather.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint, nil)
	if err != nil {
		return weather.Snapshot{}, fmt.Errorf("fetch: create request: %w", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return weather.Snapshot{}, fmt.Errorf("fetch: execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return weather.Snapshot{}, fmt.Errorf("fetch: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return weather.Snapshot{}, fmt.Errorf("fetch: api error (status %d): %s", resp.StatusCode, body)
	}

	var r owmResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return weather.Snapshot{}, fmt.Errorf("fetch: parse response: %w", err)
	}

	wind := r.Wind.Speed * 3.6 // m/s
	if p.units != "metric" {
		wind = r.Wind.Speed * 1.609344 // mph
	}
	zone := time.FixedZone("", r.Timezone)
	s := weather.Snapshot{
		Temperature:   r.Main.Temp,
		FeelsLike:     r.Main.FeelsLike,
		Humidity:      r.Main.Humidity,
		Pressure:      r.Main.Pressure,
		WindSpeed:     wind,
		CloudCoverage: r.Clouds.All,
		Visibility:    r.Visibility / 1000,
		Sunrise:       time.Unix(r.Sys.Sunrise, 0).In(zone),
		Sunset:        time.Unix(r.Sys.Sunset, 0).In(zone),
		LastUpdated:   p.now(),
	}
	if len(r.Weather) > 0 {
		s.Description = r.Weather[0].Description
		s.Icon = r.Weather[0].Icon
	}
	return s, nil
}

var _ Provider = (*OpenWeatherMap)(nil)
