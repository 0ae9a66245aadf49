// Package weather turns live OpenWeatherMap conditions, or a seasonal baseline when
// none are available, into the rainfall modifier used for ambient water checks.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	owmURL       = "https://api.openweathermap.org/data/2.5/weather"
	cacheFor     = 5 * time.Minute
	firstBackoff = time.Minute
	maxBackoff   = 10 * time.Minute
	stormWind    = 15.0 // m/s
)

// Conditions is the subset of a weather report the simulation uses.
type Conditions struct {
	Temp        float64 `json:"temp"` // Celsius
	Description string  `json:"description"`
	WindSpeed   float64 `json:"wind_speed"` // m/s
	RainMM      float64 `json:"rain_mm"`    // last hour
	IsStorm     bool    `json:"is_storm"`
	IsSnow      bool    `json:"is_snow"`
	IsRain      bool    `json:"is_rain"`
}

// Client polls OpenWeatherMap for one location. Reports are cached for a few minutes,
// and failures back off exponentially while the last good report keeps being served.
type Client struct {
	key      string
	location string
	baseURL  string
	http     *http.Client

	mu        sync.Mutex
	last      *Conditions
	fetchedAt time.Time
	retryAt   time.Time
	backoff   time.Duration
}

// NewClient returns a client for location, or nil when apiKey is empty.
func NewClient(apiKey, location string) *Client {
	if apiKey == "" {
		return nil
	}
	if location == "" {
		location = "Tucson,US"
	}
	return &Client{key: apiKey, location: location, baseURL: owmURL, http: &http.Client{Timeout: 10 * time.Second}}
}

// Fetch returns current conditions. An error is returned only when no report has ever
// been fetched.
func (c *Client) Fetch(ctx context.Context) (*Conditions, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if c.last != nil && now.Sub(c.fetchedAt) < cacheFor {
		return c.last, nil
	}
	if now.Before(c.retryAt) {
		if c.last != nil {
			return c.last, nil
		}
		return nil, fmt.Errorf("weather: backing off until %s", c.retryAt.Format(time.TimeOnly))
	}

	cond, err := c.query(ctx)
	if err != nil {
		c.backoff = min(max(2*c.backoff, firstBackoff), maxBackoff)
		c.retryAt = now.Add(c.backoff)
		if c.last != nil {
			slog.Debug("weather fetch failed, serving last report", "error", err)
			return c.last, nil
		}
		return nil, err
	}
	c.last, c.fetchedAt, c.backoff = cond, now, 0
	return cond, nil
}

// owmReport mirrors the fields read from the current-weather endpoint.
type owmReport struct {
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Rain struct {
		LastHour float64 `json:"1h"`
	} `json:"rain"`
}

func (c *Client) query(ctx context.Context) (*Conditions, error) {
	q := url.Values{"q": {c.location}, "appid": {c.key}, "units": {"metric"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("weather: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	var r owmReport
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("weather decode: %w", err)
	}

	cond := &Conditions{Temp: r.Main.Temp, WindSpeed: r.Wind.Speed, RainMM: r.Rain.LastHour}
	if len(r.Weather) > 0 {
		cond.Description = r.Weather[0].Description
		switch strings.ToLower(r.Weather[0].Main) {
		case "rain", "drizzle":
			cond.IsRain = true
		case "snow":
			cond.IsSnow = true
		case "thunderstorm":
			cond.IsStorm = true
		}
	}
	cond.IsStorm = cond.IsStorm || cond.WindSpeed > stormWind
	slog.Debug("weather fetched", "location", c.location, "temp", cond.Temp, "desc", cond.Description)
	return cond, nil
}
