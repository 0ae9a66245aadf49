// Seasonal effects and weather refresh.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/talgya/caravan-needs/internal/weather"
)

// Seasons in calendar order.
const (
	SeasonSpring = iota
	SeasonSummer
	SeasonAutumn
	SeasonWinter
)

var seasonNames = [...]string{"Spring", "Summer", "Autumn", "Winter"}

// SeasonName returns the display name of a season index.
func SeasonName(season uint8) string {
	if int(season) < len(seasonNames) {
		return seasonNames[season]
	}
	return "Unknown"
}

// TickSeason runs every sim-season: the season turns and, without live weather, the
// seasonal rainfall baseline takes over.
func (s *Simulation) TickSeason(tick uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.CurrentSeason = SeasonAt(tick)
	if s.WeatherClient == nil {
		s.CurrentWeather = weather.MapToSim(nil, s.CurrentSeason)
	}

	slog.Info("season change",
		"tick", tick,
		"time", SimTime(tick),
		"season", SeasonName(s.CurrentSeason),
		"rainfall_mod", fmt.Sprintf("%.2f", s.CurrentWeather.RainfallMod),
	)
	s.EmitEvent(Event{
		Tick:        tick,
		Description: fmt.Sprintf("%s arrives: %s", SeasonName(s.CurrentSeason), s.CurrentWeather.Description),
		Category:    "season",
	})
}

// fetchWeather returns live weather when a client is configured, falling back to the
// seasonal baseline on error.
func (s *Simulation) fetchWeather() weather.SimWeather {
	s.mu.RLock()
	client, season := s.WeatherClient, s.CurrentSeason
	s.mu.RUnlock()

	if client == nil {
		return weather.MapToSim(nil, season)
	}
	cond, err := client.Fetch(context.Background())
	if err != nil {
		slog.Warn("weather fetch failed, using seasonal baseline", "error", err)
		return weather.MapToSim(nil, season)
	}
	return weather.MapToSim(cond, season)
}
