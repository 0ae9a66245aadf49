// Simulation ties together the world map, caravans, and need resolution and runs them each tick.
package engine

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/talgya/caravan-needs/internal/agents"
	"github.com/talgya/caravan-needs/internal/caravan"
	"github.com/talgya/caravan-needs/internal/config"
	"github.com/talgya/caravan-needs/internal/entropy"
	"github.com/talgya/caravan-needs/internal/exposure"
	"github.com/talgya/caravan-needs/internal/needs"
	"github.com/talgya/caravan-needs/internal/water"
	"github.com/talgya/caravan-needs/internal/weather"
	"github.com/talgya/caravan-needs/internal/world"
)

const maxEvents = 1000

// Simulation holds the complete world state and wires systems together.
// Tick methods take the write lock; readers use View.
type Simulation struct {
	mu sync.RWMutex

	Tuning    config.Tuning
	WorldMap  *world.Map
	Waypoints []world.Waypoint
	Catalog   *water.Catalog

	Caravans     []*caravan.Caravan
	CaravanIndex map[uint64]*caravan.Caravan

	Resolver  *needs.Resolver
	Exposures *exposure.Log
	Logistics caravan.LogisticsCalc
	Spawner   *agents.Spawner

	Events   []Event // Recent events, trimmed to maxEvents
	LastTick uint64  // Most recent tick processed

	unsaved []Event // Events not yet handed to persistence

	// Live weather, nil when no API key is configured.
	WeatherClient  *weather.Client
	CurrentWeather weather.SimWeather
	CurrentSeason  uint8

	Stats SimStats

	rng *rand.Rand
}

// Event is a notable occurrence in the world.
type Event struct {
	Tick        uint64         `json:"tick" db:"tick"`
	Description string         `json:"description" db:"description"`
	Category    string         `json:"category" db:"category"` // "death", "arrival", "flight", "intervention", ...
	Meta        map[string]any `json:"meta,omitempty" db:"-"`
}

// SimStats tracks aggregate statistics.
type SimStats struct {
	Caravans    int     `json:"caravans"`
	Alive       int     `json:"alive"`
	Deaths      int     `json:"deaths"`
	Thirsty     int     `json:"thirsty"`
	AvgThirst   float64 `json:"avg_thirst"`
	AvgHygiene  float64 `json:"avg_hygiene"`
	WaterUnits  float64 `json:"water_units"`
	Portables   int     `json:"portables"`
	Immobilized int     `json:"immobilized"`
}

// NewSimulation creates a Simulation from generated or restored components. rnd drives
// the ambient water draws.
func NewSimulation(t config.Tuning, m *world.Map, waypoints []world.Waypoint, caravans []*caravan.Caravan, cat *water.Catalog, rnd entropy.Source) *Simulation {
	index := make(map[uint64]*caravan.Caravan, len(caravans))
	for _, c := range caravans {
		index[c.ID] = c
	}

	exposures := exposure.NewLog()
	calc := caravan.LogisticsCalc{
		Catalog:           cat,
		DailyWaterPerHead: t.Decay.DailyWaterPerHead,
		PortableUnits:     t.Needs.StoredDrinkAmount,
	}

	sim := &Simulation{
		Tuning:         t,
		WorldMap:       m,
		Waypoints:      waypoints,
		Catalog:        cat,
		Caravans:       caravans,
		CaravanIndex:   index,
		Resolver:       needs.NewResolver(t.Needs, cat, rnd, exposures, calc),
		Exposures:      exposures,
		Logistics:      calc,
		CurrentWeather: weather.Neutral,
		rng:            rand.New(rand.NewSource(t.Seed + 500)),
	}
	for _, c := range caravans {
		calc.Recache(c)
	}
	sim.updateStats()
	return sim
}

// View runs fn with the read lock held.
func (s *Simulation) View(fn func(*Simulation)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s)
}

// Update runs fn with the write lock held.
func (s *Simulation) Update(fn func(*Simulation)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

// CurrentTick returns the most recently processed tick number.
func (s *Simulation) CurrentTick() uint64 {
	return s.LastTick
}

// EmitEvent records an event. Caller holds the write lock.
func (s *Simulation) EmitEvent(e Event) {
	s.Events = append(s.Events, e)
	s.unsaved = append(s.unsaved, e)
}

// DrainEvents returns events emitted since the last drain. Caller holds the write lock.
func (s *Simulation) DrainEvents() []Event {
	out := s.unsaved
	s.unsaved = nil
	return out
}

// UnsavedEvents returns the events not yet acknowledged by storage. Caller holds the lock.
func (s *Simulation) UnsavedEvents() []Event {
	return append([]Event(nil), s.unsaved...)
}

// AckEvents drops the n oldest unsaved events. Caller holds the write lock.
func (s *Simulation) AckEvents(n int) {
	n = min(n, len(s.unsaved))
	s.unsaved = s.unsaved[n:]
	if len(s.unsaved) == 0 {
		s.unsaved = nil
	}
}

// TickMinute runs every tick (1 sim-minute): need decay, and need resolution every
// ResolveEveryTicks.
func (s *Simulation) TickMinute(tick uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.LastTick = tick
	s.Exposures.SetTick(tick)

	for _, c := range s.Caravans {
		for _, m := range c.Members {
			if agents.DecayNeeds(m, s.Tuning.Decay, s.Tuning.Needs.ThirstyBelow) {
				s.EmitEvent(Event{
					Tick:        tick,
					Description: fmt.Sprintf("%s of the %s died of thirst", m.Name, c.Name),
					Category:    "death",
					Meta:        map[string]any{"caravan_id": c.ID, "member_id": m.ID},
				})
				s.Logistics.Recache(c)
			}
		}
	}

	if every := uint64(s.Tuning.ResolveEveryTicks); every > 0 && tick%every == 0 {
		s.resolveNeeds()
	}
}

func (s *Simulation) resolveNeeds() {
	for _, c := range s.Caravans {
		s.Resolver.ResolveCaravan(c, s.envFor(c))
	}
}

func (s *Simulation) envFor(c *caravan.Caravan) needs.Env {
	env := needs.Env{RainfallMod: s.CurrentWeather.RainfallMod}
	if hex := s.WorldMap.Get(c.Position); hex != nil {
		env.Location = hex
	}
	return env
}

// TickHour runs every sim-hour: caravans move every MoveEveryTicks.
func (s *Simulation) TickHour(tick uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	every := uint64(s.Tuning.MoveEveryTicks)
	if every == 0 || tick%every != 0 {
		return
	}
	for _, c := range s.Caravans {
		s.moveCaravan(c, tick)
	}
}

// TickDay runs every sim-day: weather refresh, logistics, statistics, daily report.
func (s *Simulation) TickDay(tick uint64) {
	// Network fetch happens outside the lock.
	sw := s.fetchWeather()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.CurrentWeather = sw
	for _, c := range s.Caravans {
		s.Logistics.Recache(c)
	}
	s.updateStats()

	eventCounts := make(map[string]int)
	for _, e := range s.Events {
		eventCounts[e.Category]++
	}
	totals := s.Exposures.Totals()

	slog.Info("daily report",
		"tick", tick,
		"time", SimTime(tick),
		"weather", s.CurrentWeather.Description,
		"caravans", s.Stats.Caravans,
		"alive", s.Stats.Alive,
		"deaths", s.Stats.Deaths,
		"thirsty", s.Stats.Thirsty,
		"avg_thirst", fmt.Sprintf("%.3f", s.Stats.AvgThirst),
		"avg_hygiene", fmt.Sprintf("%.3f", s.Stats.AvgHygiene),
		"water", humanize.FormatFloat("#,###.#", s.Stats.WaterUnits),
		"bottles", humanize.Comma(int64(s.Stats.Portables)),
		"immobilized", s.Stats.Immobilized,
		"exposures_treated", humanize.Comma(int64(totals[water.Treated])),
		"exposures_untreated", humanize.Comma(int64(totals[water.Untreated])),
		"exposures_contaminated", humanize.Comma(int64(totals[water.Contaminated])),
		"events_death", eventCounts["death"],
		"events_arrival", eventCounts["arrival"],
	)

	for _, c := range s.Caravans {
		if c.Logistics.Immobilized {
			slog.Warn("caravan immobilized", "caravan", c.Name,
				"mass", humanize.FormatFloat("#,###.", c.Logistics.Mass),
				"capacity", humanize.FormatFloat("#,###.", c.Logistics.Capacity))
		}
	}

	if len(s.Events) > maxEvents {
		s.Events = s.Events[len(s.Events)-maxEvents:]
	}
}

func (s *Simulation) updateStats() {
	var st SimStats
	var thirstSum, hygieneSum float64
	var thirstN, hygieneN int

	st.Caravans = len(s.Caravans)
	for _, c := range s.Caravans {
		st.WaterUnits += c.Logistics.WaterUnits
		st.Portables += c.Logistics.Portables
		if c.Logistics.Immobilized {
			st.Immobilized++
		}
		for _, m := range c.Members {
			if m.Kind == agents.KindVehicle {
				continue
			}
			if !m.Alive {
				st.Deaths++
				continue
			}
			st.Alive++
			if th := m.Needs.Thirst; th != nil {
				thirstSum += th.Level
				thirstN++
				if th.Thirsty() {
					st.Thirsty++
				}
			}
			if h := m.Needs.Hygiene; h != nil {
				hygieneSum += h.Level
				hygieneN++
			}
		}
	}
	if thirstN > 0 {
		st.AvgThirst = thirstSum / float64(thirstN)
	}
	if hygieneN > 0 {
		st.AvgHygiene = hygieneSum / float64(hygieneN)
	}
	s.Stats = st
}
