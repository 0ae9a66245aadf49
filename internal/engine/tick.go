// Package engine provides the tick-based simulation loop and the caravan world it drives.
package engine

import (
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"
)

// One tick is one sim-minute.
const (
	TicksPerSimHour   = 60
	TicksPerSimDay    = 24 * TicksPerSimHour
	DaysPerSeason     = 90
	TicksPerSimSeason = DaysPerSeason * TicksPerSimDay
)

// Engine owns the tick counter and calls back into the simulation on each layer.
type Engine struct {
	Tick     uint64        // monotonic, restored from the database on restart
	Interval time.Duration // wall time per tick at speed 1

	speed   atomic.Uint64 // float64 bits; 0 pauses
	running atomic.Bool

	OnTick   func(tick uint64) // needs decay and resolution
	OnHour   func(tick uint64) // movement
	OnDay    func(tick uint64) // weather, logistics, report, save
	OnSeason func(tick uint64)
}

// NewEngine returns an engine ticking once per second at speed 1.
func NewEngine() *Engine {
	e := &Engine{Interval: time.Second}
	e.SetSpeed(1.0)
	return e
}

// Speed returns the current speed multiplier.
func (e *Engine) Speed() float64 {
	return math.Float64frombits(e.speed.Load())
}

// SetSpeed changes the speed multiplier. Zero pauses the loop.
func (e *Engine) SetSpeed(v float64) {
	e.speed.Store(math.Float64bits(v))
}

// Running reports whether Run is looping.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Run steps the simulation until Stop is called. Each tick takes Interval/speed of wall
// time; at speed zero the loop idles.
func (e *Engine) Run() {
	e.running.Store(true)
	slog.Info("simulation engine started", "tick", e.Tick, "speed", e.Speed())
	for e.running.Load() {
		speed := e.Speed()
		if speed <= 0 {
			time.Sleep(idlePoll)
			continue
		}
		began := time.Now()
		e.Step()
		time.Sleep(time.Duration(float64(e.Interval)/speed) - time.Since(began))
	}
	slog.Info("simulation engine stopped", "tick", e.Tick)
}

const idlePoll = 100 * time.Millisecond

// Stop makes Run return after the tick in progress.
func (e *Engine) Stop() {
	e.running.Store(false)
}

// Step advances one tick and fires every layer whose period divides it, finest first.
func (e *Engine) Step() {
	e.Tick++
	for _, l := range []struct {
		every uint64
		fn    func(uint64)
	}{
		{1, e.OnTick},
		{TicksPerSimHour, e.OnHour},
		{TicksPerSimDay, e.OnDay},
		{TicksPerSimSeason, e.OnSeason},
	} {
		if l.fn != nil && e.Tick%l.every == 0 {
			l.fn(e.Tick)
		}
	}
}

// Calendar is a tick broken into simulation date and time. Day and Year count from 1.
type Calendar struct {
	Year   uint64
	Season uint8
	Day    uint64
	Hour   uint64
	Minute uint64
}

// CalendarAt converts a tick to a calendar date.
func CalendarAt(tick uint64) Calendar {
	days := tick / TicksPerSimDay
	seasons := days / DaysPerSeason
	return Calendar{
		Year:   seasons/4 + 1,
		Season: uint8(seasons % 4),
		Day:    days%DaysPerSeason + 1,
		Hour:   tick % TicksPerSimDay / TicksPerSimHour,
		Minute: tick % TicksPerSimHour,
	}
}

func (c Calendar) String() string {
	return fmt.Sprintf("%s Day %d, %d:%02d Year %d", SeasonName(c.Season), c.Day, c.Hour, c.Minute, c.Year)
}

// SimTime formats tick as e.g. "Summer Day 3, 14:05 Year 1".
func SimTime(tick uint64) string {
	return CalendarAt(tick).String()
}

// SeasonAt returns the season index (0=Spring to 3=Winter) for tick.
func SeasonAt(tick uint64) uint8 {
	return CalendarAt(tick).Season
}
