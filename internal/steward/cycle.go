package steward

import (
	"context"
	"fmt"
	"log/slog"
)

// Steward runs observe, triage, decide, act cycles.
type Steward struct {
	Observer   *Observer
	Actor      *Actor
	Memory     *CycleMemory
	Thresholds Thresholds
	Cooldown   uint64 // ticks before the same caravan is helped again
}

// New creates a Steward with default thresholds and a one-day cooldown.
func New(apiURL, adminKey string, mem *CycleMemory) *Steward {
	return &Steward{
		Observer:   NewObserver(apiURL),
		Actor:      NewActor(apiURL, adminKey),
		Memory:     mem,
		Thresholds: DefaultThresholds(),
		Cooldown:   1440,
	}
}

// RunCycle executes one cycle and records it. The decision is returned even when acting fails.
func (s *Steward) RunCycle(ctx context.Context) (Decision, error) {
	snap, err := s.Observer.Observe(ctx)
	if err != nil {
		return Decision{}, fmt.Errorf("observe: %w", err)
	}
	h := Triage(snap, s.Thresholds)
	slog.Info("observation complete",
		"tick", snap.Status.Tick,
		"caravans", len(snap.Caravans),
		"level", h.Level,
		"dry", len(h.Dry),
		"low", len(h.Low),
		"contaminated_share", fmt.Sprintf("%.2f", h.ContaminatedShare),
	)

	d := Decide(snap, h, s.Memory, s.Cooldown)
	rec := CycleRecord{Tick: snap.Status.Tick, Action: d.Action, Level: h.Level, Rationale: d.Rationale}
	if d.Intervention == nil {
		s.Memory.Record(rec)
		s.Memory.Save()
		slog.Info("steward cycle complete, no intervention", "rationale", d.Rationale)
		return d, nil
	}

	rec.Caravan = d.Intervention.Caravan
	result, err := s.Actor.Act(ctx, d.Intervention)
	if err != nil {
		return d, fmt.Errorf("act: %w", err)
	}
	s.Memory.Record(rec)
	s.Memory.Save()

	slog.Info("intervention executed",
		"type", d.Intervention.Type,
		"caravan", d.Intervention.Caravan,
		"success", result.Success,
		"details", result.Details,
	)
	return d, nil
}
