// Package needs resolves caravan members' thirst, bladder, and hygiene needs against the
// caravan's shared water pool and whatever rain or river water is at hand.
package needs

import (
	"log/slog"

	"github.com/talgya/caravan-needs/internal/agents"
	"github.com/talgya/caravan-needs/internal/caravan"
	"github.com/talgya/caravan-needs/internal/config"
	"github.com/talgya/caravan-needs/internal/entropy"
	"github.com/talgya/caravan-needs/internal/items"
	"github.com/talgya/caravan-needs/internal/water"
)

// Env is the per-tick environment of one caravan.
type Env struct {
	Location    caravan.Location
	RainfallMod float64 // weather multiplier on annual rainfall
}

// Resolver runs the per-member need resolution for a caravan.
type Resolver struct {
	Tuning  config.Needs
	Catalog *water.Catalog
	Ambient caravan.Ambient
	Locator caravan.Locator
	Ledger  caravan.Ledger

	chain []strategy
}

// NewResolver wires a resolver. Hooks run after every portable consumption.
func NewResolver(t config.Needs, cat *water.Catalog, rnd entropy.Source, sink caravan.ExposureSink, hooks ...caravan.RecacheHook) *Resolver {
	r := &Resolver{
		Tuning:  t,
		Catalog: cat,
		Ambient: caravan.Ambient{Rand: rnd, MaxRainfall: t.MaxRainfall},
		Locator: caravan.Locator{Policy: water.Policy{Catalog: cat}},
		Ledger:  caravan.Ledger{Exposure: sink, Ingest: caravan.Drink{}, Hooks: hooks},
	}
	r.chain = r.hydrationChain()
	return r
}

// turn is one member's resolution state within a tick.
type turn struct {
	c       *caravan.Caravan
	m       *agents.Member
	ambient caravan.AmbientState
}

// ResolveCaravan resolves every member of c in list order. Only shared-pool caravans
// are handled; dead members and members of other groups are skipped.
func (r *Resolver) ResolveCaravan(c *caravan.Caravan, env Env) {
	if !c.SharesPool() {
		return
	}
	for _, m := range c.Members {
		if !m.Alive || m.CaravanID != c.ID {
			continue
		}
		r.resolveMember(c, m, env)
	}
}

func (r *Resolver) resolveMember(c *caravan.Caravan, m *agents.Member, env Env) {
	t := &turn{c: c, m: m}
	airborne := c.InFlight || m.Airborne

	if !airborne {
		t.ambient = r.Ambient.Check(env.Location, env.RainfallMod, false)
	}
	r.resolveBladder(t, airborne)
	r.resolveThirst(t)
	r.resolveHygiene(t)
}

func (r *Resolver) resolveBladder(t *turn, airborne bool) {
	b := t.m.Needs.Bladder
	if b == nil {
		return
	}
	if !airborne {
		if b.Level < r.Tuning.BladderReliefBelow {
			b.Set(1)
		}
		return
	}
	if b.Level >= r.Tuning.AirborneBladderBelow {
		return
	}
	def, err := r.Catalog.Resolve(r.Tuning.AbsorbentKind)
	if err != nil {
		slog.Warn("absorbent item unavailable", "caravan", t.c.ID, "member", t.m.Name, "error", err)
	} else {
		t.m.Inventory.Add(items.New(def))
	}
	b.Set(1)
}

func (r *Resolver) resolveThirst(t *turn) {
	if !t.m.Needs.Thirst.Thirsty() {
		return
	}
	for _, s := range r.chain {
		if s.when != nil && !s.when(t) {
			continue
		}
		if s.apply(t) {
			t.m.Needs.Thirst.Set(1)
			slog.Debug("thirst resolved", "caravan", t.c.ID, "member", t.m.Name, "source", s.name)
			return
		}
	}
}

func (r *Resolver) resolveHygiene(t *turn) {
	h := t.m.Needs.Hygiene
	target := r.Tuning.HygieneTarget
	if h == nil || h.Level >= target {
		return
	}
	if t.ambient.Available {
		h.Set(target)
		return
	}
	if _, s, ok := r.Locator.FindAnyStored(t.c); ok {
		r.Ledger.ConsumeStored(t.m, s, r.Tuning.WashAmount)
		h.Set(target)
		slog.Debug("hygiene resolved", "caravan", t.c.ID, "member", t.m.Name, "tier", s.Quality)
	}
}
