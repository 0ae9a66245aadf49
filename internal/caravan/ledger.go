package caravan

import (
	"github.com/talgya/caravan-needs/internal/agents"
	"github.com/talgya/caravan-needs/internal/items"
	"github.com/talgya/caravan-needs/internal/water"
)

// ExposureSink records which member drank or washed in water of which tier.
type ExposureSink interface {
	Report(m *agents.Member, tier water.Tier)
}

// Ingester performs the side effects of consuming a portable item and reports whether
// the item was used up.
type Ingester interface {
	Ingest(t *items.Thing, by *agents.Member) (destroyed bool)
}

// RecacheHook recomputes caravan-level derived state after cargo changes.
type RecacheHook interface {
	Recache(c *Caravan)
}

// RecacheFunc adapts a function to RecacheHook.
type RecacheFunc func(c *Caravan)

// Recache calls f(c).
func (f RecacheFunc) Recache(c *Caravan) { f(c) }

// Drink is the default Ingester: a portable is always used up in one go.
type Drink struct{}

// Ingest marks t destroyed.
func (Drink) Ingest(t *items.Thing, _ *agents.Member) bool {
	t.Destroyed = true
	return true
}

// Ledger applies consumption to the shared pool.
type Ledger struct {
	Exposure ExposureSink
	Ingest   Ingester
	Hooks    []RecacheHook
}

// ConsumeStored draws up to amount from s for member by and reports the water's tier.
// The container stays in the pool even when emptied. Returns the volume drawn.
func (l Ledger) ConsumeStored(by *agents.Member, s *items.WaterStorage, amount float64) float64 {
	drawn := s.Draw(amount)
	if drawn > 0 {
		l.Report(by, s.Quality)
	}
	return drawn
}

// ConsumePortable consumes the item in e entirely. On success the item leaves its
// owner's inventory, the tier is reported, and recache hooks run.
func (l Ledger) ConsumePortable(c *Caravan, e Entry, by *agents.Member, tier water.Tier) bool {
	ing := l.Ingest
	if ing == nil {
		ing = Drink{}
	}
	if !ing.Ingest(e.Thing, by) {
		return false
	}
	if e.Owner != nil {
		e.Owner.Inventory.Remove(e.Thing)
	}
	l.Report(by, tier)
	for _, h := range l.Hooks {
		h.Recache(c)
	}
	return true
}

// Report sends an exposure to the sink, if one is set.
func (l Ledger) Report(by *agents.Member, tier water.Tier) {
	if l.Exposure != nil {
		l.Exposure.Report(by, tier)
	}
}
