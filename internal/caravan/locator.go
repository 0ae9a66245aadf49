package caravan

import (
	"github.com/talgya/caravan-needs/internal/items"
	"github.com/talgya/caravan-needs/internal/water"
)

// Locator finds candidate water in a caravan's shared pool. First match in pool order
// wins; there is no preference for larger containers.
type Locator struct {
	Policy water.Policy
}

// FindStored returns the first container of tier holding any water.
func (l Locator) FindStored(c *Caravan, tier water.Tier) (Entry, *items.WaterStorage, bool) {
	for _, e := range c.Pool() {
		s, ok := e.Thing.WaterStorage()
		if !ok || s.Volume <= 0 {
			continue
		}
		if l.Policy.TierOf(s) == tier {
			return e, s, true
		}
	}
	return Entry{}, nil, false
}

// FindAnyStored returns the first container holding any water, whatever its tier.
func (l Locator) FindAnyStored(c *Caravan) (Entry, *items.WaterStorage, bool) {
	for _, e := range c.Pool() {
		if s, ok := e.Thing.WaterStorage(); ok && s.Volume > 0 {
			return e, s, true
		}
	}
	return Entry{}, nil, false
}

// FindPortable returns the first thirst-seekable item whose resolved tier is tier.
func (l Locator) FindPortable(c *Caravan, tier water.Tier) (Entry, bool) {
	for _, e := range c.Pool() {
		inner := e.Thing.Unwrap()
		if !l.Policy.IsSeekable(inner.Kind) {
			continue
		}
		if l.Policy.TierOf(inner) == tier {
			return e, true
		}
	}
	return Entry{}, false
}
