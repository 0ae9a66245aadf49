package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/caravan-needs/internal/caravan"
	"github.com/talgya/caravan-needs/internal/water"
)

// ProvisionCaravan loads count items of kind onto a caravan's carrier. Containers arrive
// full of water of the given tier; portables carry the tier explicitly.
func (s *Simulation) ProvisionCaravan(name, kind string, count int, tierName string) (string, error) {
	if count <= 0 {
		return "", fmt.Errorf("count must be positive")
	}
	tier := water.Untreated
	if tierName != "" {
		t, err := water.ParseTier(tierName)
		if err != nil {
			return "", err
		}
		tier = t
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findCaravanByName(name)
	if c == nil {
		return "", fmt.Errorf("caravan %q not found", name)
	}
	stock := caravan.Stock{Kind: kind, Count: count, Fill: 1, Tier: tier, Tiered: tierName != ""}
	if err := caravan.Provision(c, s.Catalog, []caravan.Stock{stock}, fullFill{}); err != nil {
		return "", err
	}
	s.Logistics.Recache(c)

	desc := fmt.Sprintf("Traders meet the %s with %d %s", c.Name, count, kind)
	s.EmitEvent(Event{
		Tick:        s.LastTick,
		Description: desc,
		Category:    "intervention",
		Meta: map[string]any{
			"caravan_id": c.ID,
			"kind":       kind,
			"count":      count,
			"tier":       tier.String(),
		},
	})

	slog.Info("provision intervention", "caravan", c.Name, "kind", kind, "count", count, "tier", tier)
	return desc, nil
}

// RefillCaravan tops every container in a caravan up to capacity with water of tier.
func (s *Simulation) RefillCaravan(name, tierName string) (string, error) {
	tier, err := water.ParseTier(tierName)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findCaravanByName(name)
	if c == nil {
		return "", fmt.Errorf("caravan %q not found", name)
	}
	filled := 0
	for _, e := range c.Pool() {
		st, ok := e.Thing.WaterStorage()
		if !ok {
			continue
		}
		st.Volume = st.Capacity
		st.Quality = tier
		filled++
	}
	if filled == 0 {
		return "", fmt.Errorf("caravan %q carries no water containers", name)
	}
	s.Logistics.Recache(c)

	desc := fmt.Sprintf("The %s refills %d containers at a %s well", c.Name, filled, tier)
	s.EmitEvent(Event{
		Tick:        s.LastTick,
		Description: desc,
		Category:    "intervention",
		Meta:        map[string]any{"caravan_id": c.ID, "containers": filled, "tier": tier.String()},
	})

	slog.Info("refill intervention", "caravan", c.Name, "containers", filled, "tier", tier)
	return desc, nil
}

// SetFlight grounds or launches a caravan.
func (s *Simulation) SetFlight(name string, inFlight bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findCaravanByName(name)
	if c == nil {
		return "", fmt.Errorf("caravan %q not found", name)
	}
	c.InFlight = inFlight

	verb := "is grounded"
	if inFlight {
		verb = "takes to the air"
	}
	desc := fmt.Sprintf("The %s %s", c.Name, verb)
	s.EmitEvent(Event{
		Tick:        s.LastTick,
		Description: desc,
		Category:    "flight",
		Meta:        map[string]any{"caravan_id": c.ID, "in_flight": inFlight},
	})
	return desc, nil
}

// findCaravanByName looks up a caravan by name (case-sensitive).
func (s *Simulation) findCaravanByName(name string) *caravan.Caravan {
	for _, c := range s.Caravans {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// fullFill always fills containers to the brim.
type fullFill struct{}

func (fullFill) Float64() float64 { return 1 }
