package caravan

import (
	"fmt"

	"github.com/talgya/caravan-needs/internal/entropy"
	"github.com/talgya/caravan-needs/internal/items"
	"github.com/talgya/caravan-needs/internal/water"
)

// Stock is one line of a provisioning manifest.
type Stock struct {
	Kind   string
	Count  int
	Fill   float64 // fraction of capacity, for containers
	Tier   water.Tier
	Tiered bool // set an explicit tier on portables
	Packed bool // load minified
}

// DefaultManifest is the cargo a fresh caravan departs with.
var DefaultManifest = []Stock{
	{Kind: "water_tank", Count: 1, Fill: 1, Tier: water.Treated},
	{Kind: "jerrycan", Count: 2, Fill: 1, Tier: water.Untreated, Packed: true},
	{Kind: "water_bottle", Count: 3, Tier: water.Treated, Tiered: true},
	{Kind: "water_bottle", Count: 2},
	{Kind: "canned_juice", Count: 2},
	{Kind: "trade_goods", Count: 4},
}

// Provision loads the manifest onto the caravan's carrier. Container fill levels vary
// by up to a quarter below the requested fraction.
func Provision(c *Caravan, cat *water.Catalog, manifest []Stock, src entropy.Source) error {
	carrier := c.Carrier()
	if carrier == nil {
		return fmt.Errorf("caravan %d has no living member to carry cargo", c.ID)
	}
	for _, s := range manifest {
		def, err := cat.Resolve(s.Kind)
		if err != nil {
			return fmt.Errorf("provision caravan %d: %w", c.ID, err)
		}
		for i := 0; i < s.Count; i++ {
			t := items.New(def)
			if def.HasStorage() {
				fill := s.Fill * (0.75 + 0.25*src.Float64())
				t.Filled(fill*def.WaterCapacity, s.Tier)
			} else if s.Tiered {
				t.WithTier(s.Tier)
			}
			if s.Packed {
				t = items.Packed(t)
			}
			carrier.Inventory.Add(t)
		}
	}
	return nil
}
