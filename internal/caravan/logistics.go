package caravan

import (
	"github.com/talgya/caravan-needs/internal/agents"
	"github.com/talgya/caravan-needs/internal/water"
)

// Logistics is derived cargo state, recomputed after consumption and once a day.
type Logistics struct {
	WaterUnits  float64 `json:"water_units"`   // stored volume across all containers
	Containers  int     `json:"containers"`    // things with water storage
	Portables   int     `json:"portables"`     // thirst-seekable items
	Drinkers    int     `json:"drinkers"`      // living members with a thirst need
	DaysOfWater float64 `json:"days_of_water"` // 0 when nobody drinks
	Mass        float64 `json:"mass"`          // kg carried, water included
	Capacity    float64 `json:"capacity"`      // kg the caravan can move
	Immobilized bool    `json:"immobilized"`
}

// Carrying capacity per member kind, in kg.
var carryCapacity = map[agents.Kind]float64{
	agents.KindHumanlike: 35,
	agents.KindAnimal:    80,
	agents.KindVehicle:   400,
}

// LogisticsCalc computes Logistics. It doubles as the ledger's recache hook.
type LogisticsCalc struct {
	Catalog           *water.Catalog
	DailyWaterPerHead float64
	PortableUnits     float64 // water value of one portable
}

// Compute derives logistics for c without modifying it.
func (lc LogisticsCalc) Compute(c *Caravan) Logistics {
	var lg Logistics
	policy := water.Policy{Catalog: lc.Catalog}

	for _, e := range c.Pool() {
		inner := e.Thing.Unwrap()
		if d, ok := lc.Catalog.Def(inner.Kind); ok {
			lg.Mass += d.Mass
		}
		if s, ok := e.Thing.WaterStorage(); ok {
			lg.WaterUnits += s.Volume
			lg.Containers++
			lg.Mass += s.Volume
		}
		if policy.IsSeekable(inner.Kind) {
			lg.Portables++
		}
	}

	for _, m := range c.Members {
		if !m.Alive {
			continue
		}
		lg.Capacity += carryCapacity[m.Kind]
		if m.Needs.Thirst != nil {
			lg.Drinkers++
		}
	}

	if lg.Drinkers > 0 && lc.DailyWaterPerHead > 0 {
		total := lg.WaterUnits + float64(lg.Portables)*lc.PortableUnits
		lg.DaysOfWater = total / (float64(lg.Drinkers) * lc.DailyWaterPerHead)
	}
	lg.Immobilized = lg.Mass > lg.Capacity
	return lg
}

// Recache stores fresh logistics on c.
func (lc LogisticsCalc) Recache(c *Caravan) {
	c.Logistics = lc.Compute(c)
}
