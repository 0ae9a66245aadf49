package steward

import "fmt"

// bottlesPerDrinker is how many bottles a provision hands each drinker.
const bottlesPerDrinker = 2

// Decision is the steward's chosen action for one cycle.
type Decision struct {
	Action       string        `json:"action"` // "none", "refill", "provision"
	Rationale    string        `json:"rationale"`
	Intervention *Intervention `json:"intervention"`
}

// Intervention is the payload for POST /api/v1/intervention.
type Intervention struct {
	Type    string `json:"type"`
	Caravan string `json:"caravan"`
	Kind    string `json:"kind,omitempty"`
	Count   int    `json:"count,omitempty"`
	Tier    string `json:"tier,omitempty"`
}

// Decide picks zero or one intervention. Dry caravans come before low ones; caravans
// helped within cooldown ticks are left alone. Caravans with containers are refilled,
// the rest receive treated bottles.
func Decide(snap *Snapshot, h *Health, mem *CycleMemory, cooldown uint64) Decision {
	tick := snap.Status.Tick
	for _, group := range [][]CaravanInfo{h.Dry, h.Low} {
		for _, c := range group {
			// A restarted simulation reports ticks below older records; those never block.
			if last, ok := mem.LastActed(c.Name); ok && last <= tick && tick-last < cooldown {
				continue
			}
			return resupply(c)
		}
	}

	rationale := "all caravans carry enough water"
	if h.Level != "HEALTHY" {
		rationale = fmt.Sprintf("%s, but every caravan in need was helped recently", h.Level)
	}
	return Decision{Action: "none", Rationale: rationale}
}

func resupply(c CaravanInfo) Decision {
	days := c.Logistics.DaysOfWater
	if c.Logistics.Containers > 0 {
		return Decision{
			Action:    "refill",
			Rationale: fmt.Sprintf("%s has %.1f days of water left", c.Name, days),
			Intervention: &Intervention{
				Type:    "refill",
				Caravan: c.Name,
				Tier:    "treated",
			},
		}
	}
	return Decision{
		Action:    "provision",
		Rationale: fmt.Sprintf("%s has %.1f days of water and no containers", c.Name, days),
		Intervention: &Intervention{
			Type:    "provision",
			Caravan: c.Name,
			Kind:    "water_bottle",
			Count:   bottlesPerDrinker * c.Logistics.Drinkers,
			Tier:    "treated",
		},
	}
}
