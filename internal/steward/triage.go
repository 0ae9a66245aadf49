package steward

import "sort"

// Thresholds tune triage.
type Thresholds struct {
	CriticalDays      float64 // below this a caravan is about to run dry
	LowDays           float64 // below this a caravan should be resupplied soon
	ContaminatedShare float64 // contaminated share of all exposures, washes included, that raises a warning
}

// DefaultThresholds returns the steward's standard thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{CriticalDays: 1, LowDays: 3, ContaminatedShare: 0.25}
}

// Health holds diagnostic signals derived from a Snapshot.
type Health struct {
	Dry               []CaravanInfo // below CriticalDays, driest first
	Low               []CaravanInfo // between CriticalDays and LowDays, driest first
	ContaminatedShare float64
	Level             string // "CRITICAL", "WARNING", "HEALTHY"
}

// Triage computes Health from the snapshot. Caravans with nobody left to drink are ignored.
func Triage(snap *Snapshot, th Thresholds) *Health {
	h := &Health{Level: "HEALTHY"}

	for _, c := range snap.Caravans {
		if c.Alive == 0 || c.Logistics.Drinkers == 0 {
			continue
		}
		switch days := c.Logistics.DaysOfWater; {
		case days < th.CriticalDays:
			h.Dry = append(h.Dry, c)
		case days < th.LowDays:
			h.Low = append(h.Low, c)
		}
	}
	driest := func(list []CaravanInfo) {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Logistics.DaysOfWater < list[j].Logistics.DaysOfWater
		})
	}
	driest(h.Dry)
	driest(h.Low)

	total := 0
	for _, n := range snap.Status.Exposures {
		total += n
	}
	if total > 0 {
		h.ContaminatedShare = float64(snap.Status.Exposures["contaminated"]) / float64(total)
	}

	switch {
	case len(h.Dry) > 0:
		h.Level = "CRITICAL"
	case len(h.Low) > 0, h.ContaminatedShare > th.ContaminatedShare:
		h.Level = "WARNING"
	}
	return h
}
