package caravan

import (
	"github.com/talgya/caravan-needs/internal/entropy"
	"github.com/talgya/caravan-needs/internal/water"
)

// Location is what the ambient check needs to know about where a caravan stands.
type Location interface {
	FlowingWater() bool
	AnnualRainfall() float64 // mm/year
}

// AmbientState says whether free water is at hand this check, and how clean it is.
type AmbientState struct {
	Available bool
	Tier      water.Tier
}

// Ambient decides whether rain or surface water is available.
type Ambient struct {
	Rand        entropy.Source
	MaxRainfall float64 // rainfall at which rain is certain
}

// Check evaluates ambient water for one member. Flight removes ground access. A river
// always provides untreated water; otherwise one sample is drawn and rain falls with
// probability clamp(rainfall*rainfallMod, 0, MaxRainfall) / MaxRainfall.
func (a Ambient) Check(loc Location, rainfallMod float64, inFlight bool) AmbientState {
	if inFlight {
		return AmbientState{}
	}
	if loc != nil && loc.FlowingWater() {
		return AmbientState{Available: true, Tier: water.Untreated}
	}

	var rainfall float64
	if loc != nil {
		rainfall = loc.AnnualRainfall() * rainfallMod
	}
	if rainfall < 0 {
		rainfall = 0
	}
	if rainfall > a.MaxRainfall {
		rainfall = a.MaxRainfall
	}

	sample := a.Rand.Float64() * a.MaxRainfall
	if sample < rainfall {
		return AmbientState{Available: true, Tier: water.Untreated}
	}
	return AmbientState{}
}
