// Package agents provides the caravan member model: identity, needs, and carried items.
package agents

import "github.com/talgya/caravan-needs/internal/items"

// MemberID is a unique identifier for a caravan member.
type MemberID uint64

// Kind distinguishes the sorts of members a caravan carries.
type Kind uint8

const (
	KindHumanlike Kind = iota // Travelers with the full set of needs
	KindAnimal                // Pack animals: thirst only
	KindVehicle               // Vehicles: no needs, carry cargo
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindHumanlike:
		return "humanlike"
	case KindAnimal:
		return "animal"
	case KindVehicle:
		return "vehicle"
	default:
		return "unknown"
	}
}

// Member is a single traveler, animal, or vehicle in a caravan.
type Member struct {
	ID   MemberID `json:"id"`
	Name string   `json:"name"`
	Kind Kind     `json:"kind"`

	Alive    bool `json:"alive"`
	Airborne bool `json:"airborne"` // Aboard an aircraft in flight

	// CaravanID is the caravan the member currently travels with (0 = none).
	CaravanID uint64 `json:"caravan_id"`

	Needs     NeedsState      `json:"needs"`
	Inventory items.Inventory `json:"inventory"`

	// DryTicks counts consecutive ticks spent at zero thirst.
	DryTicks int `json:"dry_ticks,omitempty"`
}
