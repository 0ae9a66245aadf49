package agents

// NeedsState holds a member's optional needs. A nil need means the member does not
// have it (vehicles have none, animals only thirst); resolvers skip nil needs.
// All levels range from 0.0 (completely unmet) to 1.0 (fully satisfied).
type NeedsState struct {
	Thirst  *ThirstNeed `json:"thirst,omitempty"`
	Bladder *Need       `json:"bladder,omitempty"`
	Hygiene *Need       `json:"hygiene,omitempty"`
}

// Need is a single satisfaction level.
type Need struct {
	Level float64 `json:"level"`
}

// ThirstNeed is a level plus the category assigned by the decay pass.
type ThirstNeed struct {
	Level    float64        `json:"level"`
	Category ThirstCategory `json:"category"`
}

// ThirstCategory is the coarse thirst state used to decide whether to drink.
type ThirstCategory uint8

const (
	ThirstHydrated ThirstCategory = iota
	ThirstThirsty
)

// String returns the category name.
func (c ThirstCategory) String() string {
	if c == ThirstThirsty {
		return "thirsty"
	}
	return "hydrated"
}

// ThirstCategoryFor categorizes a thirst level against the thirsty threshold.
func ThirstCategoryFor(level, thirstyBelow float64) ThirstCategory {
	if level < thirstyBelow {
		return ThirstThirsty
	}
	return ThirstHydrated
}

// Set stores v clamped to [0,1].
func (n *Need) Set(v float64) {
	n.Level = clamp01(v)
}

// TopUp raises the level to at least floor. It never lowers the level.
func (n *Need) TopUp(floor float64) {
	if n.Level < floor {
		n.Set(floor)
	}
}

// Set stores v clamped to [0,1].
func (n *ThirstNeed) Set(v float64) {
	n.Level = clamp01(v)
}

// Thirsty reports whether the member wants to drink.
func (n *ThirstNeed) Thirsty() bool {
	return n != nil && n.Category == ThirstThirsty
}

// FullNeeds returns the need set for a member kind, with every level at 1.0.
func FullNeeds(k Kind) NeedsState {
	switch k {
	case KindHumanlike:
		return NeedsState{
			Thirst:  &ThirstNeed{Level: 1},
			Bladder: &Need{Level: 1},
			Hygiene: &Need{Level: 1},
		}
	case KindAnimal:
		return NeedsState{Thirst: &ThirstNeed{Level: 1}}
	default:
		return NeedsState{}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
