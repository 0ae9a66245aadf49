package agents

import "github.com/talgya/caravan-needs/internal/config"

// DecayNeeds reduces a member's needs for one tick and
// refreshes the thirst category. Members that stay at zero thirst for too long die.
// Returns true if the member died this tick.
func DecayNeeds(m *Member, d config.Decay, thirstyBelow float64) bool {
	if !m.Alive {
		return false
	}

	n := &m.Needs
	if n.Thirst != nil {
		n.Thirst.Set(n.Thirst.Level - d.Thirst)
		n.Thirst.Category = ThirstCategoryFor(n.Thirst.Level, thirstyBelow)
		if n.Thirst.Level <= 0 {
			m.DryTicks++
		} else {
			m.DryTicks = 0
		}
	}
	if n.Bladder != nil {
		n.Bladder.Set(n.Bladder.Level - d.Bladder)
	}
	if n.Hygiene != nil {
		n.Hygiene.Set(n.Hygiene.Level - d.Hygiene)
	}

	if d.DehydrationTicks > 0 && m.DryTicks >= d.DehydrationTicks {
		m.Alive = false
		return true
	}
	return false
}
