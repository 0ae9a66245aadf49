// Package water provides quality tiers, the item catalog, and the contamination policy
// used to decide which carried water a caravan member may drink.
package water

import "fmt"

// Tier is the purity classification of a water source.
// Lower values are purer; consumption tries tiers in ascending order.
type Tier uint8

const (
	Treated      Tier = iota // Filtered or boiled
	Untreated                // Rain, river, unfiltered tank water
	Contaminated             // Only drunk when critically thirsty
)

// Tiers lists every tier in preference order.
var Tiers = [...]Tier{Treated, Untreated, Contaminated}

// String returns the tier name.
func (t Tier) String() string {
	switch t {
	case Treated:
		return "treated"
	case Untreated:
		return "untreated"
	case Contaminated:
		return "contaminated"
	default:
		return fmt.Sprintf("tier(%d)", uint8(t))
	}
}

// ParseTier converts a tier name back to a Tier.
func ParseTier(s string) (Tier, error) {
	for _, t := range Tiers {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown water tier %q", s)
}

// MarshalText encodes the tier by name so JSON and YAML stay readable.
func (t Tier) MarshalText() ([]byte, error) {
	if t > Contaminated {
		return nil, fmt.Errorf("invalid water tier %d", uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText decodes a tier name.
func (t *Tier) UnmarshalText(b []byte) error {
	parsed, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
