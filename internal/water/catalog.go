package water

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"gopkg.in/yaml.v3"
)

// ItemDef describes a kind of item a caravan can carry.
// WaterCapacity > 0 gives the item a water-storage capability.
type ItemDef struct {
	Kind          string  `yaml:"kind" json:"kind"`
	Label         string  `yaml:"label" json:"label"`
	SeekForThirst bool    `yaml:"seek_for_thirst" json:"seek_for_thirst"`
	WaterCapacity float64 `yaml:"water_capacity,omitempty" json:"water_capacity,omitempty"`
	Absorbent     bool    `yaml:"absorbent,omitempty" json:"absorbent,omitempty"`
	Mass          float64 `yaml:"mass" json:"mass"` // kg
}

// HasStorage reports whether items of this kind hold water.
func (d ItemDef) HasStorage() bool {
	return d.WaterCapacity > 0
}

// Catalog holds item definitions keyed by kind.
type Catalog struct {
	defs  map[string]ItemDef
	kinds []string // sorted
}

// NewCatalog builds a catalog, rejecting empty and duplicate kinds.
func NewCatalog(defs []ItemDef) (*Catalog, error) {
	c := &Catalog{defs: make(map[string]ItemDef, len(defs))}
	for _, d := range defs {
		d.Kind = strings.TrimSpace(d.Kind)
		if d.Kind == "" {
			return nil, fmt.Errorf("item def with empty kind")
		}
		if _, dup := c.defs[d.Kind]; dup {
			return nil, fmt.Errorf("duplicate item kind %q", d.Kind)
		}
		if d.WaterCapacity < 0 || d.Mass < 0 {
			return nil, fmt.Errorf("item %q: capacity and mass must be non-negative", d.Kind)
		}
		if d.Label == "" {
			d.Label = d.Kind
		}
		c.defs[d.Kind] = d
		c.kinds = append(c.kinds, d.Kind)
	}
	sort.Strings(c.kinds)
	return c, nil
}

// LoadCatalog reads a YAML list of item definitions.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Items []ItemDef `yaml:"items"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewCatalog(doc.Items)
}

// DefaultCatalog returns the built-in item set.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog([]ItemDef{
		{Kind: "water_tank", Label: "water tank", WaterCapacity: 20, Mass: 35},
		{Kind: "jerrycan", Label: "jerrycan", WaterCapacity: 5, Mass: 2},
		{Kind: "water_bottle", Label: "bottle of water", SeekForThirst: true, Mass: 0.6},
		{Kind: "canned_juice", Label: "canned juice", Mass: 0.4},
		{Kind: "bedpan", Label: "bedpan", Absorbent: true, Mass: 0.8},
		{Kind: "trade_goods", Label: "trade goods", Mass: 10},
	})
	if err != nil {
		panic(err)
	}
	return c
}

// Def returns the definition for kind.
func (c *Catalog) Def(kind string) (ItemDef, bool) {
	if c == nil {
		return ItemDef{}, false
	}
	d, ok := c.defs[kind]
	return d, ok
}

// Resolve returns the definition for kind, or an error naming the closest known kind.
func (c *Catalog) Resolve(kind string) (ItemDef, error) {
	if d, ok := c.Def(kind); ok {
		return d, nil
	}
	if s := c.suggest(kind); s != "" {
		return ItemDef{}, fmt.Errorf("unknown item kind %q (did you mean %q?)", kind, s)
	}
	return ItemDef{}, fmt.Errorf("unknown item kind %q", kind)
}

// Kinds returns all known kinds, sorted.
func (c *Catalog) Kinds() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.kinds))
	copy(out, c.kinds)
	return out
}

func (c *Catalog) suggest(kind string) string {
	if c == nil {
		return ""
	}
	best, bestDist := "", len(kind)/2+2
	for _, k := range c.kinds {
		d := levenshtein.ComputeDistance(kind, k)
		if d < bestDist {
			best, bestDist = k, d
		}
	}
	return best
}
