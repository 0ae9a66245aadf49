// Waypoints: the watering stops caravans travel between.
package world

import (
	"sort"

	"github.com/talgya/caravan-needs/internal/entropy"
)

// Waypoint is a named stop on the caravan network.
type Waypoint struct {
	Coord HexCoord `json:"coord"`
	Name  string   `json:"name"`
	Score float64  `json:"score"` // how good a stop the hex makes
}

// terrainAppeal is the base score of a stop on each passable terrain.
var terrainAppeal = map[Terrain]float64{
	TerrainRiver:    4.0,
	TerrainCoast:    3.5,
	TerrainPlains:   3.0,
	TerrainForest:   1.5,
	TerrainDesert:   0.5,
	TerrainSwamp:    0.5,
	TerrainTundra:   0.5,
	TerrainMountain: 0.3,
}

// PlaceWaypoints picks up to count stops, best first, no two closer than a quarter of
// the map radius. Names depend only on seed.
func PlaceWaypoints(m *Map, seed int64, count int) []Waypoint {
	var ranked []Waypoint
	for _, c := range m.Coords() {
		if s := stopScore(m, c); s > 0 {
			ranked = append(ranked, Waypoint{Coord: c, Score: s})
		}
	}
	// Coords are ordered, so ties stay deterministic.
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })

	spacing := 1 + m.Radius/4
	var out []Waypoint
	for _, w := range ranked {
		if len(out) == count {
			break
		}
		if crowded(w.Coord, out, spacing) {
			continue
		}
		out = append(out, w)
	}

	names := placeNames(entropy.NewSeeded(seed, "waypoints"), len(out))
	for i := range out {
		out[i].Name = names[i]
	}
	return out
}

// stopScore rates a hex as a watering stop: the terrain, a river through it or next
// to it, and how much rain it gets. Impassable hexes score zero.
func stopScore(m *Map, c HexCoord) float64 {
	h := m.Get(c)
	score := terrainAppeal[h.Terrain]
	if score == 0 {
		return 0
	}
	if h.River {
		score++
	}
	score += h.Rainfall / MaxRainfall
	for _, n := range c.Neighbors() {
		if m.Get(n).FlowingWater() {
			return score + 0.5
		}
	}
	return score
}

func crowded(c HexCoord, placed []Waypoint, spacing int) bool {
	for _, w := range placed {
		if Distance(c, w.Coord) < spacing {
			return true
		}
	}
	return false
}

var (
	namePrefixes = []string{
		"Iron", "Green", "Ash", "Stone", "Salt", "Cross", "Black", "Silver", "Red",
		"White", "High", "Low", "Old", "Far", "Deep", "Long", "Gold", "Thorn",
		"Palm", "Copper", "Dust", "Reed", "Cedar", "Amber",
	}
	nameSuffixes = []string{
		"well", "ford", "spring", "bridge", "gate", "cistern", "stead", "oasis",
		"field", "dale", "vale", "post", "pool", "brook", "tank", "wash",
	}
)

// placeNames returns n distinct two-part names.
func placeNames(rng *entropy.Seeded, n int) []string {
	seen := make(map[string]bool, n)
	names := make([]string, 0, n)
	for len(names) < n {
		name := namePrefixes[rng.IntN(len(namePrefixes))] + nameSuffixes[rng.IntN(len(nameSuffixes))]
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}
