package world

import (
	"fmt"
	"slices"
)

// Map is the hex grid caravans travel over. A map of radius R holds every hex no more
// than R steps from the origin.
type Map struct {
	Hexes  map[HexCoord]*Hex `json:"-"`
	Radius int               `json:"radius"`
}

// NewMap returns an empty map of the given radius.
func NewMap(radius int) *Map {
	return &Map{Hexes: make(map[HexCoord]*Hex), Radius: radius}
}

// Within lists every coordinate within radius of the origin, ordered by q, then r.
func Within(radius int) []HexCoord {
	var out []HexCoord
	for q := -radius; q <= radius; q++ {
		for r := max(-radius, -q-radius); r <= min(radius, -q+radius); r++ {
			out = append(out, HexCoord{Q: q, R: r})
		}
	}
	return out
}

// NewUniformMap fills every hex with the same terrain and rainfall.
func NewUniformMap(radius int, terrain Terrain, rainfall float64) *Map {
	m := NewMap(radius)
	for _, c := range Within(radius) {
		m.Set(&Hex{Coord: c, Terrain: terrain, Rainfall: rainfall})
	}
	return m
}

// Get returns the hex at coord, or nil off the map.
func (m *Map) Get(coord HexCoord) *Hex {
	return m.Hexes[coord]
}

// Set stores hex at its own coordinate.
func (m *Map) Set(hex *Hex) {
	m.Hexes[hex.Coord] = hex
}

// InBounds reports whether coord lies within the map radius.
func (m *Map) InBounds(coord HexCoord) bool {
	return Distance(coord, HexCoord{}) <= m.Radius
}

// Coords returns every coordinate on the map ordered by q, then r.
func (m *Map) Coords() []HexCoord {
	out := make([]HexCoord, 0, len(m.Hexes))
	for c := range m.Hexes {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b HexCoord) int {
		if a.Q != b.Q {
			return a.Q - b.Q
		}
		return a.R - b.R
	})
	return out
}

// HexCount returns the number of hexes on the map.
func (m *Map) HexCount() int {
	return len(m.Hexes)
}

func (m *Map) String() string {
	return fmt.Sprintf("Map(radius=%d, hexes=%d)", m.Radius, m.HexCount())
}
