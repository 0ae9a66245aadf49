// Package world provides the hex grid caravans travel over: terrain, rivers, and rainfall.
// Uses axial coordinates (q, r) for the hex grid.
package world

// HexCoord is an axial grid position. The cube coordinate s is implied by q + r + s = 0.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implied cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

// Terrain decides what water a hex offers and whether ground caravans may enter.
type Terrain uint8

const (
	TerrainPlains   Terrain = iota // Open ground, easy going
	TerrainForest                  // Shade, moderate rain
	TerrainMountain                // Passable but slow, rivers start here
	TerrainCoast                   // Salt water only
	TerrainRiver                   // Free untreated water
	TerrainDesert                  // Little rain, nothing to drink
	TerrainSwamp                   // Wet, stagnant
	TerrainTundra                  // Cold and dry
	TerrainOcean                   // Impassable to ground caravans
)

// Hex is one tile of the map.
type Hex struct {
	Coord   HexCoord `json:"coord"`
	Terrain Terrain  `json:"terrain"`

	// Climate, filled in by Generate.
	Elevation   float64 `json:"elevation"`   // 0.0 (sea level) to 1.0 (peak)
	Rainfall    float64 `json:"rainfall"`    // mm per year, 0 (arid) to MaxRainfall (tropical)
	Temperature float64 `json:"temperature"` // 0.0 (frozen) to 1.0 (hot)

	// River is true when a river crosses the hex, whatever its terrain.
	River bool `json:"river,omitempty"`
}

// MaxRainfall is the wettest annual rainfall generated, in mm.
const MaxRainfall = 3000.0

// FlowingWater reports whether a river or stream runs through the hex.
func (h *Hex) FlowingWater() bool {
	return h != nil && (h.River || h.Terrain == TerrainRiver)
}

// AnnualRainfall returns the hex rainfall in mm per year.
func (h *Hex) AnnualRainfall() float64 {
	if h == nil {
		return 0
	}
	return h.Rainfall
}

// Passable reports whether a ground caravan can enter the hex.
func (h *Hex) Passable() bool {
	return h != nil && h.Terrain != TerrainOcean
}

// Directions lists the six axial neighbor offsets, starting east and turning
// counter-clockwise.
var Directions = [6]HexCoord{{1, 0}, {1, -1}, {0, -1}, {-1, 0}, {-1, 1}, {0, 1}}

// Add offsets h by d.
func (h HexCoord) Add(d HexCoord) HexCoord {
	return HexCoord{Q: h.Q + d.Q, R: h.R + d.R}
}

// Neighbors returns the six adjacent coordinates in Directions order.
func (h HexCoord) Neighbors() [6]HexCoord {
	var out [6]HexCoord
	for i, d := range Directions {
		out[i] = h.Add(d)
	}
	return out
}

// Distance is the number of single-hex steps between a and b.
func Distance(a, b HexCoord) int {
	d := HexCoord{Q: a.Q - b.Q, R: a.R - b.R}
	return max(absInt(d.Q), absInt(d.R), absInt(d.S()))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
