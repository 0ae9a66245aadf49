// Procedural terrain for the caravan map. Three simplex layers give height, moisture,
// and warmth. High ground dries out the hexes downwind of it, and rivers run from the
// wettest highlands toward the sea.
package world

import (
	"math"
	"math/rand"
	"sort"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds world generation parameters.
type GenConfig struct {
	Radius      int     // hex grid radius
	Seed        int64   // 0 picks a random seed
	SeaLevel    float64 // elevation below which a hex is ocean
	MountainLvl float64 // elevation above which a hex is mountain
}

// Annual rainfall bands, mm.
const (
	desertBelow = 750.0
	forestAbove = 1350.0
	marshAbove  = 2100.0
)

// Moist air arrives from the west. Hexes within shadowReach steps downwind of
// mountains lose up to maxShadow of their rain.
var prevailingWind = HexCoord{Q: -1, R: 0}

const (
	shadowReach = 3
	maxShadow   = 0.6
)

// layer is one fractal noise field.
type layer struct {
	noise   opensimplex.Noise
	octaves int
	freq    float64
}

func newLayer(seed int64, octaves int, freq float64) layer {
	return layer{noise: opensimplex.NewNormalized(seed), octaves: octaves, freq: freq}
}

// at sums octaves of halving amplitude and doubling frequency, normalized to [0,1].
func (l layer) at(x, y float64) float64 {
	var sum, norm float64
	amp, f := 1.0, l.freq
	for i := 0; i < l.octaves; i++ {
		sum += amp * l.noise.Eval2(x*f, y*f)
		norm += amp
		amp /= 2
		f *= 2
	}
	return sum / norm
}

// plane maps an axial coordinate onto flat space.
func plane(c HexCoord) (x, y float64) {
	return float64(c.Q) + float64(c.R)/2, float64(c.R) * math.Sqrt(3) / 2
}

// Generate builds a map from cfg. A non-zero seed always yields the same map.
func Generate(cfg GenConfig) *Map {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	height := newLayer(seed, 4, 0.08)
	moisture := newLayer(seed+1, 3, 0.06)
	warmth := newLayer(seed+2, 3, 0.05)

	m := NewMap(cfg.Radius)
	radius := float64(max(cfg.Radius, 1))
	for _, c := range Within(cfg.Radius) {
		x, y := plane(c)
		// Sink the rim so the land is ringed by sea.
		rim := math.Hypot(x, y) / radius
		elev := height.at(x, y) * math.Max(0, 1-math.Pow(rim, 3.5))
		m.Set(&Hex{
			Coord:       c,
			Elevation:   elev,
			Rainfall:    moisture.at(x, y) * MaxRainfall,
			Temperature: 0.6*warmth.at(x, y) + 0.3*(1-math.Abs(y)/radius) + 0.1*(1-elev),
		})
	}

	castRainShadows(m, cfg.MountainLvl)
	for _, h := range m.Hexes {
		h.Terrain = classify(h, cfg)
	}
	markCoast(m)
	runRivers(m, cfg.MountainLvl)
	return m
}

// castRainShadows dries hexes that sit downwind of ground above ridge.
// Reductions are computed from the undried map so shadows do not compound.
func castRainShadows(m *Map, ridge float64) {
	dried := make(map[HexCoord]float64)
	for c, h := range m.Hexes {
		peak, at := 0.0, c
		for i := 0; i < shadowReach; i++ {
			at = at.Add(prevailingWind)
			if up := m.Get(at); up != nil && up.Elevation > peak {
				peak = up.Elevation
			}
		}
		if peak < ridge || peak <= h.Elevation {
			continue
		}
		dried[c] = h.Rainfall * (1 - math.Min(maxShadow, peak-h.Elevation))
	}
	for c, rain := range dried {
		m.Hexes[c].Rainfall = rain
	}
}

func classify(h *Hex, cfg GenConfig) Terrain {
	switch {
	case h.Elevation < cfg.SeaLevel:
		return TerrainOcean
	case h.Elevation > cfg.MountainLvl:
		return TerrainMountain
	case h.Temperature < 0.25:
		return TerrainTundra
	case h.Rainfall < desertBelow && h.Temperature > 0.5:
		return TerrainDesert
	case h.Rainfall > marshAbove && h.Elevation < 0.45:
		return TerrainSwamp
	case h.Rainfall > forestAbove && h.Elevation > 0.45:
		return TerrainForest
	}
	return TerrainPlains
}

// markCoast turns low plains and forest touching the sea into coast.
func markCoast(m *Map) {
	for c, h := range m.Hexes {
		if h.Elevation >= 0.5 || (h.Terrain != TerrainPlains && h.Terrain != TerrainForest) {
			continue
		}
		for _, n := range c.Neighbors() {
			if nh := m.Get(n); nh != nil && nh.Terrain == TerrainOcean {
				h.Terrain = TerrainCoast
				break
			}
		}
	}
}

// runRivers picks spaced-out springs on the wettest high ground and lets each one flow
// downhill. Between 2 and 10 rivers are placed, one per eight candidate springs.
func runRivers(m *Map, ridge float64) {
	var springs []*Hex
	for _, c := range m.Coords() {
		if h := m.Get(c); h.Terrain != TerrainOcean && h.Elevation > 0.9*ridge {
			springs = append(springs, h)
		}
	}
	sort.SliceStable(springs, func(i, j int) bool {
		return springs[i].Rainfall > springs[j].Rainfall
	})

	want := min(max(len(springs)/8, 2), 10)
	var placed []HexCoord
	for _, s := range springs {
		if len(placed) == want {
			break
		}
		if within(s.Coord, placed, 3) {
			continue
		}
		placed = append(placed, s.Coord)
		flow(m, s.Coord)
	}
}

func within(c HexCoord, others []HexCoord, d int) bool {
	for _, o := range others {
		if Distance(c, o) <= d {
			return true
		}
	}
	return false
}

// flow carries a river from source until it reaches the sea, joins another river,
// or finds no lower ground. Mountain and coast hexes keep their terrain.
func flow(m *Map, source HexCoord) {
	seen := make(map[HexCoord]bool)
	at := source
	for steps := 0; steps <= 3*m.Radius; steps++ {
		h := m.Get(at)
		if h == nil || h.Terrain == TerrainOcean || (h.River && at != source) {
			return
		}
		seen[at] = true
		h.River = true
		if h.Terrain != TerrainMountain && h.Terrain != TerrainCoast {
			h.Terrain = TerrainRiver
		}
		next, ok := downhill(m, at, seen)
		if !ok {
			return
		}
		at = next
	}
}

// downhill returns the lowest unseen neighbor strictly below c.
func downhill(m *Map, c HexCoord, seen map[HexCoord]bool) (HexCoord, bool) {
	best, found := c, false
	lowest := m.Get(c).Elevation
	for _, n := range c.Neighbors() {
		nh := m.Get(n)
		if nh == nil || seen[n] || nh.Elevation >= lowest {
			continue
		}
		best, lowest, found = n, nh.Elevation, true
	}
	return best, found
}

// TerrainCounts tallies hexes by terrain.
func TerrainCounts(m *Map) map[Terrain]int {
	counts := make(map[Terrain]int)
	for _, h := range m.Hexes {
		counts[h.Terrain]++
	}
	return counts
}

var terrainNames = [...]string{
	TerrainPlains:   "Plains",
	TerrainForest:   "Forest",
	TerrainMountain: "Mountain",
	TerrainCoast:    "Coast",
	TerrainRiver:    "River",
	TerrainDesert:   "Desert",
	TerrainSwamp:    "Swamp",
	TerrainTundra:   "Tundra",
	TerrainOcean:    "Ocean",
}

// TerrainName returns the display name of t.
func TerrainName(t Terrain) string {
	if int(t) < len(terrainNames) {
		return terrainNames[t]
	}
	return "Unknown"
}
