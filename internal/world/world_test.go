package world

import "testing"

var smallWorld = GenConfig{Radius: 5, Seed: 42, SeaLevel: 0.30, MountainLvl: 0.75}

func TestGenerateDeterministic(t *testing.T) {
	cfg := smallWorld
	a := Generate(cfg)
	b := Generate(cfg)
	if a.HexCount() != b.HexCount() {
		t.Fatalf("hex count mismatch: %d vs %d", a.HexCount(), b.HexCount())
	}
	for coord, ha := range a.Hexes {
		hb := b.Get(coord)
		if hb == nil || ha.Terrain != hb.Terrain || ha.Rainfall != hb.Rainfall || ha.River != hb.River {
			t.Fatalf("hex %v differs between runs", coord)
		}
	}
}

func TestGenerateRainfallRange(t *testing.T) {
	m := Generate(smallWorld)
	for coord, h := range m.Hexes {
		if h.Rainfall < 0 || h.Rainfall > MaxRainfall {
			t.Fatalf("hex %v rainfall %v out of range", coord, h.Rainfall)
		}
		if !m.InBounds(coord) {
			t.Fatalf("hex %v outside radius", coord)
		}
	}
}

func TestHexLocationQueries(t *testing.T) {
	var nilHex *Hex
	if nilHex.FlowingWater() || nilHex.AnnualRainfall() != 0 || nilHex.Passable() {
		t.Fatalf("nil hex should have no water, rain, or passage")
	}
	river := &Hex{Terrain: TerrainRiver}
	if !river.FlowingWater() {
		t.Fatalf("river terrain should count as flowing water")
	}
	mountainStream := &Hex{Terrain: TerrainMountain, River: true, Rainfall: 800}
	if !mountainStream.FlowingWater() || mountainStream.AnnualRainfall() != 800 {
		t.Fatalf("river flag should count regardless of terrain")
	}
	if (&Hex{Terrain: TerrainOcean}).Passable() {
		t.Fatalf("ocean is impassable")
	}
}

func TestRainShadow(t *testing.T) {
	m := NewUniformMap(3, TerrainPlains, 1000)
	m.Get(HexCoord{Q: -1, R: 0}).Elevation = 0.9
	castRainShadows(m, 0.72)

	tests := []struct {
		at   HexCoord
		want float64
	}{
		{HexCoord{Q: -2, R: 0}, 1000}, // upwind of the ridge
		{HexCoord{Q: -1, R: 0}, 1000}, // the ridge itself
		{HexCoord{Q: 0, R: 0}, 400},
		{HexCoord{Q: 2, R: 0}, 400},
		{HexCoord{Q: 3, R: 0}, 1000}, // out of reach
		{HexCoord{Q: 0, R: 2}, 1000},
	}
	for _, tt := range tests {
		if got := m.Get(tt.at).Rainfall; got != tt.want {
			t.Fatalf("rainfall at %v = %v, want %v", tt.at, got, tt.want)
		}
	}
}

func TestTerrainName(t *testing.T) {
	if TerrainName(TerrainRiver) != "River" || TerrainName(TerrainOcean) != "Ocean" || TerrainName(Terrain(40)) != "Unknown" {
		t.Fatalf("unexpected terrain names")
	}
}

func TestDistanceAndNeighbors(t *testing.T) {
	origin := HexCoord{}
	for _, n := range origin.Neighbors() {
		if Distance(origin, n) != 1 {
			t.Fatalf("neighbor %v not at distance 1", n)
		}
	}
	if d := Distance(HexCoord{Q: 2, R: -1}, HexCoord{Q: -1, R: 2}); d != 3 {
		t.Fatalf("expected distance 3, got %d", d)
	}
}

func flatMap(radius int) *Map {
	return NewUniformMap(radius, TerrainPlains, 0)
}

func TestWithinMatchesInBounds(t *testing.T) {
	m := NewMap(3)
	coords := Within(3)
	if len(coords) != 37 {
		t.Fatalf("radius 3 should hold 37 hexes, got %d", len(coords))
	}
	for _, c := range coords {
		if !m.InBounds(c) {
			t.Fatalf("%v outside radius", c)
		}
	}
}

func TestPlanRouteReachesGoal(t *testing.T) {
	m := flatMap(4)
	start, goal := HexCoord{Q: -3, R: 0}, HexCoord{Q: 3, R: 0}
	route := PlanRoute(m, start, goal, 50)
	if len(route) != Distance(start, goal) {
		t.Fatalf("expected straight route of %d steps, got %v", Distance(start, goal), route)
	}
	if route[len(route)-1] != goal {
		t.Fatalf("route must end at goal, got %v", route)
	}
	prev := start
	for _, c := range route {
		if Distance(prev, c) != 1 {
			t.Fatalf("route jumps from %v to %v", prev, c)
		}
		prev = c
	}
}

func TestPlanRouteBlocked(t *testing.T) {
	m := flatMap(2)
	for _, n := range (HexCoord{}).Neighbors() {
		m.Get(n).Terrain = TerrainOcean
	}
	if route := PlanRoute(m, HexCoord{}, HexCoord{Q: 2, R: 0}, 20); route != nil {
		t.Fatalf("expected nil route when surrounded by ocean, got %v", route)
	}
	if route := PlanRoute(m, HexCoord{}, HexCoord{}, 20); route != nil {
		t.Fatalf("expected nil route to self")
	}
}

func TestPlaceWaypointsSpread(t *testing.T) {
	m := Generate(GenConfig{Radius: 22, Seed: 42, SeaLevel: 0.25, MountainLvl: 0.72})
	wps := PlaceWaypoints(m, 42, 6)
	if len(wps) == 0 {
		t.Fatalf("expected waypoints on a generated map")
	}
	minDist := 1 + m.Radius/4
	seen := map[string]bool{}
	for i, a := range wps {
		if !m.Get(a.Coord).Passable() {
			t.Fatalf("waypoint %s on impassable hex", a.Name)
		}
		if seen[a.Name] {
			t.Fatalf("duplicate waypoint name %s", a.Name)
		}
		seen[a.Name] = true
		for _, b := range wps[i+1:] {
			if Distance(a.Coord, b.Coord) < minDist {
				t.Fatalf("waypoints %s and %s too close", a.Name, b.Name)
			}
		}
	}
}

func TestLineSteps(t *testing.T) {
	start := HexCoord{Q: 0, R: 0}
	goal := HexCoord{Q: 4, R: -2}
	line := Line(start, goal)
	if len(line) != Distance(start, goal) {
		t.Fatalf("line length %d, want %d", len(line), Distance(start, goal))
	}
	if line[len(line)-1] != goal {
		t.Fatalf("line ends at %v", line[len(line)-1])
	}
	prev := start
	for _, c := range line {
		if Distance(prev, c) != 1 {
			t.Fatalf("line jumps from %v to %v", prev, c)
		}
		prev = c
	}
	if Line(start, start) != nil {
		t.Fatalf("line to self should be empty")
	}
}

func TestUniformMapAndCoords(t *testing.T) {
	m := NewUniformMap(2, TerrainDesert, 120)
	if m.HexCount() != 19 {
		t.Fatalf("radius 2 should hold 19 hexes, got %d", m.HexCount())
	}
	coords := m.Coords()
	for i := 1; i < len(coords); i++ {
		a, b := coords[i-1], coords[i]
		if a.Q > b.Q || (a.Q == b.Q && a.R >= b.R) {
			t.Fatalf("coords out of order at %d: %v then %v", i, a, b)
		}
	}
	if h := m.Get(HexCoord{Q: 1, R: 1}); h == nil || h.AnnualRainfall() != 120 || h.FlowingWater() {
		t.Fatalf("unexpected hex %+v", h)
	}
}
