package world

import "math"

// PlanRoute returns the hexes from start (exclusive) to goal (inclusive), stepping to the
// passable neighbor closest to goal each time. Ties go to the neighbor listed first in
// Directions. Returns nil when the walk gets stuck or runs past maxSteps.
func PlanRoute(m *Map, start, goal HexCoord, maxSteps int) []HexCoord {
	if start == goal {
		return nil
	}
	visited := map[HexCoord]bool{start: true}
	var route []HexCoord
	current := start

	for step := 0; step < maxSteps; step++ {
		best, bestDist, found := HexCoord{}, 0, false
		for _, nc := range current.Neighbors() {
			if visited[nc] || !m.Get(nc).Passable() {
				continue
			}
			d := Distance(nc, goal)
			if !found || d < bestDist {
				best, bestDist, found = nc, d, true
			}
		}
		if !found {
			return nil
		}
		visited[best] = true
		route = append(route, best)
		if best == goal {
			return route
		}
		current = best
	}
	return nil
}

// Line returns the straight hex line from start (exclusive) to goal (inclusive),
// ignoring terrain. Used for flights.
func Line(start, goal HexCoord) []HexCoord {
	n := Distance(start, goal)
	if n == 0 {
		return nil
	}
	line := make([]HexCoord, 0, n)
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		q := lerp(float64(start.Q), float64(goal.Q), t)
		r := lerp(float64(start.R), float64(goal.R), t)
		line = append(line, roundHex(q, r))
	}
	return line
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// roundHex rounds fractional axial coordinates to the nearest hex.
func roundHex(q, r float64) HexCoord {
	s := -q - r
	rq, rr, rs := math.Round(q), math.Round(r), math.Round(s)
	dq, dr, ds := math.Abs(rq-q), math.Abs(rr-r), math.Abs(rs-s)
	switch {
	case dq > dr && dq > ds:
		rq = -rr - rs
	case dr > ds:
		rr = -rq - rs
	}
	return HexCoord{Q: int(rq), R: int(rr)}
}
