package engine

import (
	"fmt"

	"github.com/talgya/caravan-needs/internal/caravan"
	"github.com/talgya/caravan-needs/internal/world"
)

const maxRouteSteps = 200

// moveCaravan takes one step along the current route, or plans a new leg on arrival.
// Airships are in flight while a route remains; immobilized caravans stay put.
func (s *Simulation) moveCaravan(c *caravan.Caravan, tick uint64) {
	if len(c.Living()) == 0 || c.Logistics.Immobilized {
		return
	}

	if c.Advance() {
		if len(c.Route) > 0 {
			return
		}
		c.InFlight = false
		s.EmitEvent(Event{
			Tick:        tick,
			Description: fmt.Sprintf("The %s arrives at %s", c.Name, c.Dest),
			Category:    "arrival",
			Meta:        map[string]any{"caravan_id": c.ID, "waypoint": c.Dest},
		})
		return
	}

	s.planLeg(c, tick)
}

// planLeg picks a random waypoint other than the current position and routes to it.
// Unreachable waypoints are skipped in turn.
func (s *Simulation) planLeg(c *caravan.Caravan, tick uint64) {
	var candidates []world.Waypoint
	for _, wp := range s.Waypoints {
		if wp.Coord != c.Position {
			candidates = append(candidates, wp)
		}
	}
	if len(candidates) == 0 {
		return
	}
	offset := s.rng.Intn(len(candidates))
	for i := range candidates {
		wp := candidates[(offset+i)%len(candidates)]
		var route []world.HexCoord
		if c.Airship {
			route = world.Line(c.Position, wp.Coord)
		} else {
			route = world.PlanRoute(s.WorldMap, c.Position, wp.Coord, maxRouteSteps)
		}
		if len(route) == 0 {
			continue
		}
		c.Route = route
		c.Dest = wp.Name
		if c.Airship {
			c.InFlight = true
			s.EmitEvent(Event{
				Tick:        tick,
				Description: fmt.Sprintf("The %s takes off for %s", c.Name, wp.Name),
				Category:    "flight",
				Meta:        map[string]any{"caravan_id": c.ID, "waypoint": wp.Name},
			})
		}
		return
	}
}
