package engine

import (
	"fmt"
	"math"

	"github.com/talgya/caravan-needs/internal/agents"
	"github.com/talgya/caravan-needs/internal/caravan"
	"github.com/talgya/caravan-needs/internal/config"
	"github.com/talgya/caravan-needs/internal/entropy"
	"github.com/talgya/caravan-needs/internal/water"
	"github.com/talgya/caravan-needs/internal/world"
)

var caravanNames = []string{
	"Salt Road", "Amber Line", "Long Thirst", "Copper Wheel", "Dust Choir",
	"Tin Lantern", "Blue Gourd", "Night Ferry", "Red Mule", "Quiet Well",
}

// BuildFleet creates the starting caravans, one per waypoint in turn, crews them, and
// loads the default manifest. The first FlyingShare of the fleet are airships and the
// last FootShare travel on foot without a shared pool.
func BuildFleet(f config.Fleet, waypoints []world.Waypoint, cat *water.Catalog, spawner *agents.Spawner, src entropy.Source) ([]*caravan.Caravan, error) {
	if len(waypoints) == 0 {
		return nil, fmt.Errorf("no waypoints to start caravans at")
	}
	airships := int(math.Round(f.FlyingShare * float64(f.Caravans)))
	foot := min(int(math.Round(f.FootShare*float64(f.Caravans))), f.Caravans-airships)

	out := make([]*caravan.Caravan, 0, f.Caravans)
	for i := 0; i < f.Caravans; i++ {
		id := uint64(i + 1)
		wp := waypoints[i%len(waypoints)]
		name := caravanNames[i%len(caravanNames)]
		if i >= len(caravanNames) {
			name = fmt.Sprintf("%s %d", name, i/len(caravanNames)+1)
		}
		kind := caravan.KindVehicle
		if i >= f.Caravans-foot {
			kind = caravan.KindFoot
		}
		c := &caravan.Caravan{
			ID:       id,
			Name:     name,
			Kind:     kind,
			Position: wp.Coord,
			Dest:     wp.Name,
			Airship:  i < airships,
			Members:  spawner.SpawnCrew(id, f.CrewPerCaravan),
		}
		if err := caravan.Provision(c, cat, caravan.DefaultManifest, src); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
