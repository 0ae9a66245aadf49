// Crew spawning for fresh caravans.
package agents

import "github.com/talgya/caravan-needs/internal/entropy"

// Spawner issues member IDs and rolls names and starting needs from a seeded stream.
type Spawner struct {
	rng    *entropy.Seeded
	nextID MemberID
}

// NewSpawner returns a spawner whose crews depend only on seed.
func NewSpawner(seed int64) *Spawner {
	return &Spawner{rng: entropy.NewSeeded(seed, "crew"), nextID: 1}
}

// SetNextID sets the next ID to issue, past any members loaded from the database.
func (s *Spawner) SetNextID(id MemberID) {
	s.nextID = id
}

// SpawnCrew returns a vehicle followed by count travelers. Crews of three or more also
// get a pack animal, listed last.
func (s *Spawner) SpawnCrew(caravanID uint64, count int) []*Member {
	crew := []*Member{s.spawn(caravanID, KindVehicle)}
	for range count {
		crew = append(crew, s.spawn(caravanID, KindHumanlike))
	}
	if count >= 3 {
		crew = append(crew, s.spawn(caravanID, KindAnimal))
	}
	return crew
}

func (s *Spawner) spawn(caravanID uint64, kind Kind) *Member {
	m := &Member{ID: s.nextID, Kind: kind, Alive: true, CaravanID: caravanID, Needs: FullNeeds(kind)}
	s.nextID++

	switch kind {
	case KindVehicle:
		m.Name = s.pick(vehicleNames)
	case KindAnimal:
		m.Name = s.pick(animalNames)
	default:
		m.Name = s.pick(givenNames) + " " + s.pick(familyNames)
	}

	// Crews leave well watered and rested.
	roll := func(floor float64) float64 { return floor + (1-floor)*s.rng.Float64() }
	if n := m.Needs.Thirst; n != nil {
		n.Set(roll(0.7))
	}
	if n := m.Needs.Bladder; n != nil {
		n.Set(roll(0.6))
	}
	if n := m.Needs.Hygiene; n != nil {
		n.Set(roll(0.6))
	}
	return m
}

func (s *Spawner) pick(pool []string) string {
	return pool[s.rng.IntN(len(pool))]
}

var givenNames = []string{
	"Aldric", "Astrid", "Bram", "Brenna", "Calla", "Doran", "Elara", "Finn",
	"Greta", "Halvard", "Iris", "Jasper", "Kira", "Leif", "Mira", "Nessa",
	"Oren", "Sabra", "Tamsin", "Yusuf",
}

var familyNames = []string{
	"Voss", "Ashford", "Dunmore", "Deepwell", "Brightwater", "Riverstone",
	"Holloway", "Farrow", "Mercer", "Saltmarsh", "Hale", "Qadir",
}

var vehicleNames = []string{
	"Dune Hauler", "Rust Wagon", "Gray Lark", "Old Tusker", "Cinder Bus", "Heron Lifter",
}

var animalNames = []string{
	"Dromedary", "Alpaca", "Pack Mule", "Yak", "Onager",
}
