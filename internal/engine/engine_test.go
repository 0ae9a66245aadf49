package engine

import (
	"strings"
	"testing"

	"github.com/talgya/caravan-needs/internal/agents"
	"github.com/talgya/caravan-needs/internal/caravan"
	"github.com/talgya/caravan-needs/internal/config"
	"github.com/talgya/caravan-needs/internal/items"
	"github.com/talgya/caravan-needs/internal/water"
	"github.com/talgya/caravan-needs/internal/world"
)

type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

func TestEngineSchedule(t *testing.T) {
	e := NewEngine()
	var ticks, hours, days int
	e.OnTick = func(uint64) { ticks++ }
	e.OnHour = func(uint64) { hours++ }
	e.OnDay = func(uint64) { days++ }
	for i := 0; i < TicksPerSimDay; i++ {
		e.Step()
	}
	if ticks != TicksPerSimDay || hours != 24 || days != 1 {
		t.Fatalf("ticks=%d hours=%d days=%d", ticks, hours, days)
	}
}

func TestEngineSpeed(t *testing.T) {
	e := NewEngine()
	if e.Speed() != 1 || e.Running() {
		t.Fatalf("unexpected defaults speed=%v running=%v", e.Speed(), e.Running())
	}
	e.SetSpeed(12.5)
	if e.Speed() != 12.5 {
		t.Fatalf("speed = %v", e.Speed())
	}
}

func TestSimTime(t *testing.T) {
	tests := []struct {
		tick uint64
		want string
	}{
		{0, "Spring Day 1, 0:00 Year 1"},
		{TicksPerSimDay + 61, "Spring Day 2, 1:01 Year 1"},
		{TicksPerSimSeason, "Summer Day 1, 0:00 Year 1"},
		{4 * TicksPerSimSeason, "Spring Day 1, 0:00 Year 2"},
	}
	for _, tt := range tests {
		if got := SimTime(tt.tick); got != tt.want {
			t.Fatalf("SimTime(%d) = %q, want %q", tt.tick, got, tt.want)
		}
	}
}

func TestCalendarAt(t *testing.T) {
	c := CalendarAt(3*TicksPerSimSeason + 10*TicksPerSimDay + 13*TicksPerSimHour + 7)
	want := Calendar{Year: 1, Season: SeasonWinter, Day: 11, Hour: 13, Minute: 7}
	if c != want {
		t.Fatalf("CalendarAt = %+v, want %+v", c, want)
	}
	if SeasonAt(5*TicksPerSimSeason) != SeasonSummer || SeasonName(7) != "Unknown" {
		t.Fatalf("unexpected season lookup")
	}
}

// testSim builds a desert world with one caravan: a truck carrying a tank and one rider.
func testSim(t *testing.T, tune config.Tuning) (*Simulation, *caravan.Caravan) {
	t.Helper()
	cat := water.DefaultCatalog()
	m := world.NewUniformMap(3, world.TerrainDesert, 0)
	tankDef, _ := cat.Def("water_tank")
	truck := &agents.Member{ID: 1, Name: "Rust Wagon", Kind: agents.KindVehicle, Alive: true, CaravanID: 1}
	truck.Inventory.Add(items.New(tankDef).Filled(10, water.Treated))
	rider := &agents.Member{ID: 2, Name: "Iris Voss", Kind: agents.KindHumanlike, Alive: true, CaravanID: 1,
		Needs: agents.FullNeeds(agents.KindHumanlike)}
	c := &caravan.Caravan{ID: 1, Name: "Salt Road", Kind: caravan.KindVehicle, Members: []*agents.Member{truck, rider}}
	wps := []world.Waypoint{
		{Coord: world.HexCoord{}, Name: "Dry Well"},
		{Coord: world.HexCoord{Q: 3, R: -1}, Name: "Far Spring"},
	}
	return NewSimulation(tune, m, wps, []*caravan.Caravan{c}, cat, fixedRand(0.99)), c
}

func TestTickMinuteResolvesOnSchedule(t *testing.T) {
	tune := config.Default()
	tune.ResolveEveryTicks = 2
	tune.Decay = config.Decay{Thirst: 0.2}
	sim, c := testSim(t, tune)
	rider := c.Members[1]
	rider.Needs.Thirst.Level = 0.45

	sim.TickMinute(1) // decays to 0.25: thirsty, but not a resolve tick
	if rider.Needs.Thirst.Level > 0.3 || !rider.Needs.Thirst.Thirsty() {
		t.Fatalf("expected thirsty rider, got %+v", *rider.Needs.Thirst)
	}
	sim.TickMinute(2)
	if rider.Needs.Thirst.Level != 1 {
		t.Fatalf("rider should drink on the resolve tick, thirst=%v", rider.Needs.Thirst.Level)
	}
	recs := sim.Exposures.Drain()
	if len(recs) != 1 || recs[0].Tier != water.Treated || recs[0].Tick != 2 {
		t.Fatalf("unexpected exposures %+v", recs)
	}
}

func TestDehydrationDeath(t *testing.T) {
	tune := config.Default()
	tune.ResolveEveryTicks = 0
	tune.Decay = config.Decay{Thirst: 1, DehydrationTicks: 2}
	sim, c := testSim(t, tune)

	sim.TickMinute(1)
	sim.TickMinute(2)
	if c.Members[1].Alive {
		t.Fatalf("rider should have died")
	}
	events := sim.DrainEvents()
	if len(events) != 1 || events[0].Category != "death" {
		t.Fatalf("expected one death event, got %+v", events)
	}
	if len(sim.DrainEvents()) != 0 {
		t.Fatalf("drain should clear events")
	}
	sim.updateStats()
	if sim.Stats.Deaths != 1 || sim.Stats.Alive != 0 {
		t.Fatalf("stats = %+v", sim.Stats)
	}
}

func TestAirshipFlightAndArrival(t *testing.T) {
	tune := config.Default()
	tune.MoveEveryTicks = TicksPerSimHour
	sim, c := testSim(t, tune)
	c.Airship = true

	sim.TickHour(60)
	if !c.InFlight || c.Dest != "Far Spring" || len(c.Route) != 3 {
		t.Fatalf("airship should be flying to Far Spring: %+v", c)
	}
	for i := 2; i <= 4; i++ {
		sim.TickHour(uint64(i * 60))
	}
	if c.InFlight || c.Position != (world.HexCoord{Q: 3, R: -1}) {
		t.Fatalf("airship should have landed, pos=%v inFlight=%v", c.Position, c.InFlight)
	}
	var cats []string
	for _, e := range sim.Events {
		cats = append(cats, e.Category)
	}
	if strings.Join(cats, ",") != "flight,arrival" {
		t.Fatalf("events = %v", cats)
	}
}

func TestInterventions(t *testing.T) {
	sim, c := testSim(t, config.Default())

	if _, err := sim.ProvisionCaravan("Salt Road", "water_botle", 2, ""); err == nil ||
		!strings.Contains(err.Error(), "water_bottle") {
		t.Fatalf("expected suggestion error, got %v", err)
	}
	if _, err := sim.ProvisionCaravan("Salt Road", "water_bottle", 2, "treated"); err != nil {
		t.Fatalf("provision: %v", err)
	}
	if c.Logistics.Portables != 2 {
		t.Fatalf("logistics not recomputed: %+v", c.Logistics)
	}

	if _, err := sim.RefillCaravan("Salt Road", "untreated"); err != nil {
		t.Fatalf("refill: %v", err)
	}
	if c.Logistics.WaterUnits != 20 {
		t.Fatalf("tank should be full, water=%v", c.Logistics.WaterUnits)
	}
	if _, err := sim.RefillCaravan("Nowhere", "treated"); err == nil {
		t.Fatalf("unknown caravan should fail")
	}
	if _, err := sim.RefillCaravan("Salt Road", "muddy"); err == nil {
		t.Fatalf("unknown tier should fail")
	}

	if _, err := sim.SetFlight("Salt Road", true); err != nil || !c.InFlight {
		t.Fatalf("set flight: %v", err)
	}
}

func TestBuildFleet(t *testing.T) {
	cat := water.DefaultCatalog()
	wps := []world.Waypoint{{Name: "A"}, {Coord: world.HexCoord{Q: 1}, Name: "B"}}
	f := config.Fleet{Caravans: 5, CrewPerCaravan: 3, FlyingShare: 0.4, FootShare: 0.2}
	fleet, err := BuildFleet(f, wps, cat, agents.NewSpawner(42), fixedRand(1))
	if err != nil {
		t.Fatalf("build fleet: %v", err)
	}
	if len(fleet) != 5 {
		t.Fatalf("fleet size %d", len(fleet))
	}
	airships, foot := 0, 0
	for i, c := range fleet {
		if c.Airship {
			airships++
		}
		if c.Kind == caravan.KindFoot {
			foot++
			if c.Airship || i != 4 {
				t.Fatalf("caravan %d: foot caravans come last and never fly", i)
			}
		}
		if c.Position != wps[i%2].Coord {
			t.Fatalf("caravan %d starts at %v", i, c.Position)
		}
		if len(c.Members) != 5 || c.Carrier().Kind != agents.KindVehicle {
			t.Fatalf("caravan %d crew %d", i, len(c.Members))
		}
		if len(c.Pool()) == 0 {
			t.Fatalf("caravan %d has no cargo", i)
		}
	}
	if airships != 2 || foot != 1 {
		t.Fatalf("airships = %d, foot = %d, want 2 and 1", airships, foot)
	}
	if _, err := BuildFleet(f, nil, cat, agents.NewSpawner(1), fixedRand(1)); err == nil {
		t.Fatalf("no waypoints should fail")
	}
}
