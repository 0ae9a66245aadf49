package steward

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/talgya/caravan-needs/internal/agents"
	"github.com/talgya/caravan-needs/internal/api"
	"github.com/talgya/caravan-needs/internal/caravan"
	"github.com/talgya/caravan-needs/internal/config"
	"github.com/talgya/caravan-needs/internal/engine"
	"github.com/talgya/caravan-needs/internal/items"
	"github.com/talgya/caravan-needs/internal/water"
	"github.com/talgya/caravan-needs/internal/world"
)

type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

func info(name string, days float64, containers int) CaravanInfo {
	c := CaravanInfo{Name: name, Alive: 1}
	c.Logistics.DaysOfWater = days
	c.Logistics.Containers = containers
	c.Logistics.Drinkers = 2
	return c
}

func TestTriage(t *testing.T) {
	tests := []struct {
		name      string
		caravans  []CaravanInfo
		exposures map[string]int
		level     string
		dry, low  int
	}{
		{"healthy", []CaravanInfo{info("a", 10, 1)}, nil, "HEALTHY", 0, 0},
		{"low", []CaravanInfo{info("a", 2, 1), info("b", 10, 1)}, nil, "WARNING", 0, 1},
		{"dry", []CaravanInfo{info("a", 0.5, 1), info("b", 2, 1)}, nil, "CRITICAL", 1, 1},
		{"contaminated", []CaravanInfo{info("a", 10, 1)}, map[string]int{"treated": 1, "contaminated": 1}, "WARNING", 0, 0},
		{"contaminated at threshold", []CaravanInfo{info("a", 10, 1)}, map[string]int{"treated": 3, "contaminated": 1}, "HEALTHY", 0, 0},
		{"dead crews ignored", []CaravanInfo{{Name: "ghost"}}, nil, "HEALTHY", 0, 0},
	}
	for _, tt := range tests {
		snap := &Snapshot{Caravans: tt.caravans}
		snap.Status.Exposures = tt.exposures
		h := Triage(snap, DefaultThresholds())
		if h.Level != tt.level || len(h.Dry) != tt.dry || len(h.Low) != tt.low {
			t.Fatalf("%s: level=%s dry=%d low=%d", tt.name, h.Level, len(h.Dry), len(h.Low))
		}
	}
}

func TestDecide(t *testing.T) {
	snap := &Snapshot{Caravans: []CaravanInfo{info("tanker", 0.8, 1), info("walkers", 0.2, 0), info("fine", 9, 1)}}
	snap.Status.Tick = 5000
	h := Triage(snap, DefaultThresholds())
	mem := &CycleMemory{}

	d := Decide(snap, h, mem, 1440)
	if d.Action != "provision" || d.Intervention.Caravan != "walkers" || d.Intervention.Count != 4 {
		t.Fatalf("driest caravan should get bottles first: %+v", d.Intervention)
	}

	mem.Record(CycleRecord{Tick: 4000, Action: "provision", Caravan: "walkers"})
	d = Decide(snap, h, mem, 1440)
	if d.Action != "refill" || d.Intervention.Caravan != "tanker" || d.Intervention.Tier != "treated" {
		t.Fatalf("cooldown should skip to the tanker: %+v", d.Intervention)
	}

	mem.Record(CycleRecord{Tick: 4500, Action: "refill", Caravan: "tanker"})
	d = Decide(snap, h, mem, 1440)
	if d.Action != "none" || d.Intervention != nil {
		t.Fatalf("expected no action, got %+v", d)
	}

	// Records from before a restart do not block.
	snap.Status.Tick = 10
	if d := Decide(snap, h, mem, 1440); d.Action == "none" {
		t.Fatalf("stale records should not block")
	}
}

func TestMemoryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "steward.json")
	mem := LoadMemory(path)
	for i := 0; i < maxRecords+5; i++ {
		mem.Record(CycleRecord{Tick: uint64(i), Action: "none"})
	}
	mem.Record(CycleRecord{Tick: 99, Action: "refill", Caravan: "tanker"})
	mem.Save()

	got := LoadMemory(path)
	if len(got.Records) != maxRecords {
		t.Fatalf("records = %d", len(got.Records))
	}
	if tick, ok := got.LastActed("tanker"); !ok || tick != 99 {
		t.Fatalf("LastActed = %d, %v", tick, ok)
	}
	if _, ok := got.LastActed("walkers"); ok {
		t.Fatalf("unknown caravan should have no record")
	}
}

// liveAPI serves a real simulation: a truck caravan nearly out of water and a foot
// caravan with nothing to drink at all.
func liveAPI(t *testing.T) (*httptest.Server, *engine.Simulation) {
	t.Helper()
	cat := water.DefaultCatalog()
	tank, _ := cat.Def("water_tank")

	truck := &agents.Member{ID: 1, Name: "Rust Wagon", Kind: agents.KindVehicle, Alive: true, CaravanID: 1}
	truck.Inventory.Add(items.New(tank).Filled(0.5, water.Untreated))
	rider := &agents.Member{ID: 2, Name: "Iris Voss", Kind: agents.KindHumanlike, Alive: true, CaravanID: 1,
		Needs: agents.FullNeeds(agents.KindHumanlike)}
	salt := &caravan.Caravan{ID: 1, Name: "Salt Road", Kind: caravan.KindVehicle, Members: []*agents.Member{truck, rider}}

	walker := &agents.Member{ID: 3, Name: "Oren Hale", Kind: agents.KindHumanlike, Alive: true, CaravanID: 2,
		Needs: agents.FullNeeds(agents.KindHumanlike)}
	dusty := &caravan.Caravan{ID: 2, Name: "Dusty Mile", Kind: caravan.KindFoot, Members: []*agents.Member{walker}}

	sim := engine.NewSimulation(config.Default(), world.NewUniformMap(2, world.TerrainDesert, 0), nil,
		[]*caravan.Caravan{salt, dusty}, cat, fixedRand(0.99))
	srv := &api.Server{Sim: sim, Eng: engine.NewEngine(), AdminKey: "k"}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, sim
}

func TestRunCycleAgainstAPI(t *testing.T) {
	ts, sim := liveAPI(t)
	st := New(ts.URL, "k", LoadMemory(""))

	d, err := st.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("first cycle: %v", err)
	}
	if d.Action != "provision" || d.Intervention.Caravan != "Dusty Mile" {
		t.Fatalf("first cycle should provision the foot caravan: %+v", d)
	}

	d, err = st.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("second cycle: %v", err)
	}
	if d.Action != "refill" || d.Intervention.Caravan != "Salt Road" {
		t.Fatalf("second cycle should refill the truck: %+v", d)
	}

	d, err = st.RunCycle(context.Background())
	if err != nil || d.Action != "none" || !strings.HasPrefix(d.Rationale, "WARNING") {
		t.Fatalf("third cycle: %+v, %v", d, err)
	}

	sim.View(func(s *engine.Simulation) {
		if got := s.CaravanIndex[1].Logistics.WaterUnits; got != 20 {
			t.Fatalf("tank should be full, got %v", got)
		}
		if got := s.CaravanIndex[2].Logistics.Portables; got != 2 {
			t.Fatalf("walker should carry 2 bottles, got %d", got)
		}
	})
	if len(st.Memory.Records) != 3 {
		t.Fatalf("records = %d", len(st.Memory.Records))
	}
}

func TestRunCycleRejectedKey(t *testing.T) {
	ts, _ := liveAPI(t)
	st := New(ts.URL, "wrong", LoadMemory(""))
	if _, err := st.RunCycle(context.Background()); err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
	if len(st.Memory.Records) != 0 {
		t.Fatalf("failed cycles should not be recorded")
	}
}

func TestWaitReady(t *testing.T) {
	ts, _ := liveAPI(t)
	if err := NewObserver(ts.URL).WaitReady(context.Background(), time.Second); err != nil {
		t.Fatalf("live API should be ready: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewObserver("http://127.0.0.1:1").WaitReady(ctx, time.Second); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
