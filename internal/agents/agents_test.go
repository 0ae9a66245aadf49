package agents

import (
	"math"
	"testing"

	"github.com/talgya/caravan-needs/internal/config"
)

func TestNeedSetClamps(t *testing.T) {
	n := &Need{}
	n.Set(1.7)
	if n.Level != 1 {
		t.Fatalf("expected clamp to 1, got %v", n.Level)
	}
	n.Set(-0.2)
	if n.Level != 0 {
		t.Fatalf("expected clamp to 0, got %v", n.Level)
	}
}

func TestTopUpNeverLowers(t *testing.T) {
	n := &Need{Level: 0.9}
	n.TopUp(0.7)
	if n.Level != 0.9 {
		t.Fatalf("top-up lowered the level to %v", n.Level)
	}
	n.Level = 0.2
	n.TopUp(0.7)
	if n.Level != 0.7 {
		t.Fatalf("expected 0.7, got %v", n.Level)
	}
}

func TestFullNeedsByKind(t *testing.T) {
	h := FullNeeds(KindHumanlike)
	if h.Thirst == nil || h.Bladder == nil || h.Hygiene == nil {
		t.Fatalf("humanlike members need every need: %+v", h)
	}
	a := FullNeeds(KindAnimal)
	if a.Thirst == nil || a.Bladder != nil || a.Hygiene != nil {
		t.Fatalf("animals only get thirst: %+v", a)
	}
	v := FullNeeds(KindVehicle)
	if v.Thirst != nil || v.Bladder != nil || v.Hygiene != nil {
		t.Fatalf("vehicles have no needs: %+v", v)
	}
}

func TestDecayNeedsUpdatesCategory(t *testing.T) {
	m := &Member{Alive: true, Needs: FullNeeds(KindHumanlike)}
	m.Needs.Thirst.Level = 0.305
	d := config.Decay{Thirst: 0.01, Bladder: 0.02, Hygiene: 0.03}
	DecayNeeds(m, d, 0.3)
	if !m.Needs.Thirst.Thirsty() {
		t.Fatalf("expected thirsty at %v", m.Needs.Thirst.Level)
	}
	if !near(m.Needs.Bladder.Level, 0.98) || !near(m.Needs.Hygiene.Level, 0.97) {
		t.Fatalf("unexpected decay bladder=%v hygiene=%v", m.Needs.Bladder.Level, m.Needs.Hygiene.Level)
	}
}

func TestDecayNeedsDehydrationDeath(t *testing.T) {
	m := &Member{Alive: true, Needs: FullNeeds(KindAnimal)}
	m.Needs.Thirst.Level = 0
	d := config.Decay{Thirst: 0.01, DehydrationTicks: 3}
	died := false
	for i := 0; i < 3; i++ {
		died = DecayNeeds(m, d, 0.3)
	}
	if !died || m.Alive {
		t.Fatalf("expected death after 3 dry ticks, dry=%d alive=%v", m.DryTicks, m.Alive)
	}
	if DecayNeeds(m, d, 0.3) {
		t.Fatalf("dead members do not die twice")
	}
}

func TestDecaySkipsMissingNeeds(t *testing.T) {
	m := &Member{Alive: true, Kind: KindVehicle}
	if DecayNeeds(m, config.Default().Decay, 0.3) {
		t.Fatalf("vehicle should not die from decay")
	}
}

func TestSpawnCrew(t *testing.T) {
	s := NewSpawner(42)
	crew := s.SpawnCrew(7, 4)
	if len(crew) != 6 {
		t.Fatalf("expected vehicle + 4 travelers + animal, got %d", len(crew))
	}
	if crew[0].Kind != KindVehicle || crew[len(crew)-1].Kind != KindAnimal {
		t.Fatalf("unexpected crew layout")
	}
	ids := map[MemberID]bool{}
	for _, m := range crew {
		if ids[m.ID] {
			t.Fatalf("duplicate id %d", m.ID)
		}
		ids[m.ID] = true
		if m.CaravanID != 7 || !m.Alive || m.Name == "" {
			t.Fatalf("bad member %+v", m)
		}
		if th := m.Needs.Thirst; th != nil && (th.Level < 0.7 || th.Level > 1) {
			t.Fatalf("starting thirst out of range: %v", th.Level)
		}
	}

	again := NewSpawner(42).SpawnCrew(7, 4)
	for i := range crew {
		if crew[i].Name != again[i].Name {
			t.Fatalf("spawner not deterministic at %d", i)
		}
	}
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
