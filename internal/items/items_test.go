package items

import (
	"testing"

	"github.com/talgya/caravan-needs/internal/water"
)

func TestNewStorageThing(t *testing.T) {
	def, _ := water.DefaultCatalog().Def("water_tank")
	tank := New(def).Filled(50, water.Treated)
	s, ok := tank.WaterStorage()
	if !ok {
		t.Fatalf("tank should have storage")
	}
	if s.Volume != def.WaterCapacity || s.Quality != water.Treated {
		t.Fatalf("expected volume capped at capacity, got %+v", s)
	}

	bottleDef, _ := water.DefaultCatalog().Def("water_bottle")
	if _, ok := New(bottleDef).WaterStorage(); ok {
		t.Fatalf("bottle has no storage capability")
	}
}

func TestPackedThingExposesInnerStorage(t *testing.T) {
	def, _ := water.DefaultCatalog().Def("water_tank")
	tank := New(def).Filled(3, water.Untreated)
	packed := Packed(tank)
	if packed.Storage != nil {
		t.Fatalf("packed wrapper should not carry storage itself")
	}
	s, ok := packed.WaterStorage()
	if !ok || s.Volume != 3 {
		t.Fatalf("expected inner storage through wrapper, got %+v ok=%v", s, ok)
	}
}

func TestDrawFloorsAtZero(t *testing.T) {
	s := &WaterStorage{Volume: 0.3, Capacity: 5}
	if got := s.Draw(1.0); got != 0.3 {
		t.Fatalf("expected capped draw 0.3, got %v", got)
	}
	if s.Volume != 0 {
		t.Fatalf("expected empty storage, got %v", s.Volume)
	}
	if got := s.Draw(0.5); got != 0 {
		t.Fatalf("expected nothing from empty storage, got %v", got)
	}
}

func TestContaminationCapability(t *testing.T) {
	def, _ := water.DefaultCatalog().Def("water_bottle")
	b := New(def)
	if _, ok := b.Contamination(); ok {
		t.Fatalf("fresh bottle has no explicit tier")
	}
	b.WithTier(water.Contaminated)
	if tier, ok := b.Contamination(); !ok || tier != water.Contaminated {
		t.Fatalf("expected contaminated, got %v ok=%v", tier, ok)
	}
}

func TestInventoryRemove(t *testing.T) {
	a, b, c := &Thing{Kind: "a"}, &Thing{Kind: "b"}, &Thing{Kind: "a"}
	var inv Inventory
	inv.Add(a)
	inv.Add(b)
	inv.Add(c)
	if !inv.Remove(b) || inv.Contains(b) || len(inv) != 2 {
		t.Fatalf("expected b removed, got %v", inv)
	}
	if inv.Remove(b) {
		t.Fatalf("second remove should report false")
	}
	if inv.CountKind("a") != 2 {
		t.Fatalf("expected two of kind a")
	}
}
