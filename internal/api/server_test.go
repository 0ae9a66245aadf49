package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/talgya/caravan-needs/internal/agents"
	"github.com/talgya/caravan-needs/internal/caravan"
	"github.com/talgya/caravan-needs/internal/config"
	"github.com/talgya/caravan-needs/internal/engine"
	"github.com/talgya/caravan-needs/internal/items"
	"github.com/talgya/caravan-needs/internal/persistence"
	"github.com/talgya/caravan-needs/internal/water"
	"github.com/talgya/caravan-needs/internal/world"
)

type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

const testKey = "secret"

func testServer(t *testing.T, withDB bool) (*Server, *caravan.Caravan) {
	t.Helper()
	cat := water.DefaultCatalog()
	tank, _ := cat.Def("water_tank")
	truck := &agents.Member{ID: 1, Name: "Rust Wagon", Kind: agents.KindVehicle, Alive: true, CaravanID: 7}
	truck.Inventory.Add(items.New(tank).Filled(10, water.Treated))
	rider := &agents.Member{ID: 2, Name: "Iris Voss", Kind: agents.KindHumanlike, Alive: true, CaravanID: 7,
		Needs: agents.FullNeeds(agents.KindHumanlike)}
	c := &caravan.Caravan{ID: 7, Name: "Salt Road", Kind: caravan.KindVehicle, Members: []*agents.Member{truck, rider}}

	tune := config.Default()
	tune.ResolveEveryTicks = 1
	sim := engine.NewSimulation(tune, world.NewUniformMap(2, world.TerrainDesert, 0), nil,
		[]*caravan.Caravan{c}, cat, fixedRand(0.99))

	s := &Server{Sim: sim, Eng: engine.NewEngine(), AdminKey: testKey, SnapshotDir: t.TempDir(), ExposureRate: 2}
	if withDB {
		db, err := persistence.Open(filepath.Join(t.TempDir(), "api.db"))
		if err != nil {
			t.Fatalf("open db: %v", err)
		}
		t.Cleanup(func() { db.Close() })
		s.DB = db
	}
	return s, c
}

func do(t *testing.T, h http.Handler, method, path, body string, admin bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if admin {
		req.Header.Set("Authorization", "Bearer "+testKey)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestStatusAndCaravans(t *testing.T) {
	s, _ := testServer(t, false)
	h := s.Handler()

	var status map[string]any
	decode(t, do(t, h, http.MethodGet, "/api/v1/status", "", false), &status)
	if status["season"] != "Spring" || status["speed"] != 1.0 {
		t.Fatalf("unexpected status %v", status)
	}

	var list []caravanSummary
	decode(t, do(t, h, http.MethodGet, "/api/v1/caravans", "", false), &list)
	if len(list) != 1 || list[0].Name != "Salt Road" || list[0].Alive != 1 || list[0].Logistics.WaterUnits != 10 {
		t.Fatalf("unexpected caravans %+v", list)
	}
	decode(t, do(t, h, http.MethodGet, "/api/v1/caravans?in_flight=true", "", false), &list)
	if len(list) != 0 {
		t.Fatalf("no caravan should be in flight")
	}
}

func TestCaravanDetail(t *testing.T) {
	s, _ := testServer(t, false)
	h := s.Handler()

	var detail struct {
		Name    string           `json:"name"`
		Members []*agents.Member `json:"members"`
	}
	decode(t, do(t, h, http.MethodGet, "/api/v1/caravan/7", "", false), &detail)
	if detail.Name != "Salt Road" || len(detail.Members) != 2 || detail.Members[1].Needs.Thirst == nil {
		t.Fatalf("unexpected detail %+v", detail)
	}

	if rec := do(t, h, http.MethodGet, "/api/v1/caravan/99", "", false); rec.Code != http.StatusNotFound {
		t.Fatalf("missing caravan: status %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/v1/caravan/abc", "", false); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id: status %d", rec.Code)
	}
}

func TestAdminAuth(t *testing.T) {
	s, _ := testServer(t, false)
	h := s.Handler()

	if rec := do(t, h, http.MethodPost, "/api/v1/speed", `{"speed":5}`, false); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var got map[string]float64
	decode(t, do(t, h, http.MethodPost, "/api/v1/speed", `{"speed":5}`, true), &got)
	if got["speed"] != 5 || s.Eng.Speed() != 5 {
		t.Fatalf("speed not applied: %v", got)
	}
	if rec := do(t, h, http.MethodPost, "/api/v1/speed", `{"speed":-1}`, true); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	s.AdminKey = ""
	h = s.Handler()
	if rec := do(t, h, http.MethodPost, "/api/v1/speed", `{"speed":5}`, true); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without admin key, got %d", rec.Code)
	}
}

func TestIntervention(t *testing.T) {
	s, c := testServer(t, false)
	h := s.Handler()

	tests := []struct {
		body string
		code int
	}{
		{`{"type":"provision","caravan":"Salt Road","kind":"water_bottle","count":3,"tier":"treated"}`, http.StatusOK},
		{`{"type":"provision","caravan":"Salt Road","kind":"watr_bottle"}`, http.StatusBadRequest},
		{`{"type":"refill","caravan":"Salt Road","tier":"untreated"}`, http.StatusOK},
		{`{"type":"flight","caravan":"Salt Road","in_flight":true}`, http.StatusOK},
		{`{"type":"flight","caravan":"Nowhere"}`, http.StatusBadRequest},
		{`{"type":"teleport","caravan":"Salt Road"}`, http.StatusBadRequest},
		{`{"type":"refill"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		if rec := do(t, h, http.MethodPost, "/api/v1/intervention", tt.body, true); rec.Code != tt.code {
			t.Fatalf("%s: status %d, want %d (%s)", tt.body, rec.Code, tt.code, rec.Body.String())
		}
	}
	if c.Logistics.Portables != 3 || !c.InFlight {
		t.Fatalf("interventions not applied: %+v inFlight=%v", c.Logistics, c.InFlight)
	}

	var events []engine.Event
	decode(t, do(t, h, http.MethodGet, "/api/v1/events?category=intervention", "", false), &events)
	if len(events) != 2 {
		t.Fatalf("expected 2 intervention events, got %d", len(events))
	}
}

func TestSnapshotAndExposures(t *testing.T) {
	s, c := testServer(t, true)
	h := s.Handler()

	c.Members[1].Needs.Thirst.Level = 0.1
	s.Sim.TickMinute(1)

	var resp map[string]any
	decode(t, do(t, h, http.MethodPost, "/api/v1/snapshot", "", true), &resp)
	if resp["saved"] != true {
		t.Fatalf("unexpected snapshot response %v", resp)
	}
	name, _ := resp["file"].(string)
	if _, err := os.Stat(filepath.Join(s.SnapshotDir, name)); name == "" || err != nil {
		t.Fatalf("snapshot file missing: %q %v", name, err)
	}

	var exp struct {
		Counts map[string]int `json:"counts"`
		Recent []struct {
			Member string `json:"member"`
			Tier   string `json:"tier"`
		} `json:"recent"`
	}
	decode(t, do(t, h, http.MethodGet, "/api/v1/exposures", "", false), &exp)
	if exp.Counts["treated"] != 1 || len(exp.Recent) != 1 || exp.Recent[0].Member != "Iris Voss" {
		t.Fatalf("unexpected exposures %+v", exp)
	}

	// ExposureRate is 2 per minute.
	do(t, h, http.MethodGet, "/api/v1/exposures", "", false)
	rec := do(t, h, http.MethodGet, "/api/v1/exposures", "", false)
	if rec.Code != http.StatusTooManyRequests || rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected rate limit, got %d", rec.Code)
	}
}

func TestExposuresWithoutDB(t *testing.T) {
	s, _ := testServer(t, false)
	if rec := do(t, s.Handler(), http.MethodGet, "/api/v1/exposures", "", false); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.5:4242"
	if ip := clientIP(req); ip != "10.0.0.5" {
		t.Fatalf("remote addr ip = %q", ip)
	}
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if ip := clientIP(req); ip != "203.0.113.9" {
		t.Fatalf("forwarded ip = %q", ip)
	}
}

func TestCORS(t *testing.T) {
	s, _ := testServer(t, false)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/status", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Fatalf("unexpected preflight response %d %v", rec.Code, rec.Header())
	}
}
