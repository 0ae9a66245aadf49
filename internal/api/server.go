// Package api provides the HTTP API for observing caravans.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/caravan-needs/internal/caravan"
	"github.com/talgya/caravan-needs/internal/engine"
	"github.com/talgya/caravan-needs/internal/persistence"
	"github.com/talgya/caravan-needs/internal/snapshot"
	"github.com/talgya/caravan-needs/internal/world"
)

// Server serves the simulation state over HTTP.
type Server struct {
	Sim         *engine.Simulation
	Eng         *engine.Engine
	DB          *persistence.DB // nil disables /exposures history and database saves
	Port        int
	AdminKey    string // Bearer token for POST endpoints. Empty = POST disabled.
	SnapshotDir string // Empty = no zstd snapshot files.

	// Requests per IP per minute on /exposures. Zero uses the default.
	ExposureRate int
}

// Handler builds the routed handler with CORS applied.
func (s *Server) Handler() http.Handler {
	rate := s.ExposureRate
	if rate <= 0 {
		rate = 60
	}
	exposureLimiter := NewRateLimiter(rate, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/caravans", s.handleCaravans)
	mux.HandleFunc("/api/v1/caravan/", s.handleCaravanDetail)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/exposures", RateLimitMiddleware(exposureLimiter, s.handleExposures))

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(s.handleSnapshot))
	mux.HandleFunc("/api/v1/intervention", s.adminOnly(s.handleIntervention))

	return corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "", "snapshots", s.SnapshotDir != "")

	handler := s.Handler()
	go func() {
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// CORS_ORIGINS is a comma-separated list; localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both GET and POST).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no CARAVAN_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var status map[string]any
	s.Sim.View(func(sim *engine.Simulation) {
		tick := sim.CurrentTick()
		status = map[string]any{
			"name":     "Caravans",
			"tick":     tick,
			"sim_time": engine.SimTime(tick),
			"season":   engine.SeasonName(sim.CurrentSeason),
			"weather": map[string]any{
				"description":  sim.CurrentWeather.Description,
				"rainfall_mod": sim.CurrentWeather.RainfallMod,
			},
			"stats":     sim.Stats,
			"exposures": tierCounts(sim),
		}
	})
	status["speed"] = s.Eng.Speed()
	status["running"] = s.Eng.Running()
	writeJSON(w, status)
}

func tierCounts(sim *engine.Simulation) map[string]int {
	out := make(map[string]int)
	for tier, n := range sim.Exposures.Totals() {
		out[tier.String()] = n
	}
	return out
}

type caravanSummary struct {
	ID          uint64            `json:"id"`
	Name        string            `json:"name"`
	Kind        string            `json:"kind"`
	Position    world.HexCoord    `json:"position"`
	Destination string            `json:"destination,omitempty"`
	InFlight    bool              `json:"in_flight"`
	Airship     bool              `json:"airship"`
	Crew        int               `json:"crew"`
	Alive       int               `json:"alive"`
	Logistics   caravan.Logistics `json:"logistics"`
}

func summarize(c *caravan.Caravan) caravanSummary {
	return caravanSummary{
		ID:          c.ID,
		Name:        c.Name,
		Kind:        c.Kind.String(),
		Position:    c.Position,
		Destination: c.Dest,
		InFlight:    c.InFlight,
		Airship:     c.Airship,
		Crew:        len(c.Members),
		Alive:       len(c.Living()),
		Logistics:   c.Logistics,
	}
}

func (s *Server) handleCaravans(w http.ResponseWriter, r *http.Request) {
	flying := r.URL.Query().Get("in_flight")

	result := []caravanSummary{}
	s.Sim.View(func(sim *engine.Simulation) {
		for _, c := range sim.Caravans {
			if flying != "" && strconv.FormatBool(c.InFlight) != flying {
				continue
			}
			result = append(result, summarize(c))
		}
	})
	writeJSON(w, result)
}

// handleCaravanDetail serves GET /api/v1/caravan/:id with members, needs, and inventories.
func (s *Server) handleCaravanDetail(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/v1/caravan/")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		http.Error(w, "invalid caravan id", http.StatusBadRequest)
		return
	}

	var body []byte
	found := false
	s.Sim.View(func(sim *engine.Simulation) {
		c, ok := sim.CaravanIndex[id]
		if !ok {
			return
		}
		found = true
		body, err = json.MarshalIndent(struct {
			caravanSummary
			Members any `json:"members"`
			Route   any `json:"route"`
		}{summarize(c), c.Members, c.Route}, "", "  ")
	})
	if !found {
		http.Error(w, "caravan not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("encode caravan failed", "caravan", id, "error", err)
		http.Error(w, "encode failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 50, 500)
	category := r.URL.Query().Get("category")

	var events []engine.Event
	s.Sim.View(func(sim *engine.Simulation) {
		for _, e := range sim.Events {
			if category == "" || e.Category == category {
				events = append(events, e)
			}
		}
	})

	start := 0
	if len(events) > limit {
		start = len(events) - limit
	}
	writeJSON(w, events[start:])
}

// handleExposures serves the stored exposure history. Records still pending in memory
// appear after the next save.
func (s *Server) handleExposures(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	limit := queryLimit(r, 100, 1000)

	recent, err := s.DB.RecentExposures(limit)
	if err != nil {
		slog.Error("exposure query failed", "error", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	counts, err := s.DB.ExposureCounts()
	if err != nil {
		slog.Error("exposure count failed", "error", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{
		"counts": counts,
		"recent": recent,
	})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Eng.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

// handleSnapshot saves to the database and, when configured, writes a zstd snapshot file.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil && s.SnapshotDir == "" {
		http.Error(w, "no storage configured", http.StatusServiceUnavailable)
		return
	}

	resp := map[string]any{}
	if s.DB != nil {
		if err := s.DB.SaveWorldState(s.Sim); err != nil {
			slog.Error("world save failed", "error", err)
			http.Error(w, "save failed", http.StatusInternalServerError)
			return
		}
		resp["saved"] = true
	}
	if s.SnapshotDir != "" {
		path, err := WriteSnapshot(s.Sim, s.SnapshotDir)
		if err != nil {
			slog.Error("snapshot write failed", "error", err)
			http.Error(w, "snapshot failed", http.StatusInternalServerError)
			return
		}
		resp["file"] = filepath.Base(path)
	}
	resp["tick"] = currentTick(s.Sim)
	writeJSON(w, resp)
}

// WriteSnapshot captures sim and writes it under dir, returning the file path.
func WriteSnapshot(sim *engine.Simulation, dir string) (string, error) {
	snap, err := snapshot.Capture(sim)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, snapshot.FileName(snap.Header.Tick))
	if err := snapshot.Write(path, snap); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	slog.Info("snapshot written", "path", path, "tick", snap.Header.Tick)
	return path, nil
}

func (s *Server) handleIntervention(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Type     string `json:"type"`
		Caravan  string `json:"caravan"`
		Kind     string `json:"kind,omitempty"`
		Count    int    `json:"count,omitempty"`
		Tier     string `json:"tier,omitempty"`
		InFlight bool   `json:"in_flight,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Caravan == "" {
		http.Error(w, "caravan required", http.StatusBadRequest)
		return
	}

	var (
		details string
		err     error
	)
	switch req.Type {
	case "provision":
		if req.Kind == "" {
			http.Error(w, "kind required for provision type", http.StatusBadRequest)
			return
		}
		count := req.Count
		if count == 0 {
			count = 1
		}
		details, err = s.Sim.ProvisionCaravan(req.Caravan, req.Kind, count, req.Tier)
	case "refill":
		tier := req.Tier
		if tier == "" {
			tier = "treated"
		}
		details, err = s.Sim.RefillCaravan(req.Caravan, tier)
	case "flight":
		details, err = s.Sim.SetFlight(req.Caravan, req.InFlight)
	default:
		http.Error(w, "unknown intervention type (provision, refill, flight)", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	slog.Info("intervention applied", "type", req.Type, "caravan", req.Caravan)
	writeJSON(w, map[string]any{"success": true, "details": details})
}

func currentTick(sim *engine.Simulation) uint64 {
	var tick uint64
	sim.View(func(s *engine.Simulation) { tick = s.CurrentTick() })
	return tick
}

func queryLimit(r *http.Request, def, ceiling int) int {
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= ceiling {
			return n
		}
	}
	return def
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
