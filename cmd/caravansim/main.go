// Command caravansim runs caravans across a generated world and resolves their crews' needs.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/talgya/caravan-needs/internal/agents"
	"github.com/talgya/caravan-needs/internal/api"
	"github.com/talgya/caravan-needs/internal/caravan"
	"github.com/talgya/caravan-needs/internal/config"
	"github.com/talgya/caravan-needs/internal/engine"
	"github.com/talgya/caravan-needs/internal/entropy"
	"github.com/talgya/caravan-needs/internal/persistence"
	"github.com/talgya/caravan-needs/internal/water"
	"github.com/talgya/caravan-needs/internal/weather"
	"github.com/talgya/caravan-needs/internal/world"
)

const waypointCount = 12

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(),
	}))
	slog.SetDefault(logger)

	slog.Info("Caravans: needs simulation")

	if err := config.LoadEnv(); err != nil {
		fatal("failed to load env", err)
	}
	rt, err := config.RuntimeFromEnv()
	if err != nil {
		fatal("invalid environment", err)
	}
	tune, err := config.LoadTuning(rt.TuningPath)
	if err != nil {
		fatal("failed to load tuning", err)
	}
	if rt.Seed != 0 {
		tune.Seed = rt.Seed
	}
	if err := tune.Validate(); err != nil {
		fatal("invalid tuning", err)
	}

	cat := water.DefaultCatalog()
	if tune.CatalogPath != "" {
		if cat, err = water.LoadCatalog(tune.CatalogPath); err != nil {
			fatal("failed to load item catalog", err)
		}
	}
	slog.Info("item catalog", "kinds", len(cat.Kinds()))

	// ── Database ──────────────────────────────────────────────────────
	if err := os.MkdirAll(filepath.Dir(rt.DBPath), 0o755); err != nil {
		fatal("failed to create data dir", err)
	}
	db, err := persistence.Open(rt.DBPath)
	if err != nil {
		fatal("failed to open database", err)
	}
	defer db.Close()
	slog.Info("database opened", "path", rt.DBPath)

	// ── World Map (always regenerated, deterministic from seed) ───────
	slog.Info("generating world map...")
	worldMap := world.Generate(world.GenConfig{
		Radius:      tune.World.Radius,
		Seed:        tune.Seed,
		SeaLevel:    tune.World.SeaLevel,
		MountainLvl: tune.World.MountainLvl,
	})
	for t, c := range world.TerrainCounts(worldMap) {
		slog.Info("terrain", "type", world.TerrainName(t), "count", c)
	}
	waypoints := world.PlaceWaypoints(worldMap, tune.Seed, waypointCount)
	slog.Info("waypoints placed", "count", len(waypoints))

	// ── Load or Build Fleet ───────────────────────────────────────────
	var caravans []*caravan.Caravan
	var startTick uint64
	var startSeason uint8
	spawner := agents.NewSpawner(tune.Seed)

	if db.HasWorldState() {
		slog.Info("found saved state, loading...")
		if caravans, err = db.LoadCaravans(); err != nil {
			fatal("failed to load caravans", err)
		}
		if startTick, startSeason, err = db.LoadClock(); err != nil {
			fatal("failed to read saved clock", err)
		}

		var maxID agents.MemberID
		for _, c := range caravans {
			for _, m := range c.Members {
				if m.ID > maxID {
					maxID = m.ID
				}
			}
		}
		spawner.SetNextID(maxID + 1)

		slog.Info("state restored",
			"caravans", len(caravans),
			"tick", startTick,
			"season", engine.SeasonName(startSeason),
			"sim_time", engine.SimTime(startTick),
		)
	} else {
		slog.Info("no saved state found, building fleet...")
		stock := entropy.NewSeeded(tune.Seed, "provision")
		if caravans, err = engine.BuildFleet(tune.Fleet, waypoints, cat, spawner, stock); err != nil {
			fatal("failed to build fleet", err)
		}
	}

	// ── Entropy ───────────────────────────────────────────────────────
	// Ambient draws use random.org when keyed, otherwise a seeded stream.
	var ambient entropy.Source = entropy.NewSeeded(tune.Seed, "ambient")
	if rc := entropy.NewClient(rt.RandomOrgKey); rc.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if err := rc.Prime(ctx); err != nil {
			slog.Warn("random.org prime failed, using crypto/rand until a refill succeeds", "error", err)
		}
		cancel()
		ambient = entropy.FromClient(rc, entropy.Crypto{})
		slog.Info("random.org entropy enabled")
	}

	// ── Simulation ────────────────────────────────────────────────────
	sim := engine.NewSimulation(tune, worldMap, waypoints, caravans, cat, ambient)
	sim.Spawner = spawner
	sim.LastTick = startTick
	sim.CurrentSeason = startSeason

	if wc := weather.NewClient(rt.WeatherKey, rt.WeatherLocation); wc != nil {
		sim.WeatherClient = wc
		slog.Info("live weather enabled", "location", rt.WeatherLocation)
	} else {
		slog.Warn("OPENWEATHER_API_KEY not set, using seasonal rainfall")
		sim.CurrentWeather = weather.MapToSim(nil, startSeason)
	}

	if startTick == 0 {
		if err := db.SaveWorldState(sim); err != nil {
			slog.Error("initial save failed", "error", err)
		}
	}

	eng := engine.NewEngine()
	eng.Tick = startTick
	eng.Interval = time.Duration(tune.TickIntervalMs) * time.Millisecond

	// Auto-save every sim-day; snapshot every season.
	eng.OnTick = sim.TickMinute
	eng.OnHour = sim.TickHour
	eng.OnDay = func(tick uint64) {
		sim.TickDay(tick)
		if err := db.SaveWorldState(sim); err != nil {
			slog.Error("daily save failed", "error", err)
		}
	}
	eng.OnSeason = func(tick uint64) {
		sim.TickSeason(tick)
		if rt.SnapshotDir == "" {
			return
		}
		if _, err := api.WriteSnapshot(sim, rt.SnapshotDir); err != nil {
			slog.Error("season snapshot failed", "error", err)
		}
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	if rt.AdminKey == "" {
		slog.Warn("CARAVAN_ADMIN_KEY not set, admin POST endpoints will be disabled")
	}
	apiServer := &api.Server{
		Sim:         sim,
		Eng:         eng,
		DB:          db,
		Port:        rt.APIPort,
		AdminKey:    rt.AdminKey,
		SnapshotDir: rt.SnapshotDir,
	}
	apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	fmt.Printf("\n%d caravans on the road between %d waypoints.\n", len(caravans), len(waypoints))
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", rt.APIPort)
	if startTick > 0 {
		fmt.Printf("Resuming from tick %d (%s)\n", startTick, engine.SimTime(startTick))
	}
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run()

	slog.Info("final save...")
	if err := db.SaveWorldState(sim); err != nil {
		slog.Error("final save failed", "error", err)
	}
	fmt.Println("Simulation stopped. State saved.")
}

func logLevel() slog.Level {
	if os.Getenv("CARAVAN_DEBUG") != "" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
