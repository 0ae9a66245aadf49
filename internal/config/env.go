package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Runtime holds process settings that come from the environment rather than tuning.
type Runtime struct {
	TuningPath      string
	DBPath          string
	SnapshotDir     string
	APIPort         int
	AdminKey        string
	WeatherKey      string
	WeatherLocation string
	RandomOrgKey    string
	Seed            int64 // 0 = use tuning seed
}

// LoadEnv loads variables from the given .env files (default ".env") into the process
// environment. Missing files are not an error; variables already set are kept.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				slog.Debug("no env file", "path", f)
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
		slog.Info("loaded env file", "path", f)
	}
	return nil
}

// RuntimeFromEnv reads runtime settings, applying defaults for unset variables.
func RuntimeFromEnv() (Runtime, error) {
	rt := Runtime{
		TuningPath:      os.Getenv("CARAVAN_TUNING"),
		DBPath:          envOr("CARAVAN_DB_PATH", "data/caravans.db"),
		SnapshotDir:     envOr("CARAVAN_SNAPSHOT_DIR", "data/snapshots"),
		APIPort:         8080,
		AdminKey:        os.Getenv("CARAVAN_ADMIN_KEY"),
		WeatherKey:      os.Getenv("OPENWEATHER_API_KEY"),
		WeatherLocation: os.Getenv("OPENWEATHER_LOCATION"),
		RandomOrgKey:    os.Getenv("RANDOM_ORG_API_KEY"),
	}
	if v := os.Getenv("CARAVAN_API_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return rt, fmt.Errorf("CARAVAN_API_PORT: invalid port %q", v)
		}
		rt.APIPort = port
	}
	if v := os.Getenv("CARAVAN_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return rt, fmt.Errorf("CARAVAN_SEED: %w", err)
		}
		rt.Seed = seed
	}
	return rt, nil
}

// Steward holds settings for the steward process.
type Steward struct {
	APIURL     string
	AdminKey   string
	Interval   time.Duration
	MemoryPath string
}

// StewardFromEnv reads steward settings. The admin key is required.
func StewardFromEnv() (Steward, error) {
	st := Steward{
		APIURL:     envOr("CARAVAN_API_URL", "http://localhost:8080"),
		AdminKey:   os.Getenv("CARAVAN_ADMIN_KEY"),
		Interval:   30 * time.Minute,
		MemoryPath: envOr("STEWARD_MEMORY", "data/steward_memory.json"),
	}
	if st.AdminKey == "" {
		return st, errors.New("CARAVAN_ADMIN_KEY is required")
	}
	if v := os.Getenv("STEWARD_INTERVAL"); v != "" {
		mins, err := strconv.Atoi(v)
		if err != nil || mins <= 0 {
			return st, fmt.Errorf("STEWARD_INTERVAL: want whole minutes, got %q", v)
		}
		st.Interval = time.Duration(mins) * time.Minute
	}
	return st, nil
}

// LoadTuning returns the tuning file at path, or defaults when path is empty.
func LoadTuning(path string) (Tuning, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
