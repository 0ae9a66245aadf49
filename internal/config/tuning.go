// Package config loads simulation tuning from YAML and runtime settings from the environment.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning holds every adjustable simulation parameter.
type Tuning struct {
	Seed              int64  `yaml:"seed"`
	TickIntervalMs    int    `yaml:"tick_interval_ms"`
	ResolveEveryTicks int    `yaml:"resolve_every_ticks"`
	MoveEveryTicks    int    `yaml:"move_every_ticks"`
	CatalogPath       string `yaml:"catalog_path,omitempty"`

	Needs Needs    `yaml:"needs"`
	Decay Decay    `yaml:"decay"`
	World WorldGen `yaml:"world"`
	Fleet Fleet    `yaml:"fleet"`
}

// Needs are the thresholds and amounts used by the need resolver.
type Needs struct {
	StoredDrinkAmount    float64 `yaml:"stored_drink_amount"`    // volume drawn per drink
	WashAmount           float64 `yaml:"wash_amount"`            // volume drawn per wash
	HygieneTarget        float64 `yaml:"hygiene_target"`         // level hygiene is raised to
	BladderReliefBelow   float64 `yaml:"bladder_relief_below"`   // grounded relief threshold
	AirborneBladderBelow float64 `yaml:"airborne_bladder_below"` // in-flight relief threshold
	CriticalThirstBelow  float64 `yaml:"critical_thirst_below"`  // contaminated water allowed below this
	ThirstyBelow         float64 `yaml:"thirsty_below"`          // thirst category boundary
	MaxRainfall          float64 `yaml:"max_rainfall"`           // mm/year at which rain is certain
	AbsorbentKind        string  `yaml:"absorbent_kind"`
}

// Decay are per-tick need losses applied by the host simulation.
type Decay struct {
	Thirst            float64 `yaml:"thirst"`
	Bladder           float64 `yaml:"bladder"`
	Hygiene           float64 `yaml:"hygiene"`
	DehydrationTicks  int     `yaml:"dehydration_ticks"`
	DailyWaterPerHead float64 `yaml:"daily_water_per_head"`
}

// WorldGen mirrors world.GenConfig.
type WorldGen struct {
	Radius      int     `yaml:"radius"`
	SeaLevel    float64 `yaml:"sea_level"`
	MountainLvl float64 `yaml:"mountain_level"`
}

// Fleet controls the caravans created for a fresh world.
type Fleet struct {
	Caravans       int     `yaml:"caravans"`
	CrewPerCaravan int     `yaml:"crew_per_caravan"`
	FlyingShare    float64 `yaml:"flying_share"`
	FootShare      float64 `yaml:"foot_share"` // caravans whose members carry their own water
}

// Default returns tuning matching the reference behavior.
func Default() Tuning {
	return Tuning{
		Seed:              42,
		TickIntervalMs:    1000,
		ResolveEveryTicks: 60,
		MoveEveryTicks:    240,
		Needs: Needs{
			StoredDrinkAmount:    0.5,
			WashAmount:           1.0,
			HygieneTarget:        0.7,
			BladderReliefBelow:   0.5,
			AirborneBladderBelow: 0.2,
			CriticalThirstBelow:  0.1,
			ThirstyBelow:         0.3,
			MaxRainfall:          2000,
			AbsorbentKind:        "bedpan",
		},
		Decay: Decay{
			Thirst:            0.0008,
			Bladder:           0.0012,
			Hygiene:           0.0004,
			DehydrationTicks:  4320,
			DailyWaterPerHead: 1.0,
		},
		World: WorldGen{
			Radius:      22,
			SeaLevel:    0.25,
			MountainLvl: 0.72,
		},
		Fleet: Fleet{
			Caravans:       6,
			CrewPerCaravan: 4,
			FlyingShare:    0.2,
			FootShare:      0.2,
		},
	}
}

// Load reads a tuning file on top of the defaults. Fields absent from the file keep
// their default values.
func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("%s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Validate rejects values the resolver cannot work with.
func (t Tuning) Validate() error {
	n := t.Needs
	for name, v := range map[string]float64{
		"hygiene_target":         n.HygieneTarget,
		"bladder_relief_below":   n.BladderReliefBelow,
		"airborne_bladder_below": n.AirborneBladderBelow,
		"critical_thirst_below":  n.CriticalThirstBelow,
		"thirsty_below":          n.ThirstyBelow,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("needs.%s must be within [0,1], got %g", name, v)
		}
	}
	if n.StoredDrinkAmount <= 0 || n.WashAmount <= 0 {
		return fmt.Errorf("needs: drink and wash amounts must be positive")
	}
	if n.MaxRainfall <= 0 {
		return fmt.Errorf("needs.max_rainfall must be positive")
	}
	if n.AbsorbentKind == "" {
		return fmt.Errorf("needs.absorbent_kind is required")
	}
	if t.ResolveEveryTicks <= 0 || t.MoveEveryTicks <= 0 || t.TickIntervalMs <= 0 {
		return fmt.Errorf("tick intervals must be positive")
	}
	if t.Decay.Thirst < 0 || t.Decay.Bladder < 0 || t.Decay.Hygiene < 0 {
		return fmt.Errorf("decay rates must be non-negative")
	}
	if t.World.Radius <= 0 {
		return fmt.Errorf("world.radius must be positive")
	}
	if t.Fleet.FlyingShare < 0 || t.Fleet.FlyingShare > 1 {
		return fmt.Errorf("fleet.flying_share must be within [0,1]")
	}
	if t.Fleet.FootShare < 0 || t.Fleet.FlyingShare+t.Fleet.FootShare > 1 {
		return fmt.Errorf("fleet.foot_share must be non-negative and leave room for airships")
	}
	return nil
}
