// Package steward keeps caravans from running dry. Each cycle it reads the public API,
// ranks caravans by days of water left, and sends at most one resupply through the
// admin intervention endpoint.
package steward

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Snapshot holds all data collected during an observation cycle.
type Snapshot struct {
	Status   Status        `json:"status"`
	Caravans []CaravanInfo `json:"caravans"`
}

// Status mirrors GET /api/v1/status.
type Status struct {
	Tick    uint64  `json:"tick"`
	SimTime string  `json:"sim_time"`
	Season  string  `json:"season"`
	Speed   float64 `json:"speed"`
	Running bool    `json:"running"`
	Stats   struct {
		Caravans    int     `json:"caravans"`
		Alive       int     `json:"alive"`
		Deaths      int     `json:"deaths"`
		Thirsty     int     `json:"thirsty"`
		AvgThirst   float64 `json:"avg_thirst"`
		Immobilized int     `json:"immobilized"`
	} `json:"stats"`
	Exposures map[string]int `json:"exposures"`
}

// CaravanInfo mirrors items from GET /api/v1/caravans.
type CaravanInfo struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	InFlight  bool   `json:"in_flight"`
	Airship   bool   `json:"airship"`
	Alive     int    `json:"alive"`
	Logistics struct {
		WaterUnits  float64 `json:"water_units"`
		Containers  int     `json:"containers"`
		Portables   int     `json:"portables"`
		Drinkers    int     `json:"drinkers"`
		DaysOfWater float64 `json:"days_of_water"`
		Immobilized bool    `json:"immobilized"`
	} `json:"logistics"`
}

// Observer reads caravan state from the public API.
type Observer struct {
	api client
}

// NewObserver returns an Observer for the API at baseURL.
func NewObserver(baseURL string) *Observer {
	return &Observer{api: newClient(baseURL, "")}
}

// Observe fetches the status and caravan list.
func (o *Observer) Observe(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot
	if err := o.api.get(ctx, "/api/v1/status", &snap.Status); err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	if err := o.api.get(ctx, "/api/v1/caravans", &snap.Caravans); err != nil {
		return nil, fmt.Errorf("caravans: %w", err)
	}
	return &snap, nil
}

// WaitReady polls the status endpoint, doubling the pause between attempts up to
// maxPause, until the API answers or ctx ends.
func (o *Observer) WaitReady(ctx context.Context, maxPause time.Duration) error {
	pause := 2 * time.Second
	for {
		err := o.api.get(ctx, "/api/v1/status", nil)
		if err == nil {
			return nil
		}
		slog.Info("caravansim not ready", "error", err, "retry_in", pause)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pause):
		}
		pause = min(2*pause, maxPause)
	}
}
