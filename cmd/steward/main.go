// Command steward watches caravans through the caravansim API and resupplies the ones
// about to run dry, one intervention per cycle.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/talgya/caravan-needs/internal/config"
	"github.com/talgya/caravan-needs/internal/steward"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	if err := config.LoadEnv(); err != nil {
		fatal("load env", err)
	}
	cfg, err := config.StewardFromEnv()
	if err != nil {
		fatal("steward settings", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st := steward.New(cfg.APIURL, cfg.AdminKey, steward.LoadMemory(cfg.MemoryPath))
	slog.Info("caravan steward starting", "api_url", cfg.APIURL, "interval", cfg.Interval)

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	err = st.Observer.WaitReady(waitCtx, 30*time.Second)
	cancel()
	if err != nil {
		fatal("caravansim API never became ready", err)
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()
	for {
		if d, err := st.RunCycle(ctx); err != nil {
			slog.Error("steward cycle failed", "action", d.Action, "error", err)
		}
		select {
		case <-ctx.Done():
			slog.Info("steward stopped")
			return
		case <-ticker.C:
		}
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
