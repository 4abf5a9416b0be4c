package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/vk/roundabout/internal/engine"
	"github.com/vk/roundabout/internal/pathfind"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	NetworkPath string   // hcl file or directory; empty uses the built-in network
	Targets     []string // driven in order

	// Mode and SettleDelay override the network's drive block when set.
	Mode        string
	SettleDelay time.Duration
	Scorer      string

	TimeScale float64       // multiplies simulated durations; 0 confirms instantly
	Watchdog  time.Duration // per target; 0 disables it

	Randomize bool
	Seed      uint64 // 0 picks a seed from the clock

	SequenceOut string // Mermaid output file
	ExportPath  string // network export file

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.Targets) == 0 {
		return nil, errors.New("at least one target is required")
	}
	if cfg.Mode != "" {
		if _, err := engine.ParseMode(cfg.Mode); err != nil {
			return nil, err
		}
	}
	if _, err := pathfind.ParseScorer(cfg.Scorer); err != nil {
		return nil, err
	}
	if cfg.SettleDelay < 0 {
		return nil, fmt.Errorf("settle delay cannot be negative, got %s", cfg.SettleDelay)
	}
	if cfg.TimeScale < 0 {
		return nil, fmt.Errorf("time scale cannot be negative, got %g", cfg.TimeScale)
	}
	if cfg.Watchdog < 0 {
		return nil, fmt.Errorf("watchdog cannot be negative, got %s", cfg.Watchdog)
	}
	if cfg.HealthcheckPort < 0 {
		return nil, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort)
	}
	return &cfg, nil
}
