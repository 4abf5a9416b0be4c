package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/vk/roundabout/internal/ctxlog"
	"github.com/vk/roundabout/internal/engine"
	"github.com/vk/roundabout/internal/netconfig"
	"github.com/vk/roundabout/internal/pathfind"
	"github.com/vk/roundabout/modules/mocksensor"
	"github.com/vk/roundabout/modules/sequence"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	ctx        context.Context
	logger     *slog.Logger
	config     *Config
	network    *netconfig.Network
	navigator  *engine.Navigator
	sensor     *mocksensor.Sensor
	diagram    *sequence.Diagram
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It loads the network,
// applies the randomizer when requested and registers the core modules
// followed by any extra modules.
func NewApp(outW io.Writer, cfg *Config, loader *netconfig.Loader, modules ...engine.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	var (
		network *netconfig.Network
		err     error
	)
	if cfg.NetworkPath != "" {
		network, err = loader.Load(ctx, cfg.NetworkPath)
	} else {
		logger.Debug("No network path given, using the built-in network.")
		network, err = netconfig.Default(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load network: %w", err)
	}
	logger.Debug("Network loaded.", "start", network.Start, "nodes", len(network.Graph.Nodes()))

	if cfg.Randomize {
		seed := cfg.Seed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		rng := rand.New(rand.NewPCG(seed, seed))
		if err := network.Graph.Randomize(network.Random, rng); err != nil {
			return nil, fmt.Errorf("failed to randomize network: %w", err)
		}
		logger.Info("Network randomized.", "seed", seed, "disabled_nodes", network.Graph.DisabledNodes())
	}

	mode := network.Drive.Mode
	if cfg.Mode != "" {
		mode = cfg.Mode
	}
	parsedMode, err := engine.ParseMode(mode)
	if err != nil {
		return nil, fmt.Errorf("invalid drive mode in network: %w", err)
	}
	settle := network.Drive.SettleDelay
	if cfg.SettleDelay > 0 {
		settle = cfg.SettleDelay
	}
	scorer, err := pathfind.ParseScorer(cfg.Scorer)
	if err != nil {
		return nil, err
	}

	nav, err := engine.New(network.Graph, engine.Config{
		Start:       network.Start,
		Mode:        parsedMode,
		SettleDelay: settle,
		Scorer:      scorer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create navigator: %w", err)
	}

	a := &App{
		outW:      outW,
		ctx:       ctx,
		logger:    logger,
		config:    cfg,
		network:   network,
		navigator: nav,
		sensor:    mocksensor.New(network.Graph, cfg.TimeScale),
		diagram:   sequence.New(network.Layout),
	}
	all := append(a.coreModules(), modules...)
	nav.Use(all...)
	logger.Debug("All modules registered.", "count", len(all), "mode", parsedMode, "scorer", scorer)
	return a, nil
}

// Navigator returns the application's navigator. This is primarily for testing.
func (a *App) Navigator() *engine.Navigator {
	return a.navigator
}

// Network returns the loaded network.
func (a *App) Network() *netconfig.Network {
	return a.network
}
