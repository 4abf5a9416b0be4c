package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/vk/roundabout/internal/ctxlog"
	"github.com/vk/roundabout/internal/netconfig"
)

// Run drives every configured target in turn. Each drive is bounded by the
// watchdog when one is configured. The sequence diagram and the network
// export are written even when a drive fails.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.ctx = ctx
	a.logger.Debug("App.Run method started.")

	a.healthCheckServer()
	defer a.closeHealthCheckServer()
	defer a.sensor.Stop()

	driveErr := a.driveAll(ctx)
	outErr := a.writeOutputs()

	a.logger.Debug("App.Run method finished.")
	return errors.Join(driveErr, outErr)
}

func (a *App) driveAll(ctx context.Context) error {
	for i, target := range a.config.Targets {
		a.logger.Info("🚀 Driving to target.", "target", target, "index", i+1, "of", len(a.config.Targets))

		dctx, cancel := ctx, context.CancelFunc(func() {})
		if a.config.Watchdog > 0 {
			dctx, cancel = context.WithTimeout(ctx, a.config.Watchdog)
		}
		err := a.navigator.Drive(dctx, target)
		cancel()
		if err != nil {
			return fmt.Errorf("drive to %s failed: %w", target, err)
		}
	}
	return nil
}

func (a *App) writeOutputs() error {
	var errs []error
	if path := a.config.SequenceOut; path != "" {
		if err := writeFile(path, func(f *os.File) error {
			_, err := a.diagram.WriteTo(f)
			return err
		}); err != nil {
			errs = append(errs, fmt.Errorf("failed to write sequence diagram: %w", err))
		} else {
			a.logger.Info("Sequence diagram written.", "path", path)
		}
	}
	if path := a.config.ExportPath; path != "" {
		if err := writeFile(path, func(f *os.File) error {
			return netconfig.Write(f, a.network)
		}); err != nil {
			errs = append(errs, fmt.Errorf("failed to export network: %w", err))
		} else {
			a.logger.Info("Network exported.", "path", path)
		}
	}
	return errors.Join(errs...)
}

func writeFile(path string, fn func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
