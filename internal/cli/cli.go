package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/vk/roundabout/internal/app"
)

// EnvPrefix prefixes the environment variables that provide flag defaults,
// for example ROUNDABOUT_LOG_LEVEL for -log-level.
const EnvPrefix = "ROUNDABOUT_"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// targetList collects targets from repeated or comma separated flags.
type targetList []string

func (t *targetList) String() string { return strings.Join(*t, ",") }

func (t *targetList) Set(v string) error {
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			*t = append(*t, s)
		}
	}
	return nil
}

// Parse processes command-line arguments with defaults taken from the
// process environment. It returns a populated Config, a boolean indicating
// if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	return ParseWithEnv(args, output, os.LookupEnv)
}

// ParseWithEnv is Parse with an explicit environment lookup.
func ParseWithEnv(args []string, output io.Writer, lookupEnv func(string) (string, bool)) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("roundabout", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
Roundabout - a headless drive simulator for roundabout road networks.

Usage:
  roundabout [options] [TARGET...]

Arguments:
  TARGET
    Roundabout to drive to. Several targets are driven one after another.

Every option can also be set through the environment, e.g. ROUNDABOUT_MODE
for -mode. A .env file in the working directory is loaded first.

Options:
`)
		flagSet.PrintDefaults()
	}

	var targets targetList
	networkFlag := flagSet.String("network", "", "Path to the network .hcl file or directory. Empty uses the built-in network.")
	nFlag := flagSet.String("n", "", "Path to the network file or directory (shorthand).")
	flagSet.Var(&targets, "target", "Target roundabout; repeatable or comma separated.")
	flagSet.Var(&targets, "t", "Target roundabout (shorthand).")
	modeFlag := flagSet.String("mode", "", "Drive mode: 'oversight' or 'roadsense'. Empty uses the network's drive block.")
	settleFlag := flagSet.Duration("settle-delay", 0, "Pause after scanning the graph. 0 uses the network's drive block.")
	scorerFlag := flagSet.String("scorer", "penalized", "Route scorer: 'penalized' or 'plain'.")
	timeScaleFlag := flagSet.Float64("time-scale", 0, "Multiplier for simulated travel, turn and obstacle times. 0 is instant.")
	watchdogFlag := flagSet.Duration("watchdog", 0, "Abort a drive whose sensors stay silent this long. 0 is disabled.")
	randomizeFlag := flagSet.Bool("randomize", false, "Randomize weights, obstacles and closures before driving.")
	seedFlag := flagSet.Uint64("seed", 0, "Randomizer seed. 0 picks one from the clock.")
	sequenceFlag := flagSet.String("sequence-out", "", "Write a Mermaid sequence diagram of the last drive to this file.")
	exportFlag := flagSet.String("export", "", "Export the network, including randomized state, to this .hcl file.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := applyEnv(flagSet, lookupEnv); err != nil {
		return nil, false, err
	}

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	for _, arg := range flagSet.Args() {
		_ = targets.Set(arg)
	}
	if len(targets) == 0 {
		slog.Debug("No target provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	network := *networkFlag
	if network == "" {
		network = *nFlag
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		NetworkPath:     network,
		Targets:         targets,
		Mode:            strings.ToLower(*modeFlag),
		SettleDelay:     *settleFlag,
		Scorer:          strings.ToLower(*scorerFlag),
		TimeScale:       *timeScaleFlag,
		Watchdog:        *watchdogFlag,
		Randomize:       *randomizeFlag,
		Seed:            *seedFlag,
		SequenceOut:     *sequenceFlag,
		ExportPath:      *exportFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		HealthcheckPort: *healthPortFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

// applyEnv sets flag defaults from ROUNDABOUT_* variables. Shorthand flags
// have no variable of their own.
func applyEnv(fs *flag.FlagSet, lookupEnv func(string) (string, bool)) error {
	var err error
	fs.VisitAll(func(f *flag.Flag) {
		if err != nil || len(f.Name) == 1 {
			return
		}
		key := EnvPrefix + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		v, ok := lookupEnv(key)
		if !ok {
			return
		}
		if setErr := f.Value.Set(v); setErr != nil {
			err = &ExitError{Code: 2, Message: fmt.Sprintf("invalid value %q for %s: %v", v, key, setErr)}
		}
	})
	return err
}
