// Package main implements the worldclock CLI: live clocks for tracked
// locations, time-of-day conversion and meeting planning across time zones.
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/codeGROOVE-dev/worldclock/pkg/config"
	"github.com/codeGROOVE-dev/worldclock/pkg/locations"
	"github.com/codeGROOVE-dev/worldclock/pkg/worldclock"
	"github.com/codeGROOVE-dev/worldclock/pkg/zone"
)

const version = "v1.0.0"

// app carries what every command needs once the config is loaded.
type app struct {
	out     io.Writer
	now     func() time.Time
	logger  *slog.Logger
	cfg     *config.Config
	engine  *worldclock.Engine
	set     *locations.Set
	cfgPath string
	verbose bool
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
	}

	a := &app{out: os.Stdout, now: time.Now}
	if err := newRootCmd(a).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:     "worldclock",
		Version: version,
		Short:   "Clocks, conversions and meeting hours across time zones",
		Long: `worldclock shows the current time in the places you track, converts a
time of day from one place to another, and checks whether a meeting hour falls
inside everyone's business hours.

Tracked locations and the reference zone live in a YAML config file:
  --config, else $WORLDCLOCK_CONFIG, else <user config dir>/worldclock/config.yaml

Examples:

  # Show every tracked clock
  $ worldclock

  # What time is 09:00 in Tokyo for someone in Los Angeles?
  $ worldclock convert --from Tokyo --to "Los Angeles" 09:00

  # Does 9am New York work for everyone?
  $ worldclock meet --hour 9 --reference America/New_York --suggest`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup()
		},
		RunE: func(*cobra.Command, []string) error {
			a.renderClocks(a.out, a.now(), "")
			return nil
		},
	}
	root.SetVersionTemplate(`{{printf "worldclock %s\n" .Version}}`)
	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "config file (or set "+config.EnvPath+")")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		newClocksCmd(a),
		newWatchCmd(a),
		newConvertCmd(a),
		newOffsetCmd(a),
		newMeetCmd(a),
		newTimelineCmd(a),
		newAddCmd(a),
		newRemoveCmd(a),
		newPinCmd(a),
		newCatalogCmd(a),
	)
	return root
}

// setup configures logging, loads the config and builds the engine and working set.
func (a *app) setup() error {
	level := slog.LevelError
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	path, err := config.Path(a.cfgPath)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	a.cfgPath = path
	a.cfg = cfg
	a.logger.Debug("Loaded config", "path", path, "locations", len(cfg.Locations), "reference_zone", cfg.ReferenceZone)

	resolver := zone.NewResolver(a.logger)
	opts := append(cfg.EngineOptions(), worldclock.WithResolver(resolver), worldclock.WithLogger(a.logger))
	engine, err := worldclock.New(opts...)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	a.engine = engine

	set, err := locations.NewSet(resolver, cfg.Locations)
	if err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	a.set = set
	return nil
}

// persist writes the working set back to the config file.
func (a *app) persist() error {
	a.cfg.Locations = a.set.All()
	if err := a.cfg.Save(a.cfgPath); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// lookupZone resolves a tracked location name, a catalog city or an IANA zone
// identifier, in that order, to a display name and zone.
func (a *app) lookupZone(arg string) (name, zoneID string, err error) {
	if l, ok := a.set.Find(arg); ok {
		return l.Name, l.Zone, nil
	}
	if c, ok := locations.Lookup(arg); ok {
		return c.Name, c.Zone, nil
	}
	if err := a.engine.Resolver().Validate(arg); err != nil {
		return "", "", fmt.Errorf("%q is not a tracked location, known city or time zone: %w", arg, err)
	}
	return arg, arg, nil
}

// referenceZone returns the zone named by override, or the configured reference zone.
func (a *app) referenceZone(override string) (string, error) {
	if override == "" {
		return a.cfg.ReferenceZone, nil
	}
	_, zoneID, err := a.lookupZone(override)
	return zoneID, err
}

// parseDate parses a YYYY-MM-DD calendar date.
func parseDate(s string) (worldclock.Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return worldclock.Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return worldclock.DateOf(t), nil
}
