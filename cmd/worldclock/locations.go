package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/codeGROOVE-dev/worldclock/pkg/gemini"
	"github.com/codeGROOVE-dev/worldclock/pkg/geocode"
	"github.com/codeGROOVE-dev/worldclock/pkg/httpcache"
	"github.com/codeGROOVE-dev/worldclock/pkg/locations"
)

const lookupCacheTTL = 30 * 24 * time.Hour

// lookupFlags are the credentials used to find the zone of a place outside the catalog.
type lookupFlags struct {
	mapsAPIKey   string
	geminiAPIKey string
	geminiModel  string
	gcpProject   string
	cacheDir     string
	noCache      bool
}

// fromEnv fills unset flags from the environment.
func (f *lookupFlags) fromEnv() {
	if f.mapsAPIKey == "" {
		f.mapsAPIKey = os.Getenv("GOOGLE_MAPS_API_KEY")
	}
	if f.geminiAPIKey == "" {
		f.geminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if f.geminiModel == "" {
		f.geminiModel = os.Getenv("GEMINI_MODEL")
	}
	if f.gcpProject == "" {
		f.gcpProject = os.Getenv("GCP_PROJECT")
	}
	if f.cacheDir == "" {
		f.cacheDir = os.Getenv("CACHE_DIR")
	}
}

// placeFinder resolves a free-form place name to an IANA zone: the city catalog
// first, then Google Maps geocoding, then a Gemini suggestion.
type placeFinder struct {
	maps   *geocode.Client
	ai     *gemini.Client
	cache  *httpcache.Cache
	logger *slog.Logger
}

func (a *app) newPlaceFinder(ctx context.Context, f lookupFlags) (*placeFinder, error) {
	dir := ""
	if !f.noCache {
		dir = f.cacheDir
		if dir == "" {
			dir = a.cfg.CacheDir
		}
		if dir == "" {
			if base, err := os.UserCacheDir(); err == nil {
				dir = filepath.Join(base, "worldclock")
			}
		}
	}
	cache, err := httpcache.New(ctx, dir, lookupCacheTTL, a.logger)
	if err != nil {
		return nil, fmt.Errorf("open lookup cache: %w", err)
	}

	httpClient := httpcache.NewClient(cache, &http.Client{Timeout: 10 * time.Second}, a.logger)
	httpClient.Cacheable = geocode.Cacheable

	return &placeFinder{
		maps: geocode.NewClient(f.mapsAPIKey, httpClient, a.logger),
		ai: gemini.NewClient(f.geminiAPIKey, f.geminiModel, f.gcpProject, a.logger,
			gemini.WithCache(cache), gemini.WithValidator(a.engine.Resolver())),
		cache:  cache,
		logger: a.logger,
	}, nil
}

// find returns the display name, zone and a note on where the answer came from.
func (p *placeFinder) find(ctx context.Context, place string) (name, zoneID, source string, err error) {
	if c, ok := locations.Lookup(place); ok {
		return c.Name, c.Zone, "catalog", nil
	}

	found, mapsErr := p.maps.ZoneForPlace(ctx, place)
	if mapsErr == nil {
		return place, found.Zone, "Google Maps: " + found.Address, nil
	}
	if errors.Is(mapsErr, geocode.ErrNoAPIKey) {
		p.logger.Debug("Skipping geocoding", "reason", mapsErr)
	} else {
		p.logger.Warn("Geocoding failed", "place", place, "error", mapsErr)
	}

	suggestion, aiErr := p.ai.SuggestZone(ctx, place)
	if aiErr == nil {
		return place, suggestion.Zone, fmt.Sprintf("Gemini, %s confidence", suggestion.Confidence), nil
	}
	p.logger.Debug("Gemini lookup failed", "place", place, "error", aiErr)

	return "", "", "", fmt.Errorf("no time zone found for %q; pass one explicitly, e.g. worldclock add %q Europe/Lisbon: %w",
		place, place, errors.Join(mapsErr, aiErr))
}

func (p *placeFinder) close() {
	if err := p.cache.Close(); err != nil {
		p.logger.Error("Failed to close lookup cache", "error", err)
	}
}

func newAddCmd(a *app) *cobra.Command {
	var flags lookupFlags
	cmd := &cobra.Command{
		Use:   "add NAME [ZONE]",
		Short: "Track a new location",
		Long: `Add tracks NAME. Without ZONE the zone comes from the built-in city catalog,
then Google Maps geocoding (GOOGLE_MAPS_API_KEY), then Gemini (GEMINI_API_KEY or GCP_PROJECT).`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, zoneID, source := args[0], "", "explicit"
			if len(args) == 2 {
				zoneID = args[1]
			} else {
				flags.fromEnv()
				ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
				defer cancel()

				finder, err := a.newPlaceFinder(ctx, flags)
				if err != nil {
					return err
				}
				defer finder.close()

				name, zoneID, source, err = finder.find(ctx, name)
				if err != nil {
					return err
				}
			}

			added, err := a.set.Add(name, zoneID)
			if err != nil {
				return err
			}
			if err := a.persist(); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "➕ Added %s (%s) from %s\n", added.Name, added.Zone, source)
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.mapsAPIKey, "maps-key", "", "Google Maps API key (or set GOOGLE_MAPS_API_KEY)")
	cmd.Flags().StringVar(&flags.geminiAPIKey, "gemini-key", "", "Gemini API key (or set GEMINI_API_KEY)")
	cmd.Flags().StringVar(&flags.geminiModel, "gemini-model", "", "Gemini model to use (or set GEMINI_MODEL)")
	cmd.Flags().StringVar(&flags.gcpProject, "gcp-project", "", "GCP project ID for Vertex AI (or set GCP_PROJECT)")
	cmd.Flags().StringVar(&flags.cacheDir, "cache-dir", "", "lookup cache directory (or set CACHE_DIR)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "keep the lookup cache in memory only")
	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME",
		Short: "Stop tracking a location",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			l, ok := a.set.Find(args[0])
			if !ok {
				return fmt.Errorf("%w: %q", locations.ErrNotFound, args[0])
			}
			if err := a.set.Remove(l.ID); err != nil {
				return err
			}
			if err := a.persist(); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "➖ Removed %s (%s)\n", l.Name, l.Zone)
			return nil
		},
	}
}

func newPinCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pin NAME",
		Short: "Pin or unpin a location so it is listed first",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			l, ok := a.set.Find(args[0])
			if !ok {
				return fmt.Errorf("%w: %q", locations.ErrNotFound, args[0])
			}
			l, err := a.set.TogglePin(l.ID)
			if err != nil {
				return err
			}
			if err := a.persist(); err != nil {
				return err
			}
			if l.Pinned {
				fmt.Fprintf(a.out, "📌 Pinned %s\n", l.Name)
			} else {
				fmt.Fprintf(a.out, "Unpinned %s\n", l.Name)
			}
			return nil
		},
	}
}

func newCatalogCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the built-in cities that can be added by name",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			now := a.now()
			t := table.NewWriter()
			t.SetOutputMirror(a.out)
			t.SetStyle(table.StyleRounded)
			t.AppendHeader(table.Row{"City", "Zone", "Time", "Offset", "Coordinates", ""})
			for _, c := range locations.Catalog() {
				tracked := ""
				if _, ok := a.set.Find(c.Name); ok {
					tracked = "tracked"
				}
				view, err := a.engine.ViewAt(now, c.Zone)
				if err != nil {
					return err
				}
				t.AppendRow(table.Row{c.Name, c.Zone, view.Clock.String(), view.Offset.String(),
					fmt.Sprintf("%.4f, %.4f", c.Latitude, c.Longitude), tracked})
			}
			t.Render()
			return nil
		},
	}
}
