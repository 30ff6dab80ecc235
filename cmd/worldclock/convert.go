package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/codeGROOVE-dev/worldclock/pkg/locations"
	"github.com/codeGROOVE-dev/worldclock/pkg/tzconvert"
	"github.com/codeGROOVE-dev/worldclock/pkg/worldclock"
)

func newConvertCmd(a *app) *cobra.Command {
	var from, to, date string
	cmd := &cobra.Command{
		Use:   "convert --from PLACE --to PLACE HH:MM",
		Short: "Convert a time of day from one place to another",
		Long: `Convert reads HH:MM (or HH:MM:SS) as a wall-clock time in the --from place on
today's date there, or on --date, and prints the same instant in the --to place.
Places are tracked location names, catalog cities or IANA zone identifiers.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			wall, err := worldclock.ParseWallTime(args[0])
			if err != nil {
				return err
			}
			fromName, fromZone, err := a.lookupZone(from)
			if err != nil {
				return err
			}
			toName, toZone, err := a.lookupZone(to)
			if err != nil {
				return err
			}

			var result *worldclock.ConversionResult
			if date != "" {
				day, err := parseDate(date)
				if err != nil {
					return err
				}
				result, err = a.engine.ConvertOn(day, fromZone, wall, toZone)
				if err != nil {
					return err
				}
			} else {
				result, err = a.engine.Convert(a.now(), fromZone, wall, toZone)
				if err != nil {
					return err
				}
			}

			fmt.Fprintf(a.out, "🕒 %s in %s (%s) → %s in %s (%s)%s\n",
				result.Source, fromName, result.SourceDate.Label(),
				result.Target, toName, result.TargetDate.Label(),
				result.DayLabel())
			return nil
		},
	}
	cmd.Flags().StringVarP(&from, "from", "f", "", "place the time is given in")
	cmd.Flags().StringVarP(&to, "to", "t", "", "place to convert the time to")
	cmd.Flags().StringVarP(&date, "date", "d", "", "date in the --from place, YYYY-MM-DD (default today there)")
	cobra.CheckErr(cmd.MarkFlagRequired("from"))
	cobra.CheckErr(cmd.MarkFlagRequired("to"))
	return cmd
}

func newOffsetCmd(a *app) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "offset PLACE|UTC±H[:MM]",
		Short: "Show the UTC offset of a place at an instant",
		Long: `Offset prints the UTC offset of PLACE at --at (default now).
Given an offset such as UTC+5:30 instead, it prints the wall time on that offset
and the tracked locations and known cities currently observing it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			instant := a.now()
			if at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at %q, expected RFC 3339: %w", at, err)
				}
				instant = t
			}

			if strings.HasPrefix(args[0], "UTC+") || strings.HasPrefix(args[0], "UTC-") {
				offset, err := tzconvert.ParseOffset(args[0])
				if err != nil {
					return err
				}
				return a.printOffsetPlaces(instant, offset)
			}

			name, zoneID, err := a.lookupZone(args[0])
			if err != nil {
				return err
			}
			view, err := a.engine.ViewAt(instant, zoneID)
			if err != nil {
				return err
			}

			label := zoneID
			if name != zoneID {
				label = fmt.Sprintf("%s (%s)", name, zoneID)
			}
			fmt.Fprintf(a.out, "%s: %s %s at %s\n", label, view.Offset, view.Abbreviation,
				instant.UTC().Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "instant to evaluate, RFC 3339 (default now)")
	return cmd
}

// printOffsetPlaces prints the wall time on offset at instant, followed by the
// tracked locations and then the catalog cities observing that offset.
func (a *app) printOffsetPlaces(instant time.Time, offset tzconvert.Offset) error {
	utc := instant.UTC()
	local := tzconvert.UTCToLocal(float64(utc.Hour())+float64(utc.Minute())/60, offset)
	minutes := int(math.Round(local*60)) % (24 * 60)
	fmt.Fprintf(a.out, "%s: %02d:%02d at %s\n", offset, minutes/60, minutes%60, utc.Format(time.RFC3339))

	var places []string
	seen := make(map[string]bool)
	observes := func(name, zoneID string) error {
		if seen[zoneID] {
			return nil
		}
		o, err := a.engine.OffsetAt(instant, zoneID)
		if err != nil {
			return err
		}
		if o.TotalMinutes() == offset.TotalMinutes() {
			seen[zoneID] = true
			places = append(places, fmt.Sprintf("%s (%s)", name, zoneID))
		}
		return nil
	}
	for _, l := range a.set.Sorted() {
		if err := observes(l.Name, l.Zone); err != nil {
			a.logger.Debug("Skipping location", "location", l.Name, "error", err)
		}
	}
	for _, c := range locations.Catalog() {
		if err := observes(c.Name, c.Zone); err != nil {
			return err
		}
	}

	if len(places) == 0 {
		fmt.Fprintf(a.out, "  No tracked location or known city is on %s.\n", offset)
		return nil
	}
	for _, p := range places {
		fmt.Fprintf(a.out, "  %s\n", p)
	}
	return nil
}
