package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/codeGROOVE-dev/worldclock/pkg/timeline"
	"github.com/codeGROOVE-dev/worldclock/pkg/worldclock"
)

func newMeetCmd(a *app) *cobra.Command {
	var (
		hour      int
		reference string
		date      string
		suggest   bool
	)
	cmd := &cobra.Command{
		Use:   "meet --hour H",
		Short: "Check a meeting hour against everyone's business hours",
		Long: `Meet places H:00 today in the reference zone and shows each tracked
location's local time, marking whether it falls inside business hours.
--date picks another day in the reference zone.
With --suggest it also lists every hour that works for all locations.`,
		Args: cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			ref, err := a.referenceZone(reference)
			if err != nil {
				return err
			}
			loc, err := a.engine.Resolver().Load(ref)
			if err != nil {
				return err
			}
			day := worldclock.DateOf(a.now().In(loc))
			if date != "" {
				if day, err = parseDate(date); err != nil {
					return err
				}
			}
			targets := a.set.Tracked()

			result, err := a.engine.FindOverlapOn(day, worldclock.MeetingQuery{
				ReferenceZone: ref,
				BaseHour:      hour,
				Targets:       targets,
			})
			if err != nil {
				return err
			}
			if !result.Applicable {
				fmt.Fprintf(a.out, "⚠️  %v (tracking %d).\n", result.Reason, len(targets))
				return nil
			}
			a.renderMeeting(ref, hour, result)

			if !suggest {
				return nil
			}
			hours, err := a.engine.GoodHoursOn(day, ref, targets)
			if err != nil {
				return err
			}
			if len(hours) == 0 {
				fmt.Fprintf(a.out, "No hour in %s keeps everyone inside business hours (%s).\n",
					ref, a.engine.BusinessHours())
				return nil
			}
			labels := make([]string, len(hours))
			for i, h := range hours {
				labels[i] = fmt.Sprintf("%02d:00", h)
			}
			fmt.Fprintf(a.out, "💡 Hours in %s that work for everyone: %s\n", ref, strings.Join(labels, ", "))
			return nil
		},
	}
	cmd.Flags().IntVarP(&hour, "hour", "H", 0, "meeting hour (0-23) in the reference zone")
	cmd.Flags().StringVarP(&reference, "reference", "r", "", "reference place (default the configured reference_zone)")
	cmd.Flags().StringVarP(&date, "date", "d", "", "day in the reference zone, YYYY-MM-DD (default today there)")
	cmd.Flags().BoolVar(&suggest, "suggest", false, "list every hour that works for all locations")
	cobra.CheckErr(cmd.MarkFlagRequired("hour"))
	return cmd
}

func (a *app) renderMeeting(ref string, hour int, result *worldclock.MeetingResult) {
	t := table.NewWriter()
	t.SetOutputMirror(a.out)
	t.SetStyle(table.StyleRounded)
	t.SetTitle("📅 %02d:00 in %s", hour, ref)
	t.AppendHeader(table.Row{"Location", "Local time", "Date", "Business hours"})

	bad := 0
	for _, slot := range result.Slots {
		status := color.GreenString("✓ yes")
		if !slot.IsGoodTime {
			status = color.RedString("✗ no")
			bad++
		}
		t.AppendRow(table.Row{slot.Location.Name, slot.LocalTime.String(), slot.Date.Label(), status})
	}
	t.Render()

	if result.AllGood {
		fmt.Fprintln(a.out, color.GreenString("🎉 Perfect match! %02d:00 works for everyone.", hour))
		return
	}
	fmt.Fprintf(a.out, "%d of %d locations are outside business hours (%s).\n",
		bad, len(result.Slots), a.engine.BusinessHours())
}

func newTimelineCmd(a *app) *cobra.Command {
	var (
		reference string
		date      string
		hour      int
	)
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Show 24-hour strips of every tracked location against the reference day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ref, err := a.referenceZone(reference)
			if err != nil {
				return err
			}
			loc, err := a.engine.Resolver().Load(ref)
			if err != nil {
				return err
			}
			now := a.now().In(loc)

			day := worldclock.DateOf(now)
			selected := timeline.NoSelection
			if date != "" {
				if day, err = parseDate(date); err != nil {
					return err
				}
			} else {
				selected = now.Hour()
			}
			if cmd.Flags().Changed("hour") {
				if hour < 0 || hour > 23 {
					return fmt.Errorf("%w: hour %d", worldclock.ErrInvalidWallTime, hour)
				}
				selected = hour
			}

			strips, err := timeline.Build(a.engine, ref, day, a.set.Tracked())
			if err != nil {
				return err
			}
			fmt.Fprint(a.out, timeline.Render(ref, day, strips, selected))
			return nil
		},
	}
	cmd.Flags().StringVarP(&reference, "reference", "r", "", "reference place (default the configured reference_zone)")
	cmd.Flags().StringVarP(&date, "date", "d", "", "reference day, YYYY-MM-DD (default today)")
	cmd.Flags().IntVarP(&hour, "hour", "H", timeline.NoSelection, "reference hour to highlight")
	return cmd
}
