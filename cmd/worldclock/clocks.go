package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/codeGROOVE-dev/worldclock/pkg/constants"
	"github.com/codeGROOVE-dev/worldclock/pkg/locations"
)

const clearScreen = "\033[H\033[2J"

func newClocksCmd(a *app) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "clocks",
		Short: "Show the current time in every tracked location",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			a.renderClocks(a.out, a.now(), search)
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "only show locations whose name contains this text")
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Redraw the clocks on the configured refresh schedule (Ctrl+C to exit)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.watch(ctx)
		},
	}
}

// watch redraws the clock table on every tick of the refresh schedule until ctx is done.
func (a *app) watch(ctx context.Context) error {
	redraw := func() {
		var buf bytes.Buffer
		buf.WriteString(clearScreen)
		a.renderClocks(&buf, a.now(), "")
		buf.WriteString("\nPress Ctrl+C to exit.\n")
		if _, err := a.out.Write(buf.Bytes()); err != nil {
			a.logger.Debug("Failed to redraw", "error", err)
		}
	}

	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := scheduler.AddFunc(a.cfg.RefreshCron, redraw); err != nil {
		return fmt.Errorf("refresh schedule %q: %w", a.cfg.RefreshCron, err)
	}

	redraw()
	scheduler.Start()
	a.logger.Debug("Watching clocks", "schedule", a.cfg.RefreshCron)

	<-ctx.Done()
	<-scheduler.Stop().Done()
	return nil
}

// renderClocks writes the clock table for instant. Locations whose zone cannot
// be evaluated show a placeholder instead of a time.
func (a *app) renderClocks(w io.Writer, instant time.Time, search string) {
	matches := a.set.Filter(search)
	if len(matches) == 0 {
		if search != "" {
			fmt.Fprintf(w, "No tracked location matches %q.\n", search)
		} else {
			fmt.Fprintln(w, "No locations tracked. Add one with: worldclock add NAME [ZONE]")
		}
		return
	}

	ref := a.cfg.ReferenceZone
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.Style().Title.Align = text.AlignCenter
	t.SetTitle("🌍 World clock (reference %s)", ref)
	t.AppendHeader(table.Row{"", "Location", "Time", "Date", "Offset", "", "vs " + ref})

	for _, l := range matches {
		t.AppendRow(a.clockRow(instant, l, ref))
	}

	st := a.set.Stats()
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d tracked", st.Total), fmt.Sprintf("%d pinned", st.Pinned),
		fmt.Sprintf("%d zones", st.Zones)})
	t.Render()
}

func (a *app) clockRow(instant time.Time, l locations.Location, ref string) table.Row {
	pin := ""
	if l.Pinned {
		pin = "📌"
	}

	view, err := a.engine.ViewAt(instant, l.Zone)
	if err != nil {
		a.logger.Debug("Failed to evaluate clock", "location", l.Name, "zone", l.Zone, "error", err)
		return table.Row{pin, l.Name, constants.Placeholder, "", "", "", ""}
	}

	period := color.HiBlackString("night")
	if view.IsDaytime {
		period = color.YellowString("day")
	}

	diff := constants.Placeholder
	if d, err := a.engine.HourDifference(instant, l.Zone, ref); err == nil {
		diff = d.String()
	}

	return table.Row{pin, l.Name, view.TimeString(), view.DateString(),
		fmt.Sprintf("%s %s", view.Offset, view.Abbreviation), period, diff}
}
