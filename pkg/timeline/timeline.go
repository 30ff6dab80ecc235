// Package timeline renders 24-hour strips that line up every tracked zone
// against the hours of a reference day.
package timeline

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/codeGROOVE-dev/worldclock/pkg/tzconvert"
	"github.com/codeGROOVE-dev/worldclock/pkg/worldclock"
)

// NoSelection disables the selected-hour marker.
const NoSelection = -1

const cellWidth = 5

// Cell is one zone's wall clock at one reference hour.
type Cell struct {
	Local    worldclock.WallTime
	DayDelta int
	Business bool
	Daytime  bool
}

// Strip is one tracked location across the 24 hours of the reference day.
// Cells[h] is the location's wall clock when the reference zone reads h:00.
type Strip struct {
	Location worldclock.TrackedLocation
	Offset   tzconvert.Offset
	Cells    [24]Cell
}

// GoodHours returns the reference hours at which this location is in business hours.
func (s Strip) GoodHours() []int {
	var hours []int
	for h, c := range s.Cells {
		if c.Business {
			hours = append(hours, h)
		}
	}
	return hours
}

// Build computes a strip per target for the reference day.
func Build(e *worldclock.Engine, referenceZone string, day worldclock.Date, targets []worldclock.TrackedLocation) ([]Strip, error) {
	business := e.BusinessHours()
	daytime := e.Daytime()

	strips := make([]Strip, 0, len(targets))
	for _, target := range targets {
		strip := Strip{Location: target}
		for h := range 24 {
			conv, err := e.ConvertOn(day, referenceZone, worldclock.WallTime{Hour: h}, target.Zone)
			if err != nil {
				return nil, fmt.Errorf("timeline for %q: %w", target.Name, err)
			}
			strip.Cells[h] = Cell{
				Local:    conv.Target,
				DayDelta: conv.DayDelta,
				Business: business.Contains(conv.Target.Hour),
				Daytime:  daytime.Contains(conv.Target.Hour),
			}
			if h == 12 {
				offset, err := e.OffsetAt(conv.Instant, target.Zone)
				if err != nil {
					return nil, fmt.Errorf("timeline for %q: %w", target.Name, err)
				}
				strip.Offset = offset
			}
		}
		strips = append(strips, strip)
	}
	return strips, nil
}

// Render draws the strips as colored text. Business hours are green, the rest
// of the daytime is yellow, night is dimmed, and the selected reference hour is
// shown reversed. Cells on a different calendar day than the reference carry a
// trailing "+" or "-".
func Render(referenceZone string, day worldclock.Date, strips []Strip, selected int) string {
	var out strings.Builder

	nameWidth := len(referenceZone)
	for _, s := range strips {
		nameWidth = max(nameWidth, len([]rune(s.Location.Name)))
	}

	out.WriteString(fmt.Sprintf("🕒 24-hour timeline for %s in %s\n", day.Label(), referenceZone))
	out.WriteString(strings.Repeat("─", nameWidth+2+24*cellWidth) + "\n")

	out.WriteString(pad(referenceZone, nameWidth) + "  ")
	for h := range 24 {
		cell := fmt.Sprintf("%02d", h)
		if h == selected {
			cell = color.New(color.ReverseVideo).Sprint(cell)
		}
		out.WriteString(cell + "   ")
	}
	out.WriteString("\n")

	for _, s := range strips {
		out.WriteString(pad(s.Location.Name, nameWidth) + "  ")
		for h, c := range s.Cells {
			out.WriteString(renderCell(c, h == selected))
		}
		out.WriteString(s.Offset.String() + "\n")
	}

	out.WriteString(strings.Repeat("─", nameWidth+2+24*cellWidth) + "\n")
	out.WriteString(color.New(color.FgGreen).Sprint("██") + " business  " +
		color.New(color.FgYellow).Sprint("██") + " daytime  " +
		color.New(color.FgHiBlack).Sprint("██") + " night\n")

	out.WriteString(fmt.Sprintf("Business hours in %s time:\n", referenceZone))
	for _, s := range strips {
		out.WriteString("  " + pad(s.Location.Name, nameWidth) + "  " + hourRanges(s.GoodHours()) + "\n")
	}

	return out.String()
}

// hourRanges collapses ascending hours into runs, e.g. [0 1 2 9] is
// "00:00-03:00, 09:00-10:00".
func hourRanges(hours []int) string {
	if len(hours) == 0 {
		return "none"
	}
	var runs []string
	start := hours[0]
	for i := 1; i <= len(hours); i++ {
		if i < len(hours) && hours[i] == hours[i-1]+1 {
			continue
		}
		runs = append(runs, fmt.Sprintf("%02d:00-%02d:00", start, hours[i-1]+1))
		if i < len(hours) {
			start = hours[i]
		}
	}
	return strings.Join(runs, ", ")
}

func renderCell(c Cell, selected bool) string {
	text := fmt.Sprintf("%02d", c.Local.Hour)
	if c.Local.Minute != 0 {
		// Half- and quarter-hour zones show the minutes' first digit, e.g. "05'3".
		text = fmt.Sprintf("%02d'%d", c.Local.Hour, c.Local.Minute/10)
	}

	marker := " "
	switch {
	case c.DayDelta > 0:
		marker = "+"
	case c.DayDelta < 0:
		marker = "-"
	}

	var col *color.Color
	switch {
	case c.Business:
		col = color.New(color.FgGreen)
	case c.Daytime:
		col = color.New(color.FgYellow)
	default:
		col = color.New(color.FgHiBlack)
	}
	if selected {
		col.Add(color.ReverseVideo)
	}

	return col.Sprint(text) + marker + strings.Repeat(" ", cellWidth-len(text)-1)
}

func pad(s string, width int) string {
	if n := len([]rune(s)); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
