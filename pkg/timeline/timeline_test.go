package timeline

import (
	"reflect"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/fatih/color"

	"github.com/codeGROOVE-dev/worldclock/pkg/worldclock"
)

var (
	day     = worldclock.Date{Year: 2025, Month: time.January, Day: 15}
	targets = []worldclock.TrackedLocation{
		{Name: "London", Zone: "Europe/London"},
		{Name: "Tokyo", Zone: "Asia/Tokyo"},
		{Name: "Mumbai", Zone: "Asia/Kolkata"},
	}
)

func buildStrips(t *testing.T) []Strip {
	t.Helper()
	e, err := worldclock.New()
	if err != nil {
		t.Fatal(err)
	}
	strips, err := Build(e, "Europe/London", day, targets)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return strips
}

func TestBuild(t *testing.T) {
	strips := buildStrips(t)
	if len(strips) != 3 {
		t.Fatalf("len(strips) = %d, want 3", len(strips))
	}

	tests := []struct {
		strip int
		hour  int
		want  Cell
	}{
		{0, 9, Cell{Local: worldclock.WallTime{Hour: 9}, Business: true, Daytime: true}},
		{0, 3, Cell{Local: worldclock.WallTime{Hour: 3}}},
		{1, 0, Cell{Local: worldclock.WallTime{Hour: 9}, Business: true, Daytime: true}},
		{1, 15, Cell{Local: worldclock.WallTime{Hour: 0}, DayDelta: 1}},
		{2, 0, Cell{Local: worldclock.WallTime{Hour: 5, Minute: 30}}},
		{2, 12, Cell{Local: worldclock.WallTime{Hour: 17, Minute: 30}, Business: true, Daytime: true}},
	}
	for _, tt := range tests {
		got := strips[tt.strip].Cells[tt.hour]
		if got != tt.want {
			t.Errorf("%s at %02d:00 = %+v, want %+v", strips[tt.strip].Location.Name, tt.hour, got, tt.want)
		}
	}

	if got := strips[1].Offset.String(); got != "UTC+9" {
		t.Errorf("Tokyo offset = %s, want UTC+9", got)
	}
}

func TestStripGoodHours(t *testing.T) {
	strips := buildStrips(t)

	if got, want := strips[0].GoodHours(), []int{9, 10, 11, 12, 13, 14, 15, 16, 17}; !reflect.DeepEqual(got, want) {
		t.Errorf("London GoodHours() = %v, want %v", got, want)
	}
	if got, want := strips[1].GoodHours(), []int{0, 1, 2, 3, 4, 5, 6, 7, 8}; !reflect.DeepEqual(got, want) {
		t.Errorf("Tokyo GoodHours() = %v, want %v", got, want)
	}
}

func TestBuildInvalidZone(t *testing.T) {
	e, err := worldclock.New()
	if err != nil {
		t.Fatal(err)
	}
	_, err = Build(e, "Europe/London", day, []worldclock.TrackedLocation{{Name: "X", Zone: "Nope/Nope"}})
	if err == nil || !strings.Contains(err.Error(), `timeline for "X"`) {
		t.Errorf("Build with bad zone error = %v", err)
	}
}

func TestRender(t *testing.T) {
	saved := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = saved })

	out := Render("Europe/London", day, buildStrips(t), 9)

	for _, want := range []string{
		"24-hour timeline for Jan 15 in Europe/London",
		"London",
		"UTC+9",
		"UTC+5:30",
		"05'3",
		"00+",
		"business",
		"Business hours in Europe/London time:",
		"09:00-18:00",
		"00:00-09:00",
		"04:00-13:00",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Render output missing %q:\n%s", want, out)
		}
	}

	lines := strings.Split(out, "\n")
	// Header, rule, hour row, three strips, rule, legend.
	if len(lines) < 8 {
		t.Fatalf("Render produced %d lines:\n%s", len(lines), out)
	}
	hourRow, london := lines[2], lines[3]
	if len(hourRow) != len(strings.TrimSuffix(london, "UTC+0")) {
		t.Errorf("hour row and strip are misaligned:\n%q\n%q", hourRow, london)
	}
}

func TestHourRanges(t *testing.T) {
	tests := []struct {
		hours []int
		want  string
	}{
		{nil, "none"},
		{[]int{9}, "09:00-10:00"},
		{[]int{9, 10, 11, 12, 13, 14, 15, 16, 17}, "09:00-18:00"},
		{[]int{0, 1, 2, 9}, "00:00-03:00, 09:00-10:00"},
		{[]int{0, 1, 22, 23}, "00:00-02:00, 22:00-24:00"},
	}
	for _, tt := range tests {
		if got := hourRanges(tt.hours); got != tt.want {
			t.Errorf("hourRanges(%v) = %q, want %q", tt.hours, got, tt.want)
		}
	}
}
