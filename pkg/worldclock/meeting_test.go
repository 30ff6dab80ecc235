package worldclock

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"
)

var (
	newYork = TrackedLocation{Name: "New York", Zone: "America/New_York"}
	tokyo   = TrackedLocation{Name: "Tokyo", Zone: "Asia/Tokyo"}
	london  = TrackedLocation{Name: "London", Zone: "Europe/London"}
	paris   = TrackedLocation{Name: "Paris", Zone: "Europe/Paris"}
)

func TestFindOverlapNewYorkTokyo(t *testing.T) {
	e := newTestEngine(t)

	got, err := e.FindOverlap(MeetingQuery{
		ReferenceZone: "America/New_York",
		BaseHour:      9,
		Targets:       []TrackedLocation{newYork, tokyo},
	}, winterNoon)
	if err != nil {
		t.Fatalf("FindOverlap: %v", err)
	}

	if !got.Applicable {
		t.Fatalf("Applicable = false, want true")
	}
	if got.AllGood {
		t.Errorf("AllGood = true, want false")
	}
	if want := time.Date(2025, 1, 15, 14, 0, 0, 0, time.UTC); !got.Instant.Equal(want) {
		t.Errorf("Instant = %v, want %v", got.Instant, want)
	}
	if len(got.Slots) != 2 {
		t.Fatalf("len(Slots) = %d, want 2", len(got.Slots))
	}

	wantSlots := []struct {
		name string
		hour int
		good bool
	}{
		{"New York", 9, true},
		{"Tokyo", 23, false},
	}
	for i, want := range wantSlots {
		slot := got.Slots[i]
		if slot.Location.Name != want.name || slot.LocalHour != want.hour || slot.IsGoodTime != want.good {
			t.Errorf("Slots[%d] = %s %d good=%v, want %s %d good=%v",
				i, slot.Location.Name, slot.LocalHour, slot.IsGoodTime, want.name, want.hour, want.good)
		}
	}
}

func TestFindOverlapClassification(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name      string
		reference string
		hour      int
		targets   []TrackedLocation
		wantHours []int
		wantGood  bool
	}{
		{"London and Paris at ten", "Europe/London", 10, []TrackedLocation{london, paris}, []int{10, 11}, true},
		{"Paris closes at six", "Europe/London", 17, []TrackedLocation{london, paris}, []int{17, 18}, false},
		{"reference outside targets", "UTC", 14, []TrackedLocation{newYork, london}, []int{9, 14}, true},
		{"New York before nine", "UTC", 13, []TrackedLocation{newYork, london}, []int{8, 13}, false},
		{
			"quarter-hour reference before nine UTC", "Asia/Kathmandu", 14,
			[]TrackedLocation{{Name: "UTC", Zone: "UTC"}, {Name: "Kathmandu", Zone: "Asia/Kathmandu"}},
			[]int{8, 14}, false,
		},
		{
			"quarter-hour reference after nine UTC", "Asia/Kathmandu", 15,
			[]TrackedLocation{{Name: "UTC", Zone: "UTC"}, {Name: "Kathmandu", Zone: "Asia/Kathmandu"}},
			[]int{9, 15}, true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.FindOverlap(MeetingQuery{ReferenceZone: tt.reference, BaseHour: tt.hour, Targets: tt.targets}, winterNoon)
			if err != nil {
				t.Fatalf("FindOverlap: %v", err)
			}
			var hours []int
			for _, slot := range got.Slots {
				hours = append(hours, slot.LocalHour)
			}
			if !reflect.DeepEqual(hours, tt.wantHours) {
				t.Errorf("local hours = %v, want %v", hours, tt.wantHours)
			}
			if got.AllGood != tt.wantGood {
				t.Errorf("AllGood = %v, want %v", got.AllGood, tt.wantGood)
			}
		})
	}
}

func TestFindOverlapBusinessBoundary(t *testing.T) {
	e := newTestEngine(t)
	utc := []TrackedLocation{{Name: "A", Zone: "UTC"}, {Name: "B", Zone: "Etc/UTC"}}

	for hour := range 24 {
		got, err := e.FindOverlap(MeetingQuery{ReferenceZone: "UTC", BaseHour: hour, Targets: utc}, winterNoon)
		if err != nil {
			t.Fatalf("FindOverlap(%d): %v", hour, err)
		}
		want := hour >= 9 && hour < 18
		if got.AllGood != want {
			t.Errorf("FindOverlap(hour %d).AllGood = %v, want %v", hour, got.AllGood, want)
		}
	}
}

func TestFindOverlapNotApplicable(t *testing.T) {
	e := newTestEngine(t)

	for _, targets := range [][]TrackedLocation{nil, {newYork}} {
		got, err := e.FindOverlap(MeetingQuery{ReferenceZone: "UTC", BaseHour: 9, Targets: targets}, winterNoon)
		if err != nil {
			t.Fatalf("FindOverlap with %d targets: %v", len(targets), err)
		}
		if got.Applicable {
			t.Errorf("FindOverlap with %d targets: Applicable = true", len(targets))
		}
		if !errors.Is(got.Reason, ErrInsufficientZones) {
			t.Errorf("FindOverlap with %d targets: Reason = %v, want ErrInsufficientZones", len(targets), got.Reason)
		}
		if len(got.Slots) != 0 || got.AllGood {
			t.Errorf("FindOverlap with %d targets = %+v, want no slots", len(targets), got)
		}
	}
}

func TestFindOverlapErrors(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name  string
		query MeetingQuery
		want  error
	}{
		{"hour 24", MeetingQuery{ReferenceZone: "UTC", BaseHour: 24, Targets: []TrackedLocation{newYork, tokyo}}, ErrInvalidWallTime},
		{"negative hour", MeetingQuery{ReferenceZone: "UTC", BaseHour: -1, Targets: []TrackedLocation{newYork, tokyo}}, ErrInvalidWallTime},
		{"bad reference", MeetingQuery{ReferenceZone: "Nowhere", BaseHour: 9, Targets: []TrackedLocation{newYork, tokyo}}, ErrInvalidTimeZone},
		{"missing reference", MeetingQuery{BaseHour: 9, Targets: []TrackedLocation{newYork, tokyo}}, ErrInvalidTimeZone},
		{"bad target", MeetingQuery{ReferenceZone: "UTC", BaseHour: 9, Targets: []TrackedLocation{newYork, {Name: "X", Zone: "Bad/Zone"}}}, ErrInvalidTimeZone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.FindOverlap(tt.query, winterNoon); !errors.Is(err, tt.want) {
				t.Errorf("FindOverlap(%+v) error = %v, want %v", tt.query, err, tt.want)
			}
		})
	}
}

func TestFindOverlapOnSkippedDate(t *testing.T) {
	e := newTestEngine(t)
	query := MeetingQuery{ReferenceZone: "Pacific/Apia", BaseHour: 9, Targets: []TrackedLocation{newYork, tokyo}}

	// Samoa moved across the date line and 2011-12-30 never happened there.
	skipped := Date{2011, time.December, 30}
	if _, err := e.FindOverlapOn(skipped, query); !errors.Is(err, ErrInvalidWallTime) {
		t.Errorf("FindOverlapOn(%s) error = %v, want ErrInvalidWallTime", skipped, err)
	}
	if _, err := e.ConvertOn(skipped, query.ReferenceZone, WallTime{Hour: 9}, "UTC"); !errors.Is(err, ErrInvalidWallTime) {
		t.Errorf("ConvertOn(%s) error = %v, want ErrInvalidWallTime", skipped, err)
	}

	want := time.Date(2011, time.December, 30, 19, 0, 0, 0, time.UTC)
	got, err := e.FindOverlapOn(Date{2011, time.December, 31}, query)
	if err != nil {
		t.Fatalf("FindOverlapOn(2011-12-31): %v", err)
	}
	if !got.Instant.Equal(want) {
		t.Errorf("FindOverlapOn(2011-12-31).Instant = %v, want %v", got.Instant, want)
	}

	if _, err := e.GoodHoursOn(skipped, query.ReferenceZone, query.Targets); !errors.Is(err, ErrInvalidWallTime) {
		t.Errorf("GoodHoursOn(%s) error = %v, want ErrInvalidWallTime", skipped, err)
	}

	// While it was still the 30th in UTC, Apia already read the 31st.
	now := time.Date(2011, time.December, 30, 12, 0, 0, 0, time.UTC)
	got, err = e.FindOverlap(query, now)
	if err != nil {
		t.Fatalf("FindOverlap(%v): %v", now, err)
	}
	if !got.Instant.Equal(want) {
		t.Errorf("FindOverlap(%v).Instant = %v, want %v", now, got.Instant, want)
	}
}

func TestFindOverlapCustomBusinessHours(t *testing.T) {
	e := newTestEngine(t, WithBusinessHours(HourWindow{Start: 22, End: 6}))
	got, err := e.FindOverlap(MeetingQuery{
		ReferenceZone: "UTC",
		BaseHour:      23,
		Targets:       []TrackedLocation{{Name: "UTC", Zone: "UTC"}, london},
	}, winterNoon)
	if err != nil {
		t.Fatal(err)
	}
	if !got.AllGood {
		t.Errorf("AllGood = false for 23:00 inside a [22, 6) window")
	}
}

func TestGoodHours(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name      string
		reference string
		targets   []TrackedLocation
		want      []int
	}{
		{"London and Paris", "Europe/London", []TrackedLocation{london, paris}, []int{9, 10, 11, 12, 13, 14, 15, 16}},
		{"New York and Tokyo never overlap", "UTC", []TrackedLocation{newYork, tokyo}, nil},
		{"single target", "UTC", []TrackedLocation{london}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.GoodHours(tt.reference, tt.targets, winterNoon)
			if err != nil {
				t.Fatalf("GoodHours: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("GoodHours(%q) = %v, want %v", tt.reference, got, tt.want)
			}
		})
	}
}

func TestGoodHoursOn(t *testing.T) {
	e := newTestEngine(t)
	// Summer: London and Paris both shift, so the shared window stays 09:00-16:00 London.
	got, err := e.GoodHoursOn(Date{2025, time.July, 15}, "Europe/London", []TrackedLocation{london, paris})
	if err != nil {
		t.Fatalf("GoodHoursOn: %v", err)
	}
	want := []int{9, 10, 11, 12, 13, 14, 15, 16}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GoodHoursOn(2025-07-15, London) = %v, want %v", got, want)
	}
}

func TestFindOverlapConcurrent(t *testing.T) {
	e := newTestEngine(t)
	query := MeetingQuery{ReferenceZone: "Europe/London", BaseHour: 10, Targets: []TrackedLocation{london, paris, newYork}}
	want, err := e.FindOverlap(query, winterNoon)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := e.FindOverlap(query, winterNoon)
			if err != nil {
				t.Errorf("FindOverlap: %v", err)
				return
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("concurrent FindOverlap = %+v, want %+v", got, want)
			}
		}()
	}
	wg.Wait()
}
