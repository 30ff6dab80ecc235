package locations

import (
	"errors"
	"sync"
	"testing"
	_ "time/tzdata"

	"github.com/codeGROOVE-dev/worldclock/pkg/zone"
)

func newDefaultSet(t *testing.T) *Set {
	t.Helper()
	s, err := NewSet(zone.NewResolver(nil), Defaults())
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}
	return s
}

func names(ls []Location) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.Name
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNewSetAssignsIDs(t *testing.T) {
	s := newDefaultSet(t)
	seen := make(map[string]bool)
	for _, l := range s.All() {
		if l.ID == "" {
			t.Errorf("location %q has no id", l.Name)
		}
		if seen[l.ID] {
			t.Errorf("duplicate id %s", l.ID)
		}
		seen[l.ID] = true
	}
	if got := names(s.All()); !equalStrings(got, []string{"New York", "London", "Tokyo", "Paris"}) {
		t.Errorf("All() = %v, want default order", got)
	}
}

func TestNewSetKeepsIDs(t *testing.T) {
	s, err := NewSet(zone.NewResolver(nil), []Location{{ID: "fixed", Name: "Berlin", Zone: "Europe/Berlin", Pinned: true}})
	if err != nil {
		t.Fatal(err)
	}
	l, ok := s.Find("berlin")
	if !ok || l.ID != "fixed" || !l.Pinned {
		t.Errorf("Find(berlin) = %+v, %v; want persisted id and pin", l, ok)
	}
}

func TestAdd(t *testing.T) {
	tests := []struct {
		name    string
		city    string
		zone    string
		wantErr error
	}{
		{"new zone", "Mumbai", "Asia/Kolkata", nil},
		{"trims input", "  Seoul ", " Asia/Seoul ", nil},
		{"duplicate zone under another name", "Big Apple", "America/New_York", ErrDuplicateZone},
		{"invalid zone", "Atlantis", "Ocean/Atlantis", zone.ErrInvalidTimeZone},
		{"empty zone", "Nowhere", "", zone.ErrInvalidTimeZone},
		{"empty name", "  ", "Asia/Dubai", ErrEmptyName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newDefaultSet(t)
			got, err := s.Add(tt.city, tt.zone)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Add(%q, %q) error = %v, want %v", tt.city, tt.zone, err, tt.wantErr)
				}
				if s.Len() != 4 {
					t.Errorf("Len() = %d after failed Add, want 4", s.Len())
				}
				return
			}
			if err != nil {
				t.Fatalf("Add(%q, %q): %v", tt.city, tt.zone, err)
			}
			if got.ID == "" || got.Pinned {
				t.Errorf("Add(%q, %q) = %+v, want fresh unpinned location", tt.city, tt.zone, got)
			}
			all := s.All()
			if last := all[len(all)-1]; last != got {
				t.Errorf("last location = %+v, want %+v", last, got)
			}
		})
	}
}

func TestRemove(t *testing.T) {
	s := newDefaultSet(t)
	london, _ := s.Find("London")

	if err := s.Remove(london.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := s.Find("London"); ok {
		t.Errorf("London still present after Remove")
	}
	if err := s.Remove(london.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Remove error = %v, want ErrNotFound", err)
	}
	// The zone is free again.
	if _, err := s.Add("London", "Europe/London"); err != nil {
		t.Errorf("re-adding removed zone: %v", err)
	}
}

func TestSortedPinnedFirst(t *testing.T) {
	s := newDefaultSet(t)
	tokyo, _ := s.Find("tokyo")
	paris, _ := s.Find("PARIS")

	if _, err := s.TogglePin(paris.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.TogglePin(tokyo.ID); err != nil {
		t.Fatal(err)
	}

	want := []string{"Tokyo", "Paris", "New York", "London"}
	if got := names(s.Sorted()); !equalStrings(got, want) {
		t.Errorf("Sorted() = %v, want %v", got, want)
	}

	got, err := s.TogglePin(tokyo.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Pinned {
		t.Errorf("second TogglePin left Tokyo pinned")
	}
	want = []string{"Paris", "New York", "London", "Tokyo"}
	if got := names(s.Sorted()); !equalStrings(got, want) {
		t.Errorf("Sorted() = %v, want %v", got, want)
	}

	if _, err := s.TogglePin("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("TogglePin(missing) error = %v, want ErrNotFound", err)
	}
}

func TestFilter(t *testing.T) {
	s := newDefaultSet(t)
	london, _ := s.Find("London")
	if _, err := s.TogglePin(london.ID); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"London", "New York", "Tokyo", "Paris"}},
		{"o", []string{"London", "New York", "Tokyo"}},
		{"PAR", []string{"Paris"}},
		{"zurich", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := names(s.Filter(tt.query)); !equalStrings(got, tt.want) {
				t.Errorf("Filter(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestStats(t *testing.T) {
	s := newDefaultSet(t)
	tokyo, _ := s.Find("Tokyo")
	if _, err := s.TogglePin(tokyo.ID); err != nil {
		t.Fatal(err)
	}
	got := s.Stats()
	want := Stats{Total: 4, Pinned: 1, Zones: 4}
	if got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
}

func TestTracked(t *testing.T) {
	s := newDefaultSet(t)
	tracked := s.Tracked()
	if len(tracked) != 4 || tracked[2].Name != "Tokyo" || tracked[2].Zone != "Asia/Tokyo" {
		t.Errorf("Tracked() = %+v", tracked)
	}
}

func TestSetConcurrentAdd(t *testing.T) {
	s, err := NewSet(zone.NewResolver(nil), nil)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	added := 0
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Add("Tokyo", "Asia/Tokyo"); err == nil {
				mu.Lock()
				added++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if added != 1 || s.Len() != 1 {
		t.Errorf("concurrent Add of one zone: added=%d Len=%d, want 1 and 1", added, s.Len())
	}
}
