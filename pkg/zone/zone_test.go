package zone

import (
	"errors"
	"sync"
	"testing"
	_ "time/tzdata"
)

func TestResolverLoad(t *testing.T) {
	r := NewResolver(nil)

	tests := []struct {
		id      string
		wantErr bool
	}{
		{"Asia/Tokyo", false},
		{"America/New_York", false},
		{"UTC", false},
		{"  Europe/London  ", false},
		{"", true},
		{"Local", true},
		{"Mars/Olympus_Mons", true},
		{"../../etc/passwd", true},
		{"asia/tokyo_typo", true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			loc, err := r.Load(tt.id)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTimeZone) {
					t.Errorf("Load(%q) error = %v, want ErrInvalidTimeZone", tt.id, err)
				}
				if loc != nil {
					t.Errorf("Load(%q) returned location %v alongside error", tt.id, loc)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load(%q) unexpected error: %v", tt.id, err)
			}
			if loc == nil {
				t.Fatalf("Load(%q) returned nil location", tt.id)
			}
		})
	}
}

func TestResolverCachesLocations(t *testing.T) {
	r := NewResolver(nil)
	first, err := r.Load("Asia/Kolkata")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	second, err := r.Load("Asia/Kolkata")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if first != second {
		t.Errorf("Load returned different locations for the same id")
	}
	if err := r.Validate("Nowhere/Special"); !errors.Is(err, ErrInvalidTimeZone) {
		t.Errorf("Validate(Nowhere/Special) = %v, want ErrInvalidTimeZone", err)
	}
}

func TestResolverConcurrentLoad(t *testing.T) {
	r := NewResolver(nil)
	zones := []string{"Asia/Tokyo", "Europe/Paris", "America/Chicago", "Australia/Sydney"}

	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := zones[i%len(zones)]
			if _, err := r.Load(id); err != nil {
				t.Errorf("Load(%q): %v", id, err)
			}
		}(i)
	}
	wg.Wait()
}
