// Package locations manages the user's working set of tracked locations and the
// catalog of well-known cities.
package locations

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/codeGROOVE-dev/worldclock/pkg/worldclock"
)

var (
	// ErrDuplicateZone is returned when a location with the same zone is already tracked.
	ErrDuplicateZone = errors.New("zone already tracked")

	// ErrNotFound is returned when no tracked location matches.
	ErrNotFound = errors.New("location not found")

	// ErrEmptyName is returned when a location is added without a display name.
	ErrEmptyName = errors.New("location name is empty")
)

// Location is a tracked location as persisted in the config file.
type Location struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name" validate:"required,max=100"`
	Zone   string `json:"zone" yaml:"zone" validate:"required,max=64"`
	Pinned bool   `json:"pinned" yaml:"pinned,omitempty"`
}

// Tracked strips the bookkeeping fields.
func (l Location) Tracked() worldclock.TrackedLocation {
	return worldclock.TrackedLocation{Name: l.Name, Zone: l.Zone}
}

// ZoneValidator checks that a zone identifier resolves.
type ZoneValidator interface {
	Validate(id string) error
}

// Stats summarizes a working set.
type Stats struct {
	Total  int `json:"total"`
	Pinned int `json:"pinned"`
	Zones  int `json:"zones"`
}

// Set is an ordered working set of locations with unique zones.
// It is safe for concurrent use.
type Set struct {
	validator ZoneValidator
	items     []Location
	mu        sync.RWMutex
}

// Defaults is the working set a fresh install starts with.
func Defaults() []Location {
	return []Location{
		{Name: "New York", Zone: "America/New_York"},
		{Name: "London", Zone: "Europe/London"},
		{Name: "Tokyo", Zone: "Asia/Tokyo"},
		{Name: "Paris", Zone: "Europe/Paris"},
	}
}

// NewSet builds a Set from persisted locations, assigning ids where missing.
// Invalid or duplicate zones are rejected.
func NewSet(validator ZoneValidator, items []Location) (*Set, error) {
	s := &Set{validator: validator}
	for _, item := range items {
		if _, err := s.add(item); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add appends a new unpinned location.
func (s *Set) Add(name, zoneID string) (Location, error) {
	return s.add(Location{Name: name, Zone: zoneID})
}

func (s *Set) add(l Location) (Location, error) {
	l.Name = strings.TrimSpace(l.Name)
	l.Zone = strings.TrimSpace(l.Zone)
	if l.Name == "" {
		return Location{}, ErrEmptyName
	}
	if err := s.validator.Validate(l.Zone); err != nil {
		return Location{}, fmt.Errorf("add %q: %w", l.Name, err)
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.items {
		if existing.Zone == l.Zone {
			return Location{}, fmt.Errorf("%w: %s is tracked as %q", ErrDuplicateZone, l.Zone, existing.Name)
		}
	}
	s.items = append(s.items, l)
	return l, nil
}

// Remove deletes the location with the given id.
func (s *Set) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.items {
		if l.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: id %s", ErrNotFound, id)
}

// TogglePin flips the pinned flag and returns the updated location.
func (s *Set) TogglePin(id string) (Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Pinned = !s.items[i].Pinned
			return s.items[i], nil
		}
	}
	return Location{}, fmt.Errorf("%w: id %s", ErrNotFound, id)
}

// Find returns the location whose name equals name, ignoring case.
func (s *Set) Find(name string) (Location, bool) {
	name = strings.TrimSpace(name)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.items {
		if strings.EqualFold(l.Name, name) {
			return l, true
		}
	}
	return Location{}, false
}

// All returns the locations in insertion order.
func (s *Set) All() []Location {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Location, len(s.items))
	copy(out, s.items)
	return out
}

// Sorted returns pinned locations first; order is otherwise insertion order.
func (s *Set) Sorted() []Location {
	out := s.All()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Pinned && !out[j].Pinned
	})
	return out
}

// Filter returns the locations whose name contains query, ignoring case,
// pinned first. An empty query matches everything.
func (s *Set) Filter(query string) []Location {
	query = strings.ToLower(strings.TrimSpace(query))
	var out []Location
	for _, l := range s.Sorted() {
		if strings.Contains(strings.ToLower(l.Name), query) {
			out = append(out, l)
		}
	}
	return out
}

// Tracked returns the locations in insertion order as engine inputs.
func (s *Set) Tracked() []worldclock.TrackedLocation {
	all := s.All()
	out := make([]worldclock.TrackedLocation, len(all))
	for i, l := range all {
		out[i] = l.Tracked()
	}
	return out
}

// Len returns the number of tracked locations.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Stats counts the working set.
func (s *Set) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	zones := make(map[string]bool, len(s.items))
	st := Stats{Total: len(s.items)}
	for _, l := range s.items {
		if l.Pinned {
			st.Pinned++
		}
		zones[l.Zone] = true
	}
	st.Zones = len(zones)
	return st
}
