// Package zone validates IANA time zone identifiers and resolves them to locations.
package zone

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/maypok86/otter/v2"
)

// ErrInvalidTimeZone is returned for identifiers that do not resolve against the
// time zone database.
var ErrInvalidTimeZone = errors.New("invalid time zone")

// Resolver loads *time.Location values by IANA identifier.
//
// Only the location rule tables are cached. Offsets are never cached because
// they depend on the instant.
type Resolver struct {
	cache  *otter.Cache[string, *time.Location]
	logger *slog.Logger
}

// NewResolver creates a Resolver backed by a bounded in-memory cache.
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		cache: otter.Must(&otter.Options[string, *time.Location]{
			MaximumSize:     1_000,
			InitialCapacity: 64,
		}),
		logger: logger,
	}
}

// Load resolves id to a location. The empty string and "Local" are rejected:
// they are not IANA identifiers and would silently fall back to UTC or to the
// zone of whatever machine is running the code.
func (r *Resolver) Load(id string) (*time.Location, error) {
	id = strings.TrimSpace(id)
	if id == "" || id == "Local" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimeZone, id)
	}

	if loc, found := r.cache.GetIfPresent(id); found {
		return loc, nil
	}

	loc, err := time.LoadLocation(id)
	if err != nil {
		r.logger.Debug("time zone lookup failed", "zone", id, "error", err)
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimeZone, id)
	}

	r.cache.Set(id, loc)
	return loc, nil
}

// Validate reports whether id resolves, without returning the location.
func (r *Resolver) Validate(id string) error {
	_, err := r.Load(id)
	return err
}

// Size returns the number of cached locations.
func (r *Resolver) Size() int {
	return r.cache.EstimatedSize()
}
