package worldclock

import (
	"errors"

	"github.com/codeGROOVE-dev/worldclock/pkg/zone"
)

var (
	// ErrInvalidTimeZone is returned when a zone identifier does not resolve.
	ErrInvalidTimeZone = zone.ErrInvalidTimeZone

	// ErrInvalidWallTime is returned for hours, minutes or seconds outside their civil ranges.
	ErrInvalidWallTime = errors.New("invalid wall time")

	// ErrInsufficientZones marks a meeting query with fewer than two zones.
	// It is reported through MeetingResult.Reason, never returned as an error.
	ErrInsufficientZones = errors.New("a meeting needs at least two zones")
)
