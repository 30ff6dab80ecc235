package worldclock

import (
	"fmt"

	"github.com/codeGROOVE-dev/worldclock/pkg/constants"
)

// HourWindow is a half-open local-hour interval [Start, End).
// A window with Start > End wraps past midnight, e.g. [22, 6) covers 22:00-05:59.
type HourWindow struct {
	Start int `json:"start" yaml:"start" validate:"min=0,max=23"`
	End   int `json:"end" yaml:"end" validate:"min=1,max=24"`
}

// DefaultBusinessHours is [9, 18).
func DefaultBusinessHours() HourWindow {
	return HourWindow{Start: constants.BusinessStartHour, End: constants.BusinessEndHour}
}

// DefaultDaytime is [6, 18).
func DefaultDaytime() HourWindow {
	return HourWindow{Start: constants.DaytimeStartHour, End: constants.DaytimeEndHour}
}

// Validate rejects out-of-range and empty windows.
func (w HourWindow) Validate() error {
	if w.Start < 0 || w.Start > 23 || w.End < 1 || w.End > 24 {
		return fmt.Errorf("hour window [%d, %d) out of range", w.Start, w.End)
	}
	if w.Start == w.End {
		return fmt.Errorf("hour window [%d, %d) is empty", w.Start, w.End)
	}
	return nil
}

// Contains reports whether a local hour-of-day lies inside the window.
// Only the hour matters: 17:59 is inside [9, 18), 18:00 is not.
func (w HourWindow) Contains(hour int) bool {
	if w.Start <= w.End {
		return hour >= w.Start && hour < w.End
	}
	return hour >= w.Start || hour < w.End
}

// String renders the window as "09:00-18:00".
func (w HourWindow) String() string {
	return fmt.Sprintf("%02d:00-%02d:00", w.Start, w.End)
}
