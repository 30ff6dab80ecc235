// Package tzconvert derives and formats UTC offsets.
// Offsets are always derived from a specific instant; a zone does not have "an" offset,
// it has one per instant because DST moves it.
package tzconvert

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidOffset is returned by ParseOffset for strings that are not UTC±H[:MM].
var ErrInvalidOffset = errors.New("invalid UTC offset")

// Offset is a signed hours/minutes distance from UTC. Positive is east of UTC.
// Hours and Minutes are magnitudes; Negative carries the sign, so -3:30 is
// {Negative: true, Hours: 3, Minutes: 30}. The zero value is UTC.
type Offset struct {
	Negative bool `json:"negative"`
	Hours    int  `json:"hours"`
	Minutes  int  `json:"minutes"`
}

// FromMinutes builds an Offset from signed minutes east of UTC.
func FromMinutes(total int) Offset {
	o := Offset{}
	if total < 0 {
		o.Negative = true
		total = -total
	}
	o.Hours = total / 60
	o.Minutes = total % 60
	return o
}

// OffsetAt returns the offset in effect at instant in loc.
//
// The instant is rendered as a civil timestamp in loc and again in UTC; the
// difference between the two civil renderings is the offset. Seconds left over
// from pre-standard-time LMT offsets are truncated toward zero.
//
// Minutes are always one of 0, 15, 30 or 45 once a zone has adopted standard
// time. Before that the tz data carries local mean time, so Asia/Kolkata in
// 1900 reports UTC+5:21.
func OffsetAt(instant time.Time, loc *time.Location) Offset {
	local := instant.In(loc)
	utc := instant.UTC()
	localCivil := time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), local.Minute(), local.Second(), 0, time.UTC)
	utcCivil := time.Date(utc.Year(), utc.Month(), utc.Day(), utc.Hour(), utc.Minute(), utc.Second(), 0, time.UTC)
	return FromMinutes(int(localCivil.Sub(utcCivil) / time.Minute))
}

// TotalMinutes returns the signed offset in minutes.
func (o Offset) TotalMinutes() int {
	m := o.Hours*60 + o.Minutes
	if o.Negative {
		return -m
	}
	return m
}

// HoursFloat returns the signed offset as fractional hours, e.g. 5.5 for UTC+5:30.
func (o Offset) HoursFloat() float64 {
	return float64(o.TotalMinutes()) / 60.0
}

// String renders the offset as UTC±H, or UTC±H:MM when there is a minute component.
// UTC itself renders as "UTC+0".
func (o Offset) String() string {
	sign := "+"
	if o.Negative && o.TotalMinutes() != 0 {
		sign = "-"
	}
	if o.Minutes == 0 {
		return fmt.Sprintf("UTC%s%d", sign, o.Hours)
	}
	return fmt.Sprintf("UTC%s%d:%02d", sign, o.Hours, o.Minutes)
}

// ParseOffset parses the output of Offset.String back into an Offset.
// Examples:
//   - "UTC" returns UTC
//   - "UTC+8" returns +8:00
//   - "UTC-3:30" returns -3:30
//   - "UTC+05:45" returns +5:45
func ParseOffset(s string) (Offset, error) {
	s = strings.TrimSpace(s)
	rest, ok := strings.CutPrefix(s, "UTC")
	if !ok {
		return Offset{}, fmt.Errorf("%w: %q", ErrInvalidOffset, s)
	}
	if rest == "" {
		return Offset{}, nil
	}

	negative := false
	switch rest[0] {
	case '-':
		negative = true
		rest = rest[1:]
	case '+':
		rest = rest[1:]
	default:
		return Offset{}, fmt.Errorf("%w: %q", ErrInvalidOffset, s)
	}

	hourStr, minuteStr, hasMinutes := strings.Cut(rest, ":")
	hours, err := strconv.Atoi(hourStr)
	if err != nil || hours < 0 || hours > 14 {
		return Offset{}, fmt.Errorf("%w: %q", ErrInvalidOffset, s)
	}
	minutes := 0
	if hasMinutes {
		minutes, err = strconv.Atoi(minuteStr)
		if err != nil || len(minuteStr) != 2 || minutes < 0 || minutes > 59 {
			return Offset{}, fmt.Errorf("%w: %q", ErrInvalidOffset, s)
		}
	}

	o := Offset{Negative: negative, Hours: hours, Minutes: minutes}
	if o.TotalMinutes() == 0 {
		o.Negative = false
	}
	return o, nil
}

// UTCToLocal converts a UTC hour-of-day to a local hour-of-day under offset.
// Example: UTCToLocal(15.5, -4:00) converts 15:30 UTC to 11.5 (11:30 EDT).
// Example: UTCToLocal(20.0, +5:30) converts 20:00 UTC to 1.5 (01:30 IST next day).
//
// Returns: Local hour in [0, 24), wrapped across day boundaries.
func UTCToLocal(utcHour float64, offset Offset) float64 {
	return math.Mod(utcHour+offset.HoursFloat()+48, 24)
}
