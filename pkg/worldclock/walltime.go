package worldclock

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// WallTime is a time of day with no date or zone attached.
type WallTime struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
	Second int `json:"second,omitempty"`
}

// WallTimeOf returns the wall clock reading of t in t's own location.
func WallTimeOf(t time.Time) WallTime {
	return WallTime{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

// Validate checks that every field is inside its civil range.
func (w WallTime) Validate() error {
	switch {
	case w.Hour < 0 || w.Hour > 23:
		return fmt.Errorf("%w: hour %d", ErrInvalidWallTime, w.Hour)
	case w.Minute < 0 || w.Minute > 59:
		return fmt.Errorf("%w: minute %d", ErrInvalidWallTime, w.Minute)
	case w.Second < 0 || w.Second > 59:
		return fmt.Errorf("%w: second %d", ErrInvalidWallTime, w.Second)
	default:
		return nil
	}
}

// Format renders HH:MM, or HH:MM:SS when withSeconds is set.
func (w WallTime) Format(withSeconds bool) string {
	if withSeconds {
		return fmt.Sprintf("%02d:%02d:%02d", w.Hour, w.Minute, w.Second)
	}
	return fmt.Sprintf("%02d:%02d", w.Hour, w.Minute)
}

// String renders HH:MM.
func (w WallTime) String() string {
	return w.Format(false)
}

// ParseWallTime parses "HH:MM" or "HH:MM:SS" in 24-hour form.
func ParseWallTime(s string) (WallTime, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return WallTime{}, fmt.Errorf("%w: %q is not HH:MM", ErrInvalidWallTime, s)
	}

	fields := make([]int, 3)
	for i, part := range parts {
		if part == "" || len(part) > 2 || !isDigits(part) {
			return WallTime{}, fmt.Errorf("%w: %q is not HH:MM", ErrInvalidWallTime, s)
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return WallTime{}, fmt.Errorf("%w: %q is not HH:MM", ErrInvalidWallTime, s)
		}
		fields[i] = n
	}

	w := WallTime{Hour: fields[0], Minute: fields[1], Second: fields[2]}
	if err := w.Validate(); err != nil {
		return WallTime{}, err
	}
	return w, nil
}

// isDigits reports whether s is made of ASCII digits only. strconv.Atoi alone
// would let "+9" and "-0" through.
func isDigits(s string) bool {
	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
