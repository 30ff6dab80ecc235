package worldclock

import (
	"fmt"
	"time"
)

// Convert interprets wall as a time of day "today" in sourceZone, where today is
// the calendar date of now in sourceZone, and renders that instant in targetZone.
func (e *Engine) Convert(now time.Time, sourceZone string, wall WallTime, targetZone string) (*ConversionResult, error) {
	src, err := e.resolver.Load(sourceZone)
	if err != nil {
		return nil, err
	}
	return e.ConvertOn(today(now, src), sourceZone, wall, targetZone)
}

// ConvertOn is Convert with the source calendar date given explicitly.
func (e *Engine) ConvertOn(date Date, sourceZone string, wall WallTime, targetZone string) (*ConversionResult, error) {
	if err := wall.Validate(); err != nil {
		return nil, err
	}
	src, err := e.resolver.Load(sourceZone)
	if err != nil {
		return nil, err
	}
	dst, err := e.resolver.Load(targetZone)
	if err != nil {
		return nil, err
	}

	instant := resolveCivil(date, wall, src)
	if DateOf(instant) != date {
		return nil, fmt.Errorf("%w: %s on %s does not exist in %s", ErrInvalidWallTime, wall, date, sourceZone)
	}

	sourceLocal := instant.In(src)
	targetLocal := instant.In(dst)
	sourceDate := DateOf(sourceLocal)
	targetDate := DateOf(targetLocal)

	result := &ConversionResult{
		Instant:     instant.UTC(),
		SourceZone:  sourceZone,
		TargetZone:  targetZone,
		SourceDate:  sourceDate,
		TargetDate:  targetDate,
		Source:      WallTimeOf(sourceLocal),
		Target:      WallTimeOf(targetLocal),
		DayDelta:    sourceDate.DaysUntil(targetDate),
		DateShifted: sourceDate.Month != targetDate.Month || sourceDate.Day != targetDate.Day,
	}

	e.logger.Debug("converted wall time",
		"source_zone", sourceZone,
		"source", result.Source,
		"target_zone", targetZone,
		"target", result.Target,
		"day_delta", result.DayDelta)

	return result, nil
}

// DayLabel renders the day-boundary hint shown next to a converted time,
// e.g. " (+1 day)", or "" when the date did not change.
func (r *ConversionResult) DayLabel() string {
	switch {
	case !r.DateShifted:
		return ""
	case r.DayDelta == 1:
		return " (+1 day)"
	case r.DayDelta == -1:
		return " (-1 day)"
	default:
		return fmt.Sprintf(" (%+d days)", r.DayDelta)
	}
}
