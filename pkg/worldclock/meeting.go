package worldclock

import (
	"errors"
	"fmt"
	"time"

	"github.com/codeGROOVE-dev/worldclock/pkg/constants"
)

// FindOverlap places BaseHour:00 "today" in the query's reference zone and
// classifies the resulting local hour of every target against the business window.
// Today is the calendar date of now in the reference zone.
//
// Fewer than two targets is not an error: the result comes back with
// Applicable=false and Reason=ErrInsufficientZones.
func (e *Engine) FindOverlap(query MeetingQuery, now time.Time) (*MeetingResult, error) {
	ref, err := e.resolver.Load(query.ReferenceZone)
	if err != nil {
		return nil, fmt.Errorf("reference zone: %w", err)
	}
	return e.FindOverlapOn(today(now, ref), query)
}

// FindOverlapOn is FindOverlap with the reference calendar date given explicitly.
// A date the reference zone skipped, such as 2011-12-30 in Pacific/Apia, is
// rejected with ErrInvalidWallTime, as ConvertOn does.
func (e *Engine) FindOverlapOn(date Date, query MeetingQuery) (*MeetingResult, error) {
	if query.BaseHour < 0 || query.BaseHour > 23 {
		return nil, fmt.Errorf("%w: base hour %d", ErrInvalidWallTime, query.BaseHour)
	}
	ref, err := e.resolver.Load(query.ReferenceZone)
	if err != nil {
		return nil, fmt.Errorf("reference zone: %w", err)
	}

	if len(query.Targets) < constants.MinMeetingZones {
		e.logger.Debug("meeting query not applicable", "targets", len(query.Targets))
		return &MeetingResult{Reason: ErrInsufficientZones}, nil
	}

	base := WallTime{Hour: query.BaseHour}
	instant := resolveCivil(date, base, ref)
	if DateOf(instant) != date {
		return nil, fmt.Errorf("%w: %s on %s does not exist in %s", ErrInvalidWallTime, base, date, query.ReferenceZone)
	}

	result := &MeetingResult{
		Instant:    instant.UTC(),
		Applicable: true,
		AllGood:    true,
		Slots:      make([]MeetingSlot, 0, len(query.Targets)),
	}

	for _, target := range query.Targets {
		view, err := e.ViewAt(instant, target.Zone)
		if err != nil {
			return nil, fmt.Errorf("location %q: %w", target.Name, err)
		}
		good := e.business.Contains(view.Clock.Hour)
		result.Slots = append(result.Slots, MeetingSlot{
			Location:   target,
			Date:       view.Date,
			LocalTime:  view.Clock,
			LocalHour:  view.Clock.Hour,
			IsGoodTime: good,
		})
		result.AllGood = result.AllGood && good
	}

	return result, nil
}

// GoodHours returns every base hour in the reference zone for which all targets
// are inside business hours, in ascending order. It returns nil when fewer than
// two targets are given.
func (e *Engine) GoodHours(referenceZone string, targets []TrackedLocation, now time.Time) ([]int, error) {
	ref, err := e.resolver.Load(referenceZone)
	if err != nil {
		return nil, fmt.Errorf("reference zone: %w", err)
	}
	return e.GoodHoursOn(today(now, ref), referenceZone, targets)
}

// GoodHoursOn is GoodHours for an explicit reference date.
func (e *Engine) GoodHoursOn(date Date, referenceZone string, targets []TrackedLocation) ([]int, error) {
	var (
		hours   []int
		skipped int
		gapErr  error
	)
	for hour := range 24 {
		result, err := e.FindOverlapOn(date, MeetingQuery{
			ReferenceZone: referenceZone,
			BaseHour:      hour,
			Targets:       targets,
		})
		if errors.Is(err, ErrInvalidWallTime) {
			// Hours a DST gap pushes past midnight cannot host the meeting.
			skipped++
			gapErr = err
			continue
		}
		if err != nil {
			return nil, err
		}
		if !result.Applicable {
			return nil, nil
		}
		if result.AllGood {
			hours = append(hours, hour)
		}
	}
	if skipped == 24 {
		return nil, gapErr
	}
	return hours, nil
}
