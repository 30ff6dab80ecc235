// Package worldclock computes wall-clock views, time-of-day conversions and
// meeting overlaps across IANA time zones.
//
// Every operation is a pure function of its arguments: the caller supplies the
// instant ("now") explicitly, nothing reads the process clock or the machine's
// local zone. An Engine is immutable after New and safe for concurrent use.
package worldclock

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/codeGROOVE-dev/worldclock/pkg/constants"
	"github.com/codeGROOVE-dev/worldclock/pkg/tzconvert"
	"github.com/codeGROOVE-dev/worldclock/pkg/zone"
)

// Engine evaluates time queries against the time zone database.
type Engine struct {
	resolver      *zone.Resolver
	logger        *slog.Logger
	business      HourWindow
	daytime       HourWindow
	sameThreshold float64
}

// New creates an Engine. Unset options fall back to the defaults in package constants.
func New(opts ...Option) (*Engine, error) {
	o := &OptionHolder{
		business:      DefaultBusinessHours(),
		daytime:       DefaultDaytime(),
		sameThreshold: constants.SameTimeThreshold,
	}
	for _, opt := range opts {
		opt(o)
	}

	if err := o.business.Validate(); err != nil {
		return nil, fmt.Errorf("business hours: %w", err)
	}
	if err := o.daytime.Validate(); err != nil {
		return nil, fmt.Errorf("daytime: %w", err)
	}
	if o.sameThreshold < 0 {
		return nil, fmt.Errorf("same-time threshold %v is negative", o.sameThreshold)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.resolver == nil {
		o.resolver = zone.NewResolver(o.logger)
	}

	return &Engine{
		resolver:      o.resolver,
		logger:        o.logger,
		business:      o.business,
		daytime:       o.daytime,
		sameThreshold: o.sameThreshold,
	}, nil
}

// BusinessHours returns the configured business-hour window.
func (e *Engine) BusinessHours() HourWindow {
	return e.business
}

// Daytime returns the configured daytime window.
func (e *Engine) Daytime() HourWindow {
	return e.daytime
}

// Resolver exposes the zone resolver so callers can validate identifiers up front.
func (e *Engine) Resolver() *zone.Resolver {
	return e.resolver
}

// OffsetAt returns the UTC offset of zoneID at instant.
func (e *Engine) OffsetAt(instant time.Time, zoneID string) (tzconvert.Offset, error) {
	loc, err := e.resolver.Load(zoneID)
	if err != nil {
		return tzconvert.Offset{}, err
	}
	return tzconvert.OffsetAt(instant, loc), nil
}

// ViewAt projects instant into zoneID.
func (e *Engine) ViewAt(instant time.Time, zoneID string) (LocalTimeView, error) {
	loc, err := e.resolver.Load(zoneID)
	if err != nil {
		return LocalTimeView{}, err
	}
	return e.view(instant, zoneID, loc), nil
}

func (e *Engine) view(instant time.Time, zoneID string, loc *time.Location) LocalTimeView {
	local := instant.In(loc)
	abbr, _ := local.Zone()
	return LocalTimeView{
		Local:        local,
		Zone:         zoneID,
		Abbreviation: abbr,
		Date:         DateOf(local),
		Offset:       tzconvert.OffsetAt(instant, loc),
		Clock:        WallTimeOf(local),
		IsDaytime:    e.daytime.Contains(local.Hour()),
	}
}

// HourDifference returns how far zoneID's wall clock is ahead of referenceZoneID's
// at instant. Differences smaller than the same-time threshold are reported as Same.
func (e *Engine) HourDifference(instant time.Time, zoneID, referenceZoneID string) (Difference, error) {
	target, err := e.OffsetAt(instant, zoneID)
	if err != nil {
		return Difference{}, err
	}
	reference, err := e.OffsetAt(instant, referenceZoneID)
	if err != nil {
		return Difference{}, err
	}

	hours := float64(target.TotalMinutes()-reference.TotalMinutes()) / 60.0
	if math.Abs(hours) < e.sameThreshold {
		return Difference{Same: true}, nil
	}
	return Difference{Hours: hours}, nil
}

// String renders "Same time", or a signed hour count such as "+5.5h" or "-3h".
func (d Difference) String() string {
	if d.Same {
		return "Same time"
	}
	sign := "+"
	if d.Hours < 0 {
		sign = "-"
	}
	return sign + strconv.FormatFloat(math.Abs(d.Hours), 'f', -1, 64) + "h"
}

// today returns the calendar date of now as observed in loc.
func today(now time.Time, loc *time.Location) Date {
	return DateOf(now.In(loc))
}

// resolveCivil turns a civil date and wall time in loc into an instant.
// Wall times inside a DST gap do not exist; they are read with the offset in
// effect before the transition, which moves them forward by the gap
// (02:30 on a spring-forward night becomes 03:30). Ambiguous wall times in a
// DST overlap resolve to the first occurrence.
func resolveCivil(date Date, wall WallTime, loc *time.Location) time.Time {
	t := time.Date(date.Year, date.Month, date.Day, wall.Hour, wall.Minute, wall.Second, 0, loc)
	if WallTimeOf(t) == wall && DateOf(t) == date {
		return t
	}

	_, before := t.Add(-6 * time.Hour).Zone()
	naive := time.Date(date.Year, date.Month, date.Day, wall.Hour, wall.Minute, wall.Second, 0, time.UTC)
	return naive.Add(-time.Duration(before) * time.Second).In(loc)
}
