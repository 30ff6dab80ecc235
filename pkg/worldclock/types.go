package worldclock

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/codeGROOVE-dev/worldclock/pkg/tzconvert"
	"github.com/codeGROOVE-dev/worldclock/pkg/zone"
)

// Option configures an Engine.
type Option func(*OptionHolder)

// WithBusinessHours sets the local-hour window a meeting slot must fall into.
func WithBusinessHours(w HourWindow) Option {
	return func(o *OptionHolder) {
		o.business = w
	}
}

// WithDaytime sets the local-hour window reported as daytime.
func WithDaytime(w HourWindow) Option {
	return func(o *OptionHolder) {
		o.daytime = w
	}
}

// WithSameTimeThreshold sets the hour difference below which two zones read as the same time.
func WithSameTimeThreshold(hours float64) Option {
	return func(o *OptionHolder) {
		o.sameThreshold = hours
	}
}

// WithResolver shares a zone resolver between engines.
func WithResolver(r *zone.Resolver) Option {
	return func(o *OptionHolder) {
		o.resolver = r
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *OptionHolder) {
		o.logger = logger
	}
}

// OptionHolder holds configuration options.
type OptionHolder struct {
	resolver      *zone.Resolver
	logger        *slog.Logger
	business      HourWindow
	daytime       HourWindow
	sameThreshold float64
}

// TrackedLocation is a display name bound to an IANA zone.
// It deliberately carries no offset: offsets go stale across DST transitions.
type TrackedLocation struct {
	Name string `json:"name" yaml:"name" validate:"required,max=100"`
	Zone string `json:"zone" yaml:"zone" validate:"required,max=64"`
}

// Date is a calendar date as observed in some zone.
type Date struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// DaysUntil returns the number of calendar days from d to other.
func (d Date) DaysUntil(other Date) int {
	a := time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC)
	b := time.Date(other.Year, other.Month, other.Day, 12, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// String renders the date as 2006-01-02.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Label renders the short month-day form shown next to converted times, e.g. "Jan 2".
func (d Date) Label() string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format("Jan 2")
}

// LocalTimeView is the projection of an instant into one zone.
type LocalTimeView struct {
	Local        time.Time        `json:"local"`
	Zone         string           `json:"zone"`
	Abbreviation string           `json:"abbreviation"`
	Date         Date             `json:"date"`
	Offset       tzconvert.Offset `json:"offset"`
	Clock        WallTime         `json:"clock"`
	IsDaytime    bool             `json:"is_daytime"`
}

// TimeString renders the wall clock as 24-hour HH:MM:SS.
func (v LocalTimeView) TimeString() string {
	return v.Clock.Format(true)
}

// DateString renders the local date the way clock cards show it, e.g. "Mon, Jan 2".
func (v LocalTimeView) DateString() string {
	return v.Local.Format("Mon, Jan 2")
}

// Difference is the signed hour distance between a zone and a reference zone.
type Difference struct {
	Hours float64 `json:"hours"`
	Same  bool    `json:"same"`
}

// ConversionResult is the outcome of converting a time-of-day between zones.
type ConversionResult struct {
	Instant     time.Time `json:"instant"`
	SourceZone  string    `json:"source_zone"`
	TargetZone  string    `json:"target_zone"`
	SourceDate  Date      `json:"source_date"`
	TargetDate  Date      `json:"target_date"`
	Source      WallTime  `json:"source"`
	Target      WallTime  `json:"target"`
	DayDelta    int       `json:"day_delta"`
	DateShifted bool      `json:"date_shifted"`
}

// MeetingQuery asks how BaseHour:00 in ReferenceZone lands in each target zone.
type MeetingQuery struct {
	ReferenceZone string            `json:"reference_zone" validate:"required"`
	Targets       []TrackedLocation `json:"zones" validate:"dive"`
	BaseHour      int               `json:"base_hour" validate:"min=0,max=23"`
}

// MeetingSlot is one target zone's view of a candidate meeting time.
type MeetingSlot struct {
	Location   TrackedLocation `json:"location"`
	Date       Date            `json:"date"`
	LocalTime  WallTime        `json:"local_time"`
	LocalHour  int             `json:"local_hour"`
	IsGoodTime bool            `json:"is_good_time"`
}

// MeetingResult holds per-zone slots in input order.
// When fewer than two zones were supplied, Applicable is false and Reason
// is ErrInsufficientZones; this is not an error.
type MeetingResult struct {
	Instant    time.Time     `json:"instant"`
	Reason     error         `json:"-"`
	Slots      []MeetingSlot `json:"slots"`
	Applicable bool          `json:"applicable"`
	AllGood    bool          `json:"all_good"`
}
