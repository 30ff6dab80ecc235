// Package constants defines shared defaults for the worldclock application.
package constants

// Business hours are the local-hour window used to classify a meeting slot as good.
// The window is half-open: BusinessStartHour is inside, BusinessEndHour is not.
const (
	BusinessStartHour = 9
	BusinessEndHour   = 18
)

// Daytime is the local-hour window reported as day rather than night.
const (
	DaytimeStartHour = 6
	DaytimeEndHour   = 18
)

// SameTimeThreshold is the magnitude, in hours, below which two zones are
// reported as showing the same time instead of a numeric difference.
const SameTimeThreshold = 0.1

// MinMeetingZones is the number of participants a meeting needs.
const MinMeetingZones = 2

// Placeholder is rendered wherever a time could not be computed.
const Placeholder = "--:--"
