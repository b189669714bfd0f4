package models

import (
	"fmt"
	"time"
)

// DateFormatISO is the wire and storage format for stay dates.
const DateFormatISO = "2006-01-02"

// DateFormatCZ is the display format used on guest-facing forms.
const DateFormatCZ = "02.01.2006"

// StayInterval is a half-open date range [Arrival, Departure).
// A stay occupies the nights Arrival, Arrival+1, ..., Departure-1;
// the departure day itself is free for the next arrival.
type StayInterval struct {
	Arrival   time.Time `json:"arrival"`
	Departure time.Time `json:"departure"`
}

// NewStayInterval normalizes both endpoints to date precision.
func NewStayInterval(arrival, departure time.Time) StayInterval {
	return StayInterval{
		Arrival:   DateOnly(arrival),
		Departure: DateOnly(departure),
	}
}

// DateOnly truncates a timestamp to midnight UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Nights returns the number of nights covered by the interval.
// Zero or negative means the interval is invalid for booking.
func (iv StayInterval) Nights() int {
	return int(DateOnly(iv.Departure).Sub(DateOnly(iv.Arrival)) / (24 * time.Hour))
}

// IsValid reports whether the interval covers at least one night.
func (iv StayInterval) IsValid() bool {
	return !iv.Arrival.IsZero() && !iv.Departure.IsZero() && iv.Nights() >= 1
}

// Overlaps reports whether two half-open intervals intersect.
// Intervals sharing only a boundary day do not overlap: a guest may
// arrive on the same calendar day the previous guest departs.
func (iv StayInterval) Overlaps(other StayInterval) bool {
	return iv.Arrival.Before(other.Departure) && other.Arrival.Before(iv.Departure)
}

// Days enumerates the occupied dates: arrival inclusive, departure exclusive.
func (iv StayInterval) Days() []time.Time {
	if !iv.IsValid() {
		return nil
	}
	days := make([]time.Time, 0, iv.Nights())
	for d := DateOnly(iv.Arrival); d.Before(DateOnly(iv.Departure)); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Contains reports whether the interval occupies the given date.
func (iv StayInterval) Contains(date time.Time) bool {
	d := DateOnly(date)
	return !d.Before(DateOnly(iv.Arrival)) && d.Before(DateOnly(iv.Departure))
}

func (iv StayInterval) String() string {
	return fmt.Sprintf("[%s, %s)", iv.Arrival.Format(DateFormatISO), iv.Departure.Format(DateFormatISO))
}

// ParseISODate parses a YYYY-MM-DD date.
func ParseISODate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormatISO, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q; expected YYYY-MM-DD", s)
	}
	return DateOnly(t), nil
}

// ParseCZDate parses a DD.MM.YYYY date.
func ParseCZDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormatCZ, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q; expected DD.MM.YYYY", s)
	}
	return DateOnly(t), nil
}
