package availability

import (
	"time"

	"penzion/internal/models"
)

// DayKey identifies one room type on one date.
type DayKey struct {
	RoomType string
	Date     time.Time
}

// OccupancyByDay expands committed stays into a per-day occupancy set.
// Arrival inclusive, departure exclusive. Invalid rows are skipped.
func OccupancyByDay(existing []models.ExistingStay) map[DayKey]bool {
	occ := make(map[DayKey]bool)
	for _, e := range existing {
		if e.RoomType == "" || !e.Interval.IsValid() {
			continue
		}
		for _, d := range e.Interval.Days() {
			occ[DayKey{RoomType: e.RoomType, Date: d}] = true
		}
	}
	return occ
}

// OccupantByDay maps each occupied day to the reservation holding it,
// for admin calendar tooltips. Later rows win on (impossible) duplicates.
func OccupantByDay(existing []models.ExistingStay) map[DayKey]string {
	m := make(map[DayKey]string)
	for _, e := range existing {
		if e.RoomType == "" || !e.Interval.IsValid() {
			continue
		}
		for _, d := range e.Interval.Days() {
			m[DayKey{RoomType: e.RoomType, Date: d}] = e.ReservationID
		}
	}
	return m
}

// MonthMatrix is the availability of every room type for one month:
// rows follow the given room-type order, one column per day of the month,
// true meaning free.
type MonthMatrix struct {
	Year      int
	Month     time.Month
	RoomTypes []string
	Days      []time.Time
	Free      [][]bool
}

// BuildMonthMatrix renders the per-day availability of a month from the
// occupancy set. Days with no committed stay are free.
func BuildMonthMatrix(roomTypes []string, year int, month time.Month, occ map[DayKey]bool) MonthMatrix {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	lastDay := first.AddDate(0, 1, -1).Day()

	days := make([]time.Time, 0, lastDay)
	for d := 1; d <= lastDay; d++ {
		days = append(days, time.Date(year, month, d, 0, 0, 0, 0, time.UTC))
	}

	free := make([][]bool, len(roomTypes))
	for i, rt := range roomTypes {
		row := make([]bool, len(days))
		for j, day := range days {
			row[j] = !occ[DayKey{RoomType: rt, Date: day}]
		}
		free[i] = row
	}

	return MonthMatrix{
		Year:      year,
		Month:     month,
		RoomTypes: append([]string(nil), roomTypes...),
		Days:      days,
		Free:      free,
	}
}
