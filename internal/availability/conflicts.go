// Package availability decides whether proposed room stays collide with
// committed reservations.
//
// Exclusivity is tracked per room-type label, not per physical room unit:
// the sites run one unit of each type, so any two overlapping stays of the
// same type are a conflict.
package availability

import "penzion/internal/models"

// ProposedStay is one room line of a booking under validation.
type ProposedStay struct {
	RoomType string
	Interval models.StayInterval
}

// FindConflicts scans committed stays for overlaps with the proposed ones.
//
// Proposed entries with an empty room type or an invalid interval are
// skipped: they are never persisted, so they cannot conflict. Existing rows
// belonging to excludeID are ignored so an edit-in-place does not collide
// with the reservation's own prior rows.
//
// The result is exhaustive: every colliding pair is reported, not just the
// first, so the caller can resolve all collisions in one pass.
func FindConflicts(proposed []ProposedStay, existing []models.ExistingStay, excludeID string) []models.Conflict {
	var conflicts []models.Conflict
	for _, p := range proposed {
		if p.RoomType == "" || !p.Interval.IsValid() {
			continue
		}
		for _, e := range existing {
			if e.RoomType != p.RoomType {
				continue
			}
			if excludeID != "" && e.ReservationID == excludeID {
				continue
			}
			if !e.Interval.IsValid() {
				continue
			}
			if p.Interval.Overlaps(e.Interval) {
				conflicts = append(conflicts, models.Conflict{
					RoomType:         p.RoomType,
					ExistingID:       e.ReservationID,
					ExistingInterval: e.Interval,
					ProposedInterval: p.Interval,
				})
			}
		}
	}
	return conflicts
}

// ProposedFromLines converts a booking's room lines to proposed stays.
// Empty slots are carried through and filtered by FindConflicts.
func ProposedFromLines(lines []models.RoomLine) []ProposedStay {
	proposed := make([]ProposedStay, 0, len(lines))
	for _, l := range lines {
		proposed = append(proposed, ProposedStay{RoomType: l.RoomType, Interval: l.Interval})
	}
	return proposed
}
