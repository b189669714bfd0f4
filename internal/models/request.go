package models

import (
	"encoding/json"
	"time"
)

// Request statuses. Transitions are free in the state machine; in practice
// they are one-way and promotion always ends in StatusFulfilled.
const (
	StatusNew       = "new"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusFulfilled = "fulfilled"
)

// KnownStatus reports whether s is one of the request statuses.
func KnownStatus(s string) bool {
	switch s {
	case StatusNew, StatusApproved, StatusRejected, StatusFulfilled:
		return true
	}
	return false
}

// Request is a pending stay inquiry awaiting a staff decision.
// Arrival/Departure summarize the room list: the global interval in global
// mode, or min arrival / max departure across rooms in per-room mode.
type Request struct {
	ReqID     string     `json:"req_id"`
	GuestName string     `json:"guest_name"`
	Contact   string     `json:"contact"`
	Arrival   time.Time  `json:"arrival"`
	Departure time.Time  `json:"departure"`
	Nights    int        `json:"nights"`
	People    int        `json:"people"`
	PerRoom   bool       `json:"per_room"`
	Rooms     []RoomLine `json:"rooms"`
	Status    string     `json:"status"`
	Note      string     `json:"note"`
	CreatedAt time.Time  `json:"created_at"`

	// RoomsRaw is the stored room-list JSON as read back from the store.
	// Promotion decodes it strictly; a corrupt payload fails promotion,
	// not listing.
	RoomsRaw json.RawMessage `json:"-"`
}

// SummaryInterval derives the request's summarized interval from its rooms.
func SummaryInterval(lines []RoomLine) StayInterval {
	var iv StayInterval
	for _, l := range lines {
		if l.IsEmpty() || !l.Interval.IsValid() {
			continue
		}
		if iv.Arrival.IsZero() || l.Interval.Arrival.Before(iv.Arrival) {
			iv.Arrival = l.Interval.Arrival
		}
		if l.Interval.Departure.After(iv.Departure) {
			iv.Departure = l.Interval.Departure
		}
	}
	return iv
}
