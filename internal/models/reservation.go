package models

import "time"

// MaxRooms is the fixed number of room slots on a booking form.
const MaxRooms = 6

// DateMode selects how stay dates apply to the room lines of a booking.
type DateMode int

const (
	// ModeGlobal means all room lines share the booking's global interval.
	ModeGlobal DateMode = iota
	// ModePerRoom means every room line carries its own interval.
	ModePerRoom
)

func (m DateMode) String() string {
	if m == ModePerRoom {
		return "per-room"
	}
	return "global"
}

// RoomLine is one room slot of a booking. A line with an empty RoomType
// is an unused slot: it is never persisted and never conflict-checked.
type RoomLine struct {
	Index    int          `json:"room_idx"`
	RoomType string       `json:"room_type"`
	Staff    int          `json:"employees"`
	Guests   int          `json:"guests"`
	Interval StayInterval `json:"interval"`
	Price    float64      `json:"price"`
}

// IsEmpty reports whether the line is an unused slot.
func (l RoomLine) IsEmpty() bool {
	return l.RoomType == ""
}

// BookingHeader identifies a booking and its date mode.
// GlobalInterval is set iff Mode == ModeGlobal.
type BookingHeader struct {
	ID             string       `json:"id"`
	GuestName      string       `json:"guest_name"`
	Mode           DateMode     `json:"mode"`
	GlobalInterval StayInterval `json:"global_interval,omitempty"`
}

// Reservation is a committed booking: header plus ordered room lines.
// It is always persisted and replaced as a whole.
type Reservation struct {
	Header BookingHeader `json:"header"`
	Lines  []RoomLine    `json:"lines"`
}

// NewGlobalReservation builds a reservation whose lines all share one interval.
func NewGlobalReservation(id, guestName string, interval StayInterval, lines []RoomLine) *Reservation {
	for i := range lines {
		lines[i].Interval = interval
	}
	return &Reservation{
		Header: BookingHeader{
			ID:             id,
			GuestName:      guestName,
			Mode:           ModeGlobal,
			GlobalInterval: interval,
		},
		Lines: lines,
	}
}

// NewPerRoomReservation builds a reservation with independent per-line intervals.
func NewPerRoomReservation(id, guestName string, lines []RoomLine) *Reservation {
	return &Reservation{
		Header: BookingHeader{
			ID:        id,
			GuestName: guestName,
			Mode:      ModePerRoom,
		},
		Lines: lines,
	}
}

// ActiveLines returns the lines that carry a room type, in form order.
func (r *Reservation) ActiveLines() []RoomLine {
	active := make([]RoomLine, 0, len(r.Lines))
	for _, l := range r.Lines {
		if !l.IsEmpty() {
			active = append(active, l)
		}
	}
	return active
}

// TotalPrice sums the prices of the active room lines.
func (r *Reservation) TotalPrice() float64 {
	var total float64
	for _, l := range r.ActiveLines() {
		total += l.Price
	}
	return total
}

// ExistingStay is a committed room occupation used for conflict scanning.
type ExistingStay struct {
	ReservationID string
	RoomType      string
	Interval      StayInterval
}

// Conflict records one collision between a proposed stay and a committed one.
type Conflict struct {
	RoomType         string       `json:"room_type"`
	ExistingID       string       `json:"existing_id"`
	ExistingInterval StayInterval `json:"existing_interval"`
	ProposedInterval StayInterval `json:"proposed_interval"`
}

// Participant is one person of a reservation's per-person price breakdown.
type Participant struct {
	PersonIndex int     `json:"person_idx"`
	Name        string  `json:"name"`
	IsEmployee  bool    `json:"is_employee"`
	Nights      int     `json:"nights"`
	RoomType    string  `json:"room_type"`
	Price       float64 `json:"price"`
}

// OverviewRow is one reservation summarized for listings and export.
type OverviewRow struct {
	ID         string
	GuestName  string
	Arrival    time.Time
	Departure  time.Time
	Nights     int
	Mode       DateMode
	TotalPrice float64
	RoomCount  int
}
