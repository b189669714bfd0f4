// Package pricing computes room-stay prices from a per-site rate table.
package pricing

// Rate holds the per-night rates of one room type for the two occupant
// classes: employees of the owning organization and their guests.
type Rate struct {
	StaffRate float64
	GuestRate float64
}

// RateTable maps a room-type label to its nightly rates. It is immutable
// after load; reload produces a new table.
type RateTable struct {
	order []string
	rates map[string]Rate
}

// NewRateTable builds a table preserving room-type order.
func NewRateTable() *RateTable {
	return &RateTable{rates: make(map[string]Rate)}
}

func (t *RateTable) add(roomType string, r Rate) {
	if _, ok := t.rates[roomType]; !ok {
		t.order = append(t.order, roomType)
	}
	t.rates[roomType] = r
}

// RoomRate pairs a room-type label with its rates.
type RoomRate struct {
	RoomType string
	Rate     Rate
}

// FromPairs builds a table from explicit pairs, preserving order. Used for
// fixtures; production tables come from Load.
func FromPairs(pairs []RoomRate) *RateTable {
	table := NewRateTable()
	for _, p := range pairs {
		table.add(p.RoomType, p.Rate)
	}
	return table
}

// RoomTypes returns the room-type labels in load order.
func (t *RateTable) RoomTypes() []string {
	return append([]string(nil), t.order...)
}

// Rate returns the rates for a room type, if known.
func (t *RateTable) Rate(roomType string) (Rate, bool) {
	r, ok := t.rates[roomType]
	return r, ok
}

// Price computes the cost of one room line:
// (staff_rate*staff + guest_rate*guests) * nights.
// Unknown room type, empty room type or nights <= 0 price as 0 so an
// incomplete form line never blocks the rest of the booking from pricing.
func (t *RateTable) Price(roomType string, staff, guests, nights int) float64 {
	if roomType == "" || nights <= 0 {
		return 0
	}
	r, ok := t.rates[roomType]
	if !ok {
		return 0
	}
	return (r.StaffRate*float64(staff) + r.GuestRate*float64(guests)) * float64(nights)
}

// ParticipantPrice computes one person's share for the per-person voucher
// breakdown: a single occupant's nightly rate times nights. Same
// zero-on-missing-data contract as Price.
func (t *RateTable) ParticipantPrice(roomType string, isStaff bool, nights int) float64 {
	if roomType == "" || nights <= 0 {
		return 0
	}
	r, ok := t.rates[roomType]
	if !ok {
		return 0
	}
	if isStaff {
		return r.StaffRate * float64(nights)
	}
	return r.GuestRate * float64(nights)
}
