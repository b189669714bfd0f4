package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Booking and request ids are human-scannable: a Prague-local timestamp
// plus a short random suffix. Collisions are astronomically unlikely and
// additionally caught by the store's uniqueness check.

var pragueTZ = loadPrague()

func loadPrague() *time.Location {
	loc, err := time.LoadLocation("Europe/Prague")
	if err != nil {
		return time.Local
	}
	return loc
}

// NewBookingID generates an id like RES-20240701-153059-A1B2.
func NewBookingID() string {
	return newID("RES")
}

// NewRequestID generates an id like REQ-20240701-153059-A1B2.
func NewRequestID() string {
	return newID("REQ")
}

func newID(prefix string) string {
	ts := time.Now().In(pragueTZ).Format("20060102-150405")
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	return fmt.Sprintf("%s-%s-%s", prefix, ts, suffix)
}
