package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"penzion/internal/availability"
	"penzion/internal/metrics"
	"penzion/internal/models"
)

// MaxAvailabilityDaysRange is the maximum number of days allowed in an
// availability request.
const MaxAvailabilityDaysRange = 90

// AvailabilityRequest is the request body for POST /api/availability.
type AvailabilityRequest struct {
	Site      string   `json:"site"`
	StartDate string   `json:"start_date"`           // Format: YYYY-MM-DD
	EndDate   string   `json:"end_date"`             // Format: YYYY-MM-DD
	RoomTypes []string `json:"room_types,omitempty"` // Optional: filter by room type
}

// DateAvailability represents availability of one room type on one date.
type DateAvailability struct {
	Date      string `json:"date"`
	Available bool   `json:"available"`
}

// RoomTypeAvailability represents a room type with its per-date availability.
type RoomTypeAvailability struct {
	RoomType     string             `json:"room_type"`
	Availability []DateAvailability `json:"availability"`
}

// AvailabilityResponse is the response for POST /api/availability.
type AvailabilityResponse struct {
	Site   string                 `json:"site"`
	Rooms  []RoomTypeAvailability `json:"rooms"`
	Period struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"period"`
}

// handleAvailability returns the per-day availability of room types.
// POST /api/availability
func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("availability")

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}

	var req AvailabilityRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	site, ok := s.site(req.Site)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown site")
		return
	}

	start, end, err := validateAvailabilityRange(req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(r.Context(), req); ok {
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	roomTypes := req.RoomTypes
	if len(roomTypes) == 0 {
		roomTypes = site.Booking.RateTable().RoomTypes()
	}

	stays, err := site.Booking.ExistingStays(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Availability scan failed")
		writeError(w, http.StatusInternalServerError, "availability scan failed")
		return
	}
	occ := availability.OccupancyByDay(stays)

	response := AvailabilityResponse{Site: req.Site}
	response.Period.Start = req.StartDate
	response.Period.End = req.EndDate
	for _, rt := range roomTypes {
		days := make([]DateAvailability, 0, MaxAvailabilityDaysRange)
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			days = append(days, DateAvailability{
				Date:      d.Format(models.DateFormatISO),
				Available: !occ[availability.DayKey{RoomType: rt, Date: d}],
			})
		}
		response.Rooms = append(response.Rooms, RoomTypeAvailability{
			RoomType:     rt,
			Availability: days,
		})
	}

	if s.cache != nil {
		s.cache.Set(r.Context(), req, response)
	}
	writeJSON(w, http.StatusOK, response)
}

func validateAvailabilityRange(startStr, endStr string) (start, end time.Time, err error) {
	if startStr == "" || endStr == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("start_date and end_date are required")
	}

	start, err = models.ParseISODate(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date format; expected YYYY-MM-DD")
	}
	end, err = models.ParseISODate(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date format; expected YYYY-MM-DD")
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("start_date must be before or equal to end_date")
	}
	if int(end.Sub(start).Hours()/24) > MaxAvailabilityDaysRange {
		return time.Time{}, time.Time{}, fmt.Errorf("date range exceeds maximum of %d days", MaxAvailabilityDaysRange)
	}
	return start, end, nil
}

// availabilityCache keeps rendered availability responses in redis for a
// short TTL. Stale reads are acceptable: the next render corrects them and
// commits never consult this cache.
type availabilityCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func newAvailabilityCache(rdb *redis.Client, ttl time.Duration) *availabilityCache {
	return &availabilityCache{rdb: rdb, ttl: ttl}
}

func (c *availabilityCache) key(req AvailabilityRequest) string {
	return fmt.Sprintf("penzion:availability:%s:%s:%s:%v", req.Site, req.StartDate, req.EndDate, req.RoomTypes)
}

func (c *availabilityCache) Get(ctx context.Context, req AvailabilityRequest) (AvailabilityResponse, bool) {
	var resp AvailabilityResponse
	data, err := c.rdb.Get(ctx, c.key(req)).Bytes()
	if err != nil {
		return resp, false
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return resp, false
	}
	return resp, true
}

func (c *availabilityCache) Set(ctx context.Context, req AvailabilityRequest, resp AvailabilityResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, c.key(req), data, c.ttl).Err()
}
