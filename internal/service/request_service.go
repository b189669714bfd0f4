package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"penzion/internal/events"
	"penzion/internal/metrics"
	"penzion/internal/models"
)

// RequestService handles the pending-request side: public submission,
// staff decisions and promotion into a committed reservation.
type RequestService struct {
	store   ReservationStore
	booking *BookingService
	bus     EventPublisher
	logger  *zerolog.Logger
}

// NewRequestService wires the request workflow for one site.
func NewRequestService(store ReservationStore, booking *BookingService, bus EventPublisher, logger *zerolog.Logger) *RequestService {
	return &RequestService{
		store:   store,
		booking: booking,
		bus:     bus,
		logger:  logger,
	}
}

// SubmitRequest validates and stores a new stay request. The summarized
// interval and occupant total are derived from the room list.
func (s *RequestService) SubmitRequest(ctx context.Context, req *models.Request) (string, error) {
	var problems []string
	if req.GuestName == "" {
		problems = append(problems, "guest name is required")
	}
	if req.Contact == "" {
		problems = append(problems, "contact is required")
	}

	summary := models.SummaryInterval(req.Rooms)
	if summary.Arrival.IsZero() {
		// No per-room dates: the request carries a single global interval.
		summary = models.StayInterval{Arrival: req.Arrival, Departure: req.Departure}
	}
	if !summary.IsValid() {
		problems = append(problems, "departure must be after arrival (at least 1 night)")
	}
	if len(problems) > 0 {
		return "", &models.ValidationError{Problems: problems}
	}

	req.ReqID = NewRequestID()
	req.Arrival = summary.Arrival
	req.Departure = summary.Departure
	req.Nights = summary.Nights()
	req.Status = models.StatusNew
	req.CreatedAt = time.Now().In(pragueTZ)
	if req.People == 0 {
		for _, l := range req.Rooms {
			req.People += l.Staff + l.Guests
		}
	}

	if err := s.store.CreateRequest(ctx, req); err != nil {
		return "", err
	}

	metrics.IncRequestCreated()
	_ = s.bus.PublishJSON(events.TypeRequestCreated, req)
	return req.ReqID, nil
}

// GetRequest fetches a request by id.
func (s *RequestService) GetRequest(ctx context.Context, reqID string) (*models.Request, error) {
	return s.store.GetRequest(ctx, reqID)
}

// ListRequests returns requests, optionally filtered by status.
func (s *RequestService) ListRequests(ctx context.Context, status string) ([]models.Request, error) {
	return s.store.ListRequests(ctx, status)
}

// UpdateRequestStatus records a staff decision. Any known status is
// accepted; the workflow is one-way by convention, not enforcement.
func (s *RequestService) UpdateRequestStatus(ctx context.Context, reqID, status string) error {
	if !models.KnownStatus(status) {
		return &models.ValidationError{Problems: []string{"unknown status " + status}}
	}
	return s.store.UpdateRequestStatus(ctx, reqID, status)
}

// PromoteRequest converts a pending request into a committed reservation.
//
// The stored room list is decoded strictly, every line is repriced from the
// site's current rate table (never a price the requester saw), and the
// booking goes through the same conflict-checked commit path as a staff
// booking. Only after a successful commit is the request marked fulfilled;
// a rejected promotion leaves both the request and the store untouched.
func (s *RequestService) PromoteRequest(ctx context.Context, reqID string) (string, error) {
	req, err := s.store.GetRequest(ctx, reqID)
	if err != nil {
		return "", err
	}

	lines, err := decodeRoomList(req)
	if err != nil {
		metrics.IncRequestPromoted("invalid_data")
		s.logger.Warn().Str("req_id", reqID).Err(err).Msg("Promotion failed: stored room list unreadable")
		return "", err
	}

	bookingID := NewBookingID()
	var res *models.Reservation
	if req.PerRoom {
		res = models.NewPerRoomReservation(bookingID, req.GuestName, lines)
	} else {
		interval := models.StayInterval{Arrival: req.Arrival, Departure: req.Departure}
		res = models.NewGlobalReservation(bookingID, req.GuestName, interval, lines)
	}

	if err := s.booking.Commit(ctx, res, false); err != nil {
		metrics.IncRequestPromoted("rejected")
		return "", err
	}

	if err := s.store.UpdateRequestStatus(ctx, reqID, models.StatusFulfilled); err != nil {
		// The reservation is committed; report the status update failure
		// rather than pretending the promotion failed.
		s.logger.Error().Str("req_id", reqID).Str("booking_id", bookingID).Err(err).Msg("Promoted but could not mark request fulfilled")
		return bookingID, err
	}

	metrics.IncRequestPromoted("committed")
	_ = s.bus.PublishJSON(events.TypeRequestPromoted, map[string]string{
		"req_id":     reqID,
		"booking_id": bookingID,
	})
	s.logger.Info().Str("req_id", reqID).Str("booking_id", bookingID).Msg("Request promoted")
	return bookingID, nil
}

func decodeRoomList(req *models.Request) ([]models.RoomLine, error) {
	if len(req.RoomsRaw) == 0 {
		if len(req.Rooms) == 0 {
			return nil, &models.ValidationError{Problems: []string{"request has no room list"}}
		}
		return req.Rooms, nil
	}
	var lines []models.RoomLine
	if err := json.Unmarshal(req.RoomsRaw, &lines); err != nil {
		return nil, &models.ValidationError{Problems: []string{"stored room list cannot be parsed"}}
	}
	if len(lines) == 0 {
		return nil, &models.ValidationError{Problems: []string{"request has no room list"}}
	}
	return lines, nil
}
