package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"penzion/internal/events"
	"penzion/internal/metrics"
	"penzion/internal/models"
	"penzion/internal/pricing"
)

// BookingService is the transactional unit around one site's reservation
// store. It validates proposed bookings, prices their room lines from the
// site's rate table and drives the atomic commit.
type BookingService struct {
	store  ReservationStore
	rates  *pricing.RateTable
	bus    EventPublisher
	logger *zerolog.Logger
}

// NewBookingService wires a service for one site. The rate table is the
// site's current pricing revision; callers swap the whole service on reload.
func NewBookingService(store ReservationStore, rates *pricing.RateTable, bus EventPublisher, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		store:  store,
		rates:  rates,
		bus:    bus,
		logger: logger,
	}
}

// RateTable returns the rate table the service prices with.
func (s *BookingService) RateTable() *pricing.RateTable {
	return s.rates
}

// Commit validates and atomically persists a reservation.
//
// overwrite selects edit-in-place: prior rows under the same id are replaced
// and excluded from the conflict check. A fresh create additionally requires
// the id to be unused.
//
// Room-line prices are always recomputed from the current rate table before
// persisting; prices shown earlier to the caller are advisory.
func (s *BookingService) Commit(ctx context.Context, res *models.Reservation, overwrite bool) error {
	if err := validateBooking(res); err != nil {
		metrics.IncReservationRejected("validation")
		s.logger.Warn().Str("id", res.Header.ID).Err(err).Msg("Booking rejected by validation")
		return err
	}

	s.applyGlobalInterval(res)
	s.priceLines(res)

	if err := s.store.CommitReservation(ctx, res, overwrite); err != nil {
		var conflictErr *models.ConflictError
		switch {
		case errors.As(err, &conflictErr):
			metrics.IncReservationRejected("conflict")
			metrics.AddConflictsFound(len(conflictErr.Conflicts))
			s.logger.Warn().Str("id", res.Header.ID).Int("conflicts", len(conflictErr.Conflicts)).Msg("Booking rejected: rooms not available")
		case isDuplicateID(err):
			metrics.IncReservationRejected("duplicate_id")
		default:
			metrics.IncReservationRejected("store")
			s.logger.Error().Str("id", res.Header.ID).Err(err).Msg("Booking commit failed")
		}
		return err
	}

	metrics.IncReservationCommitted(res.Header.Mode.String())
	_ = s.bus.PublishJSON(events.TypeReservationCommitted, res)
	return nil
}

// GetReservation fetches a committed reservation by id.
func (s *BookingService) GetReservation(ctx context.Context, id string) (*models.Reservation, error) {
	return s.store.GetReservation(ctx, id)
}

// DeleteReservation removes a reservation with its rooms and participants.
func (s *BookingService) DeleteReservation(ctx context.Context, id string) error {
	if err := s.store.DeleteReservation(ctx, id); err != nil {
		return err
	}
	_ = s.bus.PublishJSON(events.TypeReservationDeleted, map[string]string{"id": id})
	return nil
}

// Overview returns the summarized reservation list.
func (s *BookingService) Overview(ctx context.Context) ([]models.OverviewRow, error) {
	return s.store.Overview(ctx)
}

// ExistingStays exposes committed stays for calendar rendering.
func (s *BookingService) ExistingStays(ctx context.Context) ([]models.ExistingStay, error) {
	return s.store.ExistingStays(ctx)
}

// SaveParticipants validates and replaces a reservation's per-person price
// breakdown. Each participant is repriced from the current rate table.
func (s *BookingService) SaveParticipants(ctx context.Context, reservationID string, participants []models.Participant) error {
	exists, err := s.store.ReservationExists(ctx, reservationID)
	if err != nil {
		return err
	}
	if !exists {
		return &models.NotFoundError{Kind: "reservation", ID: reservationID}
	}

	var problems []string
	for i := range participants {
		p := &participants[i]
		if p.Name == "" {
			problems = append(problems, fmt.Sprintf("participant %d: name is required", p.PersonIndex))
		}
		if p.Nights < 1 {
			problems = append(problems, fmt.Sprintf("participant %d: nights must be at least 1", p.PersonIndex))
		}
		p.Price = s.rates.ParticipantPrice(p.RoomType, p.IsEmployee, p.Nights)
	}
	if len(problems) > 0 {
		return &models.ValidationError{Problems: problems}
	}

	return s.store.ReplaceParticipants(ctx, reservationID, participants)
}

// GetParticipants returns a reservation's per-person breakdown.
func (s *BookingService) GetParticipants(ctx context.Context, reservationID string) ([]models.Participant, error) {
	return s.store.GetParticipants(ctx, reservationID)
}

// applyGlobalInterval copies the global interval onto every line in global
// mode so persisted rows and conflict checks see concrete dates.
func (s *BookingService) applyGlobalInterval(res *models.Reservation) {
	if res.Header.Mode != models.ModeGlobal {
		return
	}
	for i := range res.Lines {
		res.Lines[i].Interval = res.Header.GlobalInterval
	}
}

func (s *BookingService) priceLines(res *models.Reservation) {
	for i := range res.Lines {
		l := &res.Lines[i]
		l.Price = s.rates.Price(l.RoomType, l.Staff, l.Guests, l.Interval.Nights())
	}
}

// validateBooking checks structure and dates, collecting every problem
// before rejecting so the caller can show a complete error list.
func validateBooking(res *models.Reservation) error {
	var problems []string

	if res.Header.GuestName == "" {
		problems = append(problems, "guest name is required")
	}
	active := res.ActiveLines()
	if len(active) == 0 {
		problems = append(problems, "select at least one room")
	}

	switch res.Header.Mode {
	case models.ModeGlobal:
		if !res.Header.GlobalInterval.IsValid() {
			problems = append(problems, "departure must be after arrival (at least 1 night)")
		}
	case models.ModePerRoom:
		for _, l := range active {
			if !l.Interval.IsValid() {
				problems = append(problems, fmt.Sprintf("room %d (%s): departure must be after arrival (at least 1 night)", l.Index, l.RoomType))
			}
		}
	}

	if len(problems) > 0 {
		return &models.ValidationError{Problems: problems}
	}
	return nil
}

func isDuplicateID(err error) bool {
	var dup *models.DuplicateIDError
	return errors.As(err, &dup)
}
