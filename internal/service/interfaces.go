package service

import (
	"context"

	"penzion/internal/models"
)

// ReservationStore is the durable record of committed reservations and
// pending requests for one site.
type ReservationStore interface {
	ExistingStays(ctx context.Context) ([]models.ExistingStay, error)
	ReservationExists(ctx context.Context, id string) (bool, error)
	GetReservation(ctx context.Context, id string) (*models.Reservation, error)
	CommitReservation(ctx context.Context, res *models.Reservation, overwrite bool) error
	DeleteReservation(ctx context.Context, id string) error
	Overview(ctx context.Context) ([]models.OverviewRow, error)

	CreateRequest(ctx context.Context, req *models.Request) error
	GetRequest(ctx context.Context, reqID string) (*models.Request, error)
	ListRequests(ctx context.Context, status string) ([]models.Request, error)
	UpdateRequestStatus(ctx context.Context, reqID, status string) error

	ReplaceParticipants(ctx context.Context, reservationID string, participants []models.Participant) error
	GetParticipants(ctx context.Context, reservationID string) ([]models.Participant, error)
}

// EventPublisher publishes domain events after successful writes.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
