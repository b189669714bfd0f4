package service

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"penzion/internal/events"
	"penzion/internal/models"
)

func newRequestFixture(t *testing.T) (*RequestService, *mockStore, *mockBus) {
	t.Helper()
	store := new(mockStore)
	bus := new(mockBus)
	logger := zerolog.New(io.Discard)
	booking := NewBookingService(store, testRates(), bus, &logger)
	return NewRequestService(store, booking, bus, &logger), store, bus
}

func TestSubmitRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("DerivesSummaryFromRooms", func(t *testing.T) {
		svc, store, bus := newRequestFixture(t)
		req := &models.Request{
			GuestName: "Novak",
			Contact:   "novak@example.com",
			Rooms: []models.RoomLine{
				{Index: 0, RoomType: "Apartma", Staff: 2, Interval: testInterval(t, "2024-07-02", "2024-07-05")},
				{Index: 1, RoomType: "Pokoj 1", Guests: 1, Interval: testInterval(t, "2024-07-01", "2024-07-04")},
			},
		}

		store.On("CreateRequest", ctx, req).Return(nil).Once()
		bus.On("PublishJSON", events.TypeRequestCreated, req).Return(nil).Once()

		reqID, err := svc.SubmitRequest(ctx, req)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(reqID, "REQ-"))
		assert.Equal(t, testInterval(t, "2024-07-01", "2024-07-05"), models.StayInterval{Arrival: req.Arrival, Departure: req.Departure})
		assert.Equal(t, 4, req.Nights)
		assert.Equal(t, 3, req.People, "derived from occupants")
		assert.Equal(t, models.StatusNew, req.Status)
		store.AssertExpectations(t)
	})

	t.Run("CollectsValidationProblems", func(t *testing.T) {
		svc, store, _ := newRequestFixture(t)
		req := &models.Request{
			Arrival:   testInterval(t, "2024-07-05", "2024-07-01").Arrival,
			Departure: testInterval(t, "2024-07-05", "2024-07-01").Departure,
		}

		_, err := svc.SubmitRequest(ctx, req)
		var validationErr *models.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Len(t, validationErr.Problems, 3)
		store.AssertNotCalled(t, "CreateRequest", mock.Anything, mock.Anything)
	})
}

func TestUpdateRequestStatus(t *testing.T) {
	svc, store, _ := newRequestFixture(t)
	ctx := context.Background()

	store.On("UpdateRequestStatus", ctx, "REQ-1", models.StatusApproved).Return(nil).Once()
	require.NoError(t, svc.UpdateRequestStatus(ctx, "REQ-1", models.StatusApproved))

	err := svc.UpdateRequestStatus(ctx, "REQ-1", "maybe")
	var validationErr *models.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	store.AssertExpectations(t)
}

func storedRequest(t *testing.T, perRoom bool) *models.Request {
	t.Helper()
	rooms := []models.RoomLine{
		{Index: 0, RoomType: "Apartma", Staff: 2, Guests: 1, Interval: testInterval(t, "2024-07-01", "2024-07-04")},
	}
	raw, err := json.Marshal(rooms)
	require.NoError(t, err)
	return &models.Request{
		ReqID:     "REQ-1",
		GuestName: "Novak",
		Contact:   "novak@example.com",
		Arrival:   testInterval(t, "2024-07-01", "2024-07-04").Arrival,
		Departure: testInterval(t, "2024-07-01", "2024-07-04").Departure,
		Nights:    3,
		PerRoom:   perRoom,
		Rooms:     rooms,
		RoomsRaw:  raw,
		Status:    models.StatusApproved,
	}
}

func TestPromoteRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("CommitsAndMarksFulfilled", func(t *testing.T) {
		svc, store, bus := newRequestFixture(t)
		store.On("GetRequest", ctx, "REQ-1").Return(storedRequest(t, false), nil).Once()

		var committed *models.Reservation
		store.On("CommitReservation", ctx, mock.Anything, false).Run(func(args mock.Arguments) {
			committed = args.Get(1).(*models.Reservation)
		}).Return(nil).Once()
		store.On("UpdateRequestStatus", ctx, "REQ-1", models.StatusFulfilled).Return(nil).Once()
		bus.On("PublishJSON", mock.Anything, mock.Anything).Return(nil)

		bookingID, err := svc.PromoteRequest(ctx, "REQ-1")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(bookingID, "RES-"))

		require.NotNil(t, committed)
		assert.Equal(t, models.ModeGlobal, committed.Header.Mode)
		assert.Equal(t, "Novak", committed.Header.GuestName)
		// Repriced from the current rate table: (150*2 + 250*1) * 3.
		assert.Equal(t, 1650.0, committed.Lines[0].Price)
		store.AssertExpectations(t)
	})

	t.Run("PerRoomKeepsLineIntervals", func(t *testing.T) {
		svc, store, bus := newRequestFixture(t)
		store.On("GetRequest", ctx, "REQ-1").Return(storedRequest(t, true), nil).Once()

		var committed *models.Reservation
		store.On("CommitReservation", ctx, mock.Anything, false).Run(func(args mock.Arguments) {
			committed = args.Get(1).(*models.Reservation)
		}).Return(nil).Once()
		store.On("UpdateRequestStatus", ctx, "REQ-1", models.StatusFulfilled).Return(nil).Once()
		bus.On("PublishJSON", mock.Anything, mock.Anything).Return(nil)

		_, err := svc.PromoteRequest(ctx, "REQ-1")
		require.NoError(t, err)
		require.NotNil(t, committed)
		assert.Equal(t, models.ModePerRoom, committed.Header.Mode)
		assert.Equal(t, testInterval(t, "2024-07-01", "2024-07-04"), committed.Lines[0].Interval)
	})

	t.Run("ConflictLeavesRequestUntouched", func(t *testing.T) {
		svc, store, _ := newRequestFixture(t)
		store.On("GetRequest", ctx, "REQ-1").Return(storedRequest(t, false), nil).Once()
		conflictErr := &models.ConflictError{Conflicts: []models.Conflict{{RoomType: "Apartma", ExistingID: "RES-0"}}}
		store.On("CommitReservation", ctx, mock.Anything, false).Return(conflictErr).Once()

		_, err := svc.PromoteRequest(ctx, "REQ-1")
		var got *models.ConflictError
		require.ErrorAs(t, err, &got)
		store.AssertNotCalled(t, "UpdateRequestStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("CorruptRoomList", func(t *testing.T) {
		svc, store, _ := newRequestFixture(t)
		req := storedRequest(t, false)
		req.RoomsRaw = json.RawMessage("not json")
		store.On("GetRequest", ctx, "REQ-1").Return(req, nil).Once()

		_, err := svc.PromoteRequest(ctx, "REQ-1")
		var validationErr *models.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Contains(t, validationErr.Problems[0], "cannot be parsed")
		store.AssertNotCalled(t, "CommitReservation", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("EmptyRoomList", func(t *testing.T) {
		svc, store, _ := newRequestFixture(t)
		req := storedRequest(t, false)
		req.RoomsRaw = json.RawMessage("[]")
		req.Rooms = nil
		store.On("GetRequest", ctx, "REQ-1").Return(req, nil).Once()

		_, err := svc.PromoteRequest(ctx, "REQ-1")
		var validationErr *models.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Contains(t, validationErr.Problems[0], "no room list")
	})

	t.Run("UnknownRequest", func(t *testing.T) {
		svc, store, _ := newRequestFixture(t)
		store.On("GetRequest", ctx, "REQ-404").Return(nil, &models.NotFoundError{Kind: "request", ID: "REQ-404"}).Once()

		_, err := svc.PromoteRequest(ctx, "REQ-404")
		var notFound *models.NotFoundError
		assert.ErrorAs(t, err, &notFound)
	})
}
