package service

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"penzion/internal/events"
	"penzion/internal/models"
	"penzion/internal/pricing"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) ExistingStays(ctx context.Context) ([]models.ExistingStay, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.ExistingStay), args.Error(1)
}

func (m *mockStore) ReservationExists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) GetReservation(ctx context.Context, id string) (*models.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}

func (m *mockStore) CommitReservation(ctx context.Context, res *models.Reservation, overwrite bool) error {
	return m.Called(ctx, res, overwrite).Error(0)
}

func (m *mockStore) DeleteReservation(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) Overview(ctx context.Context) ([]models.OverviewRow, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.OverviewRow), args.Error(1)
}

func (m *mockStore) CreateRequest(ctx context.Context, req *models.Request) error {
	return m.Called(ctx, req).Error(0)
}

func (m *mockStore) GetRequest(ctx context.Context, reqID string) (*models.Request, error) {
	args := m.Called(ctx, reqID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Request), args.Error(1)
}

func (m *mockStore) ListRequests(ctx context.Context, status string) ([]models.Request, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]models.Request), args.Error(1)
}

func (m *mockStore) UpdateRequestStatus(ctx context.Context, reqID, status string) error {
	return m.Called(ctx, reqID, status).Error(0)
}

func (m *mockStore) ReplaceParticipants(ctx context.Context, reservationID string, participants []models.Participant) error {
	return m.Called(ctx, reservationID, participants).Error(0)
}

func (m *mockStore) GetParticipants(ctx context.Context, reservationID string) ([]models.Participant, error) {
	args := m.Called(ctx, reservationID)
	return args.Get(0).([]models.Participant), args.Error(1)
}

type mockBus struct {
	mock.Mock
}

func (m *mockBus) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}

func testRates() *pricing.RateTable {
	return pricing.FromPairs([]pricing.RoomRate{
		{RoomType: "Apartma", Rate: pricing.Rate{StaffRate: 150, GuestRate: 250}},
		{RoomType: "Pokoj 1", Rate: pricing.Rate{StaffRate: 100, GuestRate: 200}},
	})
}

func testInterval(t *testing.T, arrival, departure string) models.StayInterval {
	t.Helper()
	a, err := models.ParseISODate(arrival)
	require.NoError(t, err)
	d, err := models.ParseISODate(departure)
	require.NoError(t, err)
	return models.StayInterval{Arrival: a, Departure: d}
}

func newBookingFixture(t *testing.T) (*BookingService, *mockStore, *mockBus) {
	t.Helper()
	store := new(mockStore)
	bus := new(mockBus)
	logger := zerolog.New(io.Discard)
	return NewBookingService(store, testRates(), bus, &logger), store, bus
}

func TestCommitPricesAndPersists(t *testing.T) {
	svc, store, bus := newBookingFixture(t)
	ctx := context.Background()

	res := models.NewGlobalReservation("RES-1", "Novak", testInterval(t, "2024-07-01", "2024-07-04"), []models.RoomLine{
		{Index: 0, RoomType: "Apartma", Staff: 2, Guests: 1},
		{Index: 1, RoomType: "Pokoj 1", Staff: 1},
	})

	store.On("CommitReservation", ctx, res, false).Return(nil).Once()
	bus.On("PublishJSON", events.TypeReservationCommitted, res).Return(nil).Once()

	require.NoError(t, svc.Commit(ctx, res, false))

	// (150*2 + 250*1) * 3 and 100*1 * 3, repriced before persisting.
	assert.Equal(t, 1650.0, res.Lines[0].Price)
	assert.Equal(t, 300.0, res.Lines[1].Price)
	store.AssertExpectations(t)
	bus.AssertExpectations(t)
}

func TestCommitCollectsAllValidationProblems(t *testing.T) {
	svc, store, _ := newBookingFixture(t)

	// No guest name, no rooms, invalid dates: all three reported at once.
	res := models.NewGlobalReservation("RES-1", "", testInterval(t, "2024-07-04", "2024-07-01"), nil)

	err := svc.Commit(context.Background(), res, false)
	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Len(t, validationErr.Problems, 3)
	store.AssertNotCalled(t, "CommitReservation", mock.Anything, mock.Anything, mock.Anything)
}

func TestCommitPerRoomValidatesEachLine(t *testing.T) {
	svc, _, _ := newBookingFixture(t)

	res := models.NewPerRoomReservation("RES-1", "Novak", []models.RoomLine{
		{Index: 0, RoomType: "Apartma", Interval: testInterval(t, "2024-07-01", "2024-07-03")},
		{Index: 1, RoomType: "Pokoj 1", Interval: testInterval(t, "2024-07-05", "2024-07-05")},
	})

	err := svc.Commit(context.Background(), res, false)
	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Len(t, validationErr.Problems, 1)
	assert.Contains(t, validationErr.Problems[0], "room 1")
}

func TestCommitPropagatesConflicts(t *testing.T) {
	svc, store, bus := newBookingFixture(t)
	ctx := context.Background()

	res := models.NewGlobalReservation("RES-1", "Novak", testInterval(t, "2024-07-01", "2024-07-04"), []models.RoomLine{
		{Index: 0, RoomType: "Apartma", Staff: 1},
	})
	conflictErr := &models.ConflictError{Conflicts: []models.Conflict{{RoomType: "Apartma", ExistingID: "RES-0"}}}
	store.On("CommitReservation", ctx, res, false).Return(conflictErr).Once()

	err := svc.Commit(ctx, res, false)
	var got *models.ConflictError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, "RES-0", got.Conflicts[0].ExistingID)
	bus.AssertNotCalled(t, "PublishJSON", mock.Anything, mock.Anything)
}

func TestDeleteReservationPublishesEvent(t *testing.T) {
	svc, store, bus := newBookingFixture(t)
	ctx := context.Background()

	store.On("DeleteReservation", ctx, "RES-1").Return(nil).Once()
	bus.On("PublishJSON", events.TypeReservationDeleted, mock.Anything).Return(nil).Once()

	require.NoError(t, svc.DeleteReservation(ctx, "RES-1"))
	bus.AssertExpectations(t)
}

func TestSaveParticipants(t *testing.T) {
	ctx := context.Background()

	t.Run("RepricesEachPerson", func(t *testing.T) {
		svc, store, _ := newBookingFixture(t)
		participants := []models.Participant{
			{PersonIndex: 0, Name: "Jan", IsEmployee: true, Nights: 3, RoomType: "Apartma", Price: 999},
			{PersonIndex: 1, Name: "Eva", IsEmployee: false, Nights: 3, RoomType: "Apartma"},
		}

		store.On("ReservationExists", ctx, "RES-1").Return(true, nil).Once()
		store.On("ReplaceParticipants", ctx, "RES-1", mock.MatchedBy(func(ps []models.Participant) bool {
			return ps[0].Price == 450 && ps[1].Price == 750
		})).Return(nil).Once()

		require.NoError(t, svc.SaveParticipants(ctx, "RES-1", participants))
		store.AssertExpectations(t)
	})

	t.Run("UnknownReservation", func(t *testing.T) {
		svc, store, _ := newBookingFixture(t)
		store.On("ReservationExists", ctx, "RES-404").Return(false, nil).Once()

		err := svc.SaveParticipants(ctx, "RES-404", nil)
		var notFound *models.NotFoundError
		assert.ErrorAs(t, err, &notFound)
	})

	t.Run("CollectsProblems", func(t *testing.T) {
		svc, store, _ := newBookingFixture(t)
		store.On("ReservationExists", ctx, "RES-1").Return(true, nil).Once()

		err := svc.SaveParticipants(ctx, "RES-1", []models.Participant{
			{PersonIndex: 0, Name: "", Nights: 0, RoomType: "Apartma"},
		})
		var validationErr *models.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Len(t, validationErr.Problems, 2)
	})
}
