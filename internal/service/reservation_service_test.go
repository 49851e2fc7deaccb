package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"fleetdesk/internal/availability"
	"fleetdesk/internal/events"
	"fleetdesk/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetVehicles(ctx context.Context) ([]models.Vehicle, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Vehicle), args.Error(1)
}

func (m *mockStore) GetReservations(ctx context.Context, date *models.Date) ([]models.Reservation, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Reservation), args.Error(1)
}

func (m *mockStore) CreateReservation(ctx context.Context, req models.ReservationRequest) (int64, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) DeleteReservation(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) CreateDrivingRecord(ctx context.Context, record models.DrivingRecord) error {
	return m.Called(ctx, record).Error(0)
}

type fakeMirror struct {
	mu    sync.Mutex
	dates []models.Date
}

func (f *fakeMirror) EnqueueSnapshot(_ context.Context, date models.Date) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dates = append(f.dates, date)
	return nil
}

func testLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func testRoster() []models.Vehicle {
	return []models.Vehicle{
		{ID: 1, Number: "100-A", Type: "sedan", Capacity: 5, Status: models.VehicleAvailable},
		{ID: 2, Number: "200-B", Type: "bus", Capacity: 29, Status: models.VehicleAvailable},
		{ID: 3, Number: "300-C", Type: "kei", Capacity: 4, Status: models.VehicleMaintenance},
	}
}

func testRequest() models.ReservationRequest {
	return models.ReservationRequest{
		VehicleID:  1,
		Date:       models.NewDate(2025, time.June, 10),
		StartTime:  models.NewTimeOfDay(9, 0),
		EndTime:    models.NewTimeOfDay(10, 0),
		UserName:   "Tanaka",
		Department: "sales",
		Passengers: 3,
	}
}

func TestCreateReservation(t *testing.T) {
	store := &mockStore{}
	mirror := &fakeMirror{}
	svc := NewReservationService(store, events.NewEventBus(), mirror, testLogger())

	req := testRequest()
	store.On("GetVehicles", mock.Anything).Return(testRoster(), nil)
	store.On("GetReservations", mock.Anything, &req.Date).Return([]models.Reservation{}, nil)
	store.On("CreateReservation", mock.Anything, req).Return(int64(42), nil)

	id, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, []models.Date{req.Date}, mirror.dates)
	store.AssertExpectations(t)
}

func TestCreateReservationConflict(t *testing.T) {
	store := &mockStore{}
	svc := NewReservationService(store, events.NewEventBus(), &fakeMirror{}, testLogger())

	req := testRequest()
	existing := []models.Reservation{{
		ID:        7,
		VehicleID: 1,
		Date:      req.Date,
		StartTime: models.NewTimeOfDay(9, 30),
		EndTime:   models.NewTimeOfDay(11, 0),
		Status:    models.StatusReserved,
	}}

	store.On("GetVehicles", mock.Anything).Return(testRoster(), nil)
	store.On("GetReservations", mock.Anything, &req.Date).Return(existing, nil)

	_, err := svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, ErrTimeConflict)
	store.AssertNotCalled(t, "CreateReservation", mock.Anything, mock.Anything)
}

func TestCreateReservationAbuttingAllowed(t *testing.T) {
	store := &mockStore{}
	svc := NewReservationService(store, events.NewEventBus(), &fakeMirror{}, testLogger())

	req := testRequest()
	// Ends exactly when the request starts: no conflict.
	existing := []models.Reservation{{
		ID:        7,
		VehicleID: 1,
		Date:      req.Date,
		StartTime: models.NewTimeOfDay(8, 0),
		EndTime:   models.NewTimeOfDay(9, 0),
		Status:    models.StatusReserved,
	}}

	store.On("GetVehicles", mock.Anything).Return(testRoster(), nil)
	store.On("GetReservations", mock.Anything, &req.Date).Return(existing, nil)
	store.On("CreateReservation", mock.Anything, req).Return(int64(8), nil)

	_, err := svc.Create(context.Background(), req)
	assert.NoError(t, err)
}

func TestCreateReservationValidation(t *testing.T) {
	store := &mockStore{}
	svc := NewReservationService(store, events.NewEventBus(), &fakeMirror{}, testLogger())
	store.On("GetVehicles", mock.Anything).Return(testRoster(), nil)

	t.Run("InvertedInterval", func(t *testing.T) {
		req := testRequest()
		req.StartTime = models.NewTimeOfDay(11, 0)
		_, err := svc.Create(context.Background(), req)
		assert.ErrorIs(t, err, availability.ErrInvalidInterval)
	})

	t.Run("UnknownVehicle", func(t *testing.T) {
		req := testRequest()
		req.VehicleID = 99
		_, err := svc.Create(context.Background(), req)
		assert.ErrorIs(t, err, ErrVehicleNotFound)
	})

	t.Run("MaintenanceVehicle", func(t *testing.T) {
		req := testRequest()
		req.VehicleID = 3
		_, err := svc.Create(context.Background(), req)
		assert.ErrorIs(t, err, ErrVehicleNotUsable)
	})

	t.Run("TooManyPassengers", func(t *testing.T) {
		req := testRequest()
		req.Passengers = 6
		_, err := svc.Create(context.Background(), req)
		assert.ErrorIs(t, err, availability.ErrCapacityExceeded)
	})
}

func TestAvailableVehiclesFiltersMaintenance(t *testing.T) {
	store := &mockStore{}
	svc := NewReservationService(store, events.NewEventBus(), &fakeMirror{}, testLogger())

	date := models.NewDate(2025, time.June, 10)
	store.On("GetVehicles", mock.Anything).Return(testRoster(), nil)
	store.On("GetReservations", mock.Anything, &date).Return([]models.Reservation{}, nil)

	iv := models.Interval{Start: models.NewTimeOfDay(9, 0), End: models.NewTimeOfDay(10, 0)}
	free, err := svc.AvailableVehicles(context.Background(), date, iv)
	require.NoError(t, err)

	// Vehicle 3 is in maintenance; never offered even with no reservations.
	require.Len(t, free, 2)
	assert.Equal(t, int64(1), free[0].ID)
	assert.Equal(t, int64(2), free[1].ID)
}

func TestSearchFiltersByType(t *testing.T) {
	store := &mockStore{}
	svc := NewReservationService(store, events.NewEventBus(), &fakeMirror{}, testLogger())

	date := models.NewDate(2025, time.June, 10)
	reservations := []models.Reservation{
		{ID: 1, VehicleID: 1, Date: date, StartTime: models.NewTimeOfDay(9, 0), EndTime: models.NewTimeOfDay(10, 0), Status: models.StatusReserved},
		{ID: 2, VehicleID: 2, Date: date, StartTime: models.NewTimeOfDay(9, 0), EndTime: models.NewTimeOfDay(10, 0), Status: models.StatusReserved},
		{ID: 3, VehicleID: 1, Date: date, StartTime: models.NewTimeOfDay(11, 0), EndTime: models.NewTimeOfDay(12, 0), Status: models.StatusCancelled},
		{ID: 4, VehicleID: 1, Date: date.AddDays(1), StartTime: models.NewTimeOfDay(9, 0), EndTime: models.NewTimeOfDay(10, 0), Status: models.StatusReserved},
	}

	store.On("GetVehicles", mock.Anything).Return(testRoster(), nil)
	store.On("GetReservations", mock.Anything, &date).Return(reservations, nil)

	result, err := svc.Search(context.Background(), date, "sedan")
	require.NoError(t, err)

	// Cancelled and other-date entries dropped, bus filtered out by type.
	require.Len(t, result, 1)
	assert.Equal(t, int64(1), result[0].ID)
}

func TestDeleteReservation(t *testing.T) {
	store := &mockStore{}
	mirror := &fakeMirror{}
	bus := events.NewEventBus()
	svc := NewReservationService(store, bus, mirror, testLogger())

	var deleted bool
	bus.Subscribe(events.EventReservationDeleted, func(_ *events.Event) error {
		deleted = true
		return nil
	})

	date := models.NewDate(2025, time.June, 10)
	existing := []models.Reservation{{ID: 7, VehicleID: 1, Date: date, Status: models.StatusReserved}}

	store.On("GetReservations", mock.Anything, (*models.Date)(nil)).Return(existing, nil)
	store.On("DeleteReservation", mock.Anything, int64(7)).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), 7))
	assert.True(t, deleted)
	assert.Equal(t, []models.Date{date}, mirror.dates)
}

func TestDeleteReservationNotFound(t *testing.T) {
	store := &mockStore{}
	svc := NewReservationService(store, events.NewEventBus(), &fakeMirror{}, testLogger())

	store.On("GetReservations", mock.Anything, (*models.Date)(nil)).Return([]models.Reservation{}, nil)

	err := svc.Delete(context.Background(), 99)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestCreateReservationStoreError(t *testing.T) {
	store := &mockStore{}
	svc := NewReservationService(store, events.NewEventBus(), &fakeMirror{}, testLogger())

	req := testRequest()
	store.On("GetVehicles", mock.Anything).Return(testRoster(), nil)
	store.On("GetReservations", mock.Anything, &req.Date).Return([]models.Reservation{}, nil)
	store.On("CreateReservation", mock.Anything, req).Return(int64(0), errors.New("store down"))

	_, err := svc.Create(context.Background(), req)
	assert.Error(t, err)
}
