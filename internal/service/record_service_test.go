package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fleetdesk/internal/events"
	"fleetdesk/internal/models"
	"fleetdesk/internal/triplog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeStaging struct {
	mu    sync.Mutex
	slots map[string]*models.Departure
}

func newFakeStaging() *fakeStaging {
	return &fakeStaging{slots: make(map[string]*models.Departure)}
}

func (f *fakeStaging) GetDeparture(_ context.Context, sessionID string) (*models.Departure, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.slots[sessionID], nil
}

func (f *fakeStaging) SetDeparture(_ context.Context, sessionID string, dep *models.Departure) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slots[sessionID] = dep
	return nil
}

func (f *fakeStaging) ClearDeparture(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.slots, sessionID)
	return nil
}

type mockJournal struct {
	mock.Mock
}

func (m *mockJournal) AppendRecord(ctx context.Context, record models.DrivingRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *mockJournal) MonthlyDistance(ctx context.Context, date models.Date) (int64, error) {
	args := m.Called(ctx, date)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockJournal) AverageFuelEconomy(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

func (m *mockJournal) RecordCount(ctx context.Context, date models.Date) (int64, error) {
	args := m.Called(ctx, date)
	return args.Get(0).(int64), args.Error(1)
}

type stubNotifier struct {
	mu    sync.Mutex
	texts []string
}

func (s *stubNotifier) Notify(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
	return nil
}

func cleanDeparture() models.Departure {
	return models.Departure{
		VehicleID:        1,
		Date:             models.NewDate(2025, time.June, 10),
		Weather:          "sunny",
		VehicleCondition: "good",
		StartTime:        models.NewTimeOfDay(8, 30),
		Destination:      "city office",
		StartMeter:       12000,
		Passengers:       2,
		DriverName:       "Tanaka",
		BeforeCheck: models.SobrietyCheck{
			CheckerType: "safety_manager",
			CheckerName: "Sato",
			Method:      "in_person",
			Presence:    models.AlcoholAbsent,
		},
	}
}

func cleanArrival() models.Arrival {
	return models.Arrival{
		EndTime:   models.NewTimeOfDay(17, 0),
		EndMeter:  12042,
		Gasoline:  10,
		FuelLevel: 5,
		AfterCheck: models.SobrietyCheck{
			CheckerType: "safety_manager",
			CheckerName: "Sato",
			Method:      "in_person",
			Presence:    models.AlcoholAbsent,
		},
	}
}

func newRecordService(store *mockStore, journal *mockJournal, staging *fakeStaging, notifier *stubNotifier) (*RecordService, *events.EventBus) {
	bus := events.NewEventBus()
	svc := NewRecordService(staging, store, journal, bus, notifier, testLogger())
	return svc, bus
}

func TestStageDeparture(t *testing.T) {
	staging := newFakeStaging()
	svc, _ := newRecordService(&mockStore{}, &mockJournal{}, staging, &stubNotifier{})

	ctx := context.Background()
	require.NoError(t, svc.StageDeparture(ctx, "sess-1", cleanDeparture(), false))

	pending, err := svc.PendingDeparture(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, int64(1), pending.VehicleID)
}

func TestStageDepartureAlcoholGate(t *testing.T) {
	staging := newFakeStaging()
	svc, _ := newRecordService(&mockStore{}, &mockJournal{}, staging, &stubNotifier{})
	ctx := context.Background()

	dep := cleanDeparture()
	dep.BeforeCheck.AlcoholLevel = 0.05

	err := svc.StageDeparture(ctx, "sess-1", dep, false)
	assert.ErrorIs(t, err, triplog.ErrConfirmationRequired)

	pending, _ := svc.PendingDeparture(ctx, "sess-1")
	assert.Nil(t, pending)

	// Explicit confirmation lets it through.
	require.NoError(t, svc.StageDeparture(ctx, "sess-1", dep, true))
	pending, _ = svc.PendingDeparture(ctx, "sess-1")
	assert.NotNil(t, pending)
}

func TestStageDepartureOverwrites(t *testing.T) {
	staging := newFakeStaging()
	svc, _ := newRecordService(&mockStore{}, &mockJournal{}, staging, &stubNotifier{})
	ctx := context.Background()

	first := cleanDeparture()
	require.NoError(t, svc.StageDeparture(ctx, "sess-1", first, false))

	second := cleanDeparture()
	second.VehicleID = 2
	require.NoError(t, svc.StageDeparture(ctx, "sess-1", second, false))

	pending, err := svc.PendingDeparture(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), pending.VehicleID)
}

func TestCompleteArrival(t *testing.T) {
	store := &mockStore{}
	journal := &mockJournal{}
	staging := newFakeStaging()
	svc, bus := newRecordService(store, journal, staging, &stubNotifier{})
	ctx := context.Background()

	var completed bool
	bus.Subscribe(events.EventRecordCompleted, func(_ *events.Event) error {
		completed = true
		return nil
	})

	store.On("CreateDrivingRecord", mock.Anything, mock.Anything).Return(nil)
	journal.On("AppendRecord", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, svc.StageDeparture(ctx, "sess-1", cleanDeparture(), false))

	record, warn, err := svc.CompleteArrival(ctx, "sess-1", cleanArrival(), nil)
	require.NoError(t, err)
	assert.False(t, warn)
	assert.True(t, completed)

	require.NotNil(t, record.DistanceKm)
	assert.Equal(t, int64(42), *record.DistanceKm)
	assert.Equal(t, "Tuesday", record.DayOfWeek)
	assert.Nil(t, record.ReservationID)

	// Slot cleared after a successful submit.
	pending, _ := svc.PendingDeparture(ctx, "sess-1")
	assert.Nil(t, pending)
}

func TestCompleteArrivalWithoutDeparture(t *testing.T) {
	svc, _ := newRecordService(&mockStore{}, &mockJournal{}, newFakeStaging(), &stubNotifier{})

	_, _, err := svc.CompleteArrival(context.Background(), "sess-1", cleanArrival(), nil)
	assert.ErrorIs(t, err, triplog.ErrNoPendingDeparture)
}

func TestCompleteArrivalBadFuelLevel(t *testing.T) {
	staging := newFakeStaging()
	svc, _ := newRecordService(&mockStore{}, &mockJournal{}, staging, &stubNotifier{})
	ctx := context.Background()

	require.NoError(t, svc.StageDeparture(ctx, "sess-1", cleanDeparture(), false))

	arr := cleanArrival()
	arr.FuelLevel = 9
	_, _, err := svc.CompleteArrival(ctx, "sess-1", arr, nil)
	assert.ErrorIs(t, err, triplog.ErrInvalidFuelLevel)

	// Slot untouched on validation failure.
	pending, _ := svc.PendingDeparture(ctx, "sess-1")
	assert.NotNil(t, pending)
}

func TestCompleteArrivalSubmitFailureKeepsSlot(t *testing.T) {
	store := &mockStore{}
	staging := newFakeStaging()
	svc, _ := newRecordService(store, &mockJournal{}, staging, &stubNotifier{})
	ctx := context.Background()

	store.On("CreateDrivingRecord", mock.Anything, mock.Anything).Return(errors.New("store down"))

	require.NoError(t, svc.StageDeparture(ctx, "sess-1", cleanDeparture(), false))

	_, _, err := svc.CompleteArrival(ctx, "sess-1", cleanArrival(), nil)
	require.Error(t, err)

	// Retry must still find the departure.
	pending, _ := svc.PendingDeparture(ctx, "sess-1")
	assert.NotNil(t, pending)
}

func TestCompleteArrivalAlcoholWarning(t *testing.T) {
	store := &mockStore{}
	journal := &mockJournal{}
	staging := newFakeStaging()
	notifier := &stubNotifier{}
	svc, bus := newRecordService(store, journal, staging, notifier)
	ctx := context.Background()

	var alarmed bool
	bus.Subscribe(events.EventAlcoholDetected, func(_ *events.Event) error {
		alarmed = true
		return nil
	})

	store.On("CreateDrivingRecord", mock.Anything, mock.Anything).Return(nil)
	journal.On("AppendRecord", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, svc.StageDeparture(ctx, "sess-1", cleanDeparture(), false))

	arr := cleanArrival()
	arr.AfterCheck.Presence = models.AlcoholPresent

	// Arrival alcohol warns but never blocks.
	record, warn, err := svc.CompleteArrival(ctx, "sess-1", arr, nil)
	require.NoError(t, err)
	assert.True(t, warn)
	assert.True(t, alarmed)
	assert.Len(t, notifier.texts, 1)
	assert.Equal(t, models.AlcoholPresent, record.AfterCheck.Presence)

	pending, _ := svc.PendingDeparture(ctx, "sess-1")
	assert.Nil(t, pending)
}

func TestCompleteArrivalCarriesReservation(t *testing.T) {
	store := &mockStore{}
	journal := &mockJournal{}
	staging := newFakeStaging()
	svc, _ := newRecordService(store, journal, staging, &stubNotifier{})
	ctx := context.Background()

	store.On("CreateDrivingRecord", mock.Anything, mock.Anything).Return(nil)
	journal.On("AppendRecord", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, svc.StageDeparture(ctx, "sess-1", cleanDeparture(), false))

	reservationID := int64(7)
	record, _, err := svc.CompleteArrival(ctx, "sess-1", cleanArrival(), &reservationID)
	require.NoError(t, err)
	require.NotNil(t, record.ReservationID)
	assert.Equal(t, reservationID, *record.ReservationID)
}
