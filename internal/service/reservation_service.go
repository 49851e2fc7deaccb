package service

import (
	"context"
	"errors"
	"fmt"

	"fleetdesk/internal/availability"
	"fleetdesk/internal/domain"
	"fleetdesk/internal/events"
	"fleetdesk/internal/metrics"
	"fleetdesk/internal/models"

	"github.com/rs/zerolog"
)

var (
	ErrVehicleNotFound = errors.New("vehicle not found")

	// ErrVehicleNotUsable rejects reservations on vehicles pulled for
	// maintenance.
	ErrVehicleNotUsable = errors.New("vehicle is not available for dispatch")

	// ErrTimeConflict rejects a reservation that overlaps an existing one.
	ErrTimeConflict = errors.New("vehicle already reserved for this time")

	ErrReservationNotFound = errors.New("reservation not found")
)

type ReservationService struct {
	store    domain.Store
	eventBus domain.EventPublisher
	mirror   domain.SyncWorker
	logger   *zerolog.Logger
}

func NewReservationService(store domain.Store, eventBus domain.EventPublisher, mirror domain.SyncWorker, logger *zerolog.Logger) *ReservationService {
	return &ReservationService{
		store:    store,
		eventBus: eventBus,
		mirror:   mirror,
		logger:   logger,
	}
}

// AvailableVehicles returns the usable vehicles free for the whole interval.
// An empty list is a normal answer, not an error.
func (s *ReservationService) AvailableVehicles(ctx context.Context, date models.Date, iv models.Interval) ([]models.Vehicle, error) {
	if err := availability.ValidateInterval(iv); err != nil {
		return nil, err
	}

	vehicles, err := s.store.GetVehicles(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch vehicles: %w", err)
	}

	reservations, err := s.store.GetReservations(ctx, &date)
	if err != nil {
		return nil, fmt.Errorf("fetch reservations: %w", err)
	}

	// Maintenance vehicles are filtered here; the conflict engine itself
	// only knows about time overlaps.
	usable := make([]models.Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		if v.Usable() {
			usable = append(usable, v)
		}
	}

	return availability.AvailableVehicles(usable, date, iv, reservations), nil
}

// Search returns active reservations for a date, optionally narrowed to one
// vehicle type. Cancelled reservations never appear.
func (s *ReservationService) Search(ctx context.Context, date models.Date, vehicleType string) ([]models.Reservation, error) {
	reservations, err := s.store.GetReservations(ctx, &date)
	if err != nil {
		return nil, fmt.Errorf("fetch reservations: %w", err)
	}

	var typeFilter map[int64]bool
	if vehicleType != "" {
		vehicles, err := s.store.GetVehicles(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch vehicles: %w", err)
		}
		typeFilter = make(map[int64]bool)
		for _, v := range vehicles {
			if v.Type == vehicleType {
				typeFilter[v.ID] = true
			}
		}
	}

	result := make([]models.Reservation, 0, len(reservations))
	for _, r := range reservations {
		if !r.Date.Equal(date) || !r.Active() {
			continue
		}
		if typeFilter != nil && !typeFilter[r.VehicleID] {
			continue
		}
		result = append(result, r)
	}
	return result, nil
}

// Create validates the request and books the vehicle. The conflict check runs
// against a fresh reservation snapshot fetched here, not against whatever
// list the caller used to pick the vehicle.
func (s *ReservationService) Create(ctx context.Context, req models.ReservationRequest) (int64, error) {
	if err := availability.ValidateInterval(req.Interval()); err != nil {
		return 0, err
	}

	vehicles, err := s.store.GetVehicles(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch vehicles: %w", err)
	}

	var vehicle *models.Vehicle
	for i := range vehicles {
		if vehicles[i].ID == req.VehicleID {
			vehicle = &vehicles[i]
			break
		}
	}
	if vehicle == nil {
		return 0, ErrVehicleNotFound
	}
	if !vehicle.Usable() {
		return 0, ErrVehicleNotUsable
	}
	if err := availability.ValidateCapacity(*vehicle, req.Passengers); err != nil {
		return 0, err
	}

	reservations, err := s.store.GetReservations(ctx, &req.Date)
	if err != nil {
		return 0, fmt.Errorf("fetch reservations: %w", err)
	}
	if availability.HasConflict(req.VehicleID, req.Date, req.Interval(), reservations) {
		metrics.IncConflictDetected()
		s.logger.Info().
			Int64("vehicle_id", req.VehicleID).
			Str("date", req.Date.String()).
			Msg("reservation rejected: time conflict")
		return 0, ErrTimeConflict
	}

	id, err := s.store.CreateReservation(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("create reservation: %w", err)
	}

	metrics.IncReservationCreated()
	s.publishReservationEvent(events.EventReservationCreated, id, req, vehicle.Number)
	s.enqueueMirror(ctx, req.Date)

	return id, nil
}

// Delete cancels a reservation by id. The reservation is looked up first so
// the mirror snapshot for its date can be refreshed.
func (s *ReservationService) Delete(ctx context.Context, id int64) error {
	reservations, err := s.store.GetReservations(ctx, nil)
	if err != nil {
		return fmt.Errorf("fetch reservations: %w", err)
	}

	var target *models.Reservation
	for i := range reservations {
		if reservations[i].ID == id {
			target = &reservations[i]
			break
		}
	}
	if target == nil {
		return ErrReservationNotFound
	}

	if err := s.store.DeleteReservation(ctx, id); err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}

	if err := s.eventBus.PublishJSON(events.EventReservationDeleted, events.ReservationEventPayload{
		ReservationID: id,
		VehicleID:     target.VehicleID,
		UserName:      target.UserName,
		Department:    target.Department,
		Date:          target.Date,
		StartTime:     target.StartTime,
		EndTime:       target.EndTime,
	}); err != nil {
		s.logger.Error().Err(err).Msg("failed to publish reservation_deleted")
	}

	s.enqueueMirror(ctx, target.Date)
	return nil
}

func (s *ReservationService) publishReservationEvent(eventType string, id int64, req models.ReservationRequest, vehicleNumber string) {
	err := s.eventBus.PublishJSON(eventType, events.ReservationEventPayload{
		ReservationID: id,
		VehicleID:     req.VehicleID,
		VehicleNumber: vehicleNumber,
		UserName:      req.UserName,
		Department:    req.Department,
		Date:          req.Date,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("event", eventType).Msg("failed to publish event")
	}
}

func (s *ReservationService) enqueueMirror(ctx context.Context, date models.Date) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.EnqueueSnapshot(ctx, date); err != nil {
		s.logger.Error().Err(err).Str("date", date.String()).Msg("failed to enqueue mirror snapshot")
	}
}
