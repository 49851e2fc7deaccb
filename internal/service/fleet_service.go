package service

import (
	"context"
	"fmt"

	"fleetdesk/internal/domain"
	"fleetdesk/internal/models"

	"github.com/rs/zerolog"
)

// FleetService serves the vehicle roster and maintenance due-date alerts.
type FleetService struct {
	store    domain.Store
	fallback []models.Vehicle
	logger   *zerolog.Logger
}

func NewFleetService(store domain.Store, logger *zerolog.Logger) *FleetService {
	return &FleetService{store: store, logger: logger}
}

// SetFallbackRoster installs a local roster served when the remote store is
// unreachable. Reservations still require the live store; only reads degrade.
func (s *FleetService) SetFallbackRoster(vehicles []models.Vehicle) {
	s.fallback = vehicles
}

func (s *FleetService) Vehicles(ctx context.Context) ([]models.Vehicle, error) {
	vehicles, err := s.store.GetVehicles(ctx)
	if err != nil {
		if len(s.fallback) > 0 {
			s.logger.Warn().Err(err).Msg("store unreachable, serving fallback roster")
			return s.fallback, nil
		}
		return nil, fmt.Errorf("fetch vehicles: %w", err)
	}
	return vehicles, nil
}

// MaintenanceAlerts flags vehicles whose inspection or maintenance falls due
// within the alert window, overdue ones included. DaysLeft goes negative once
// the date has passed.
func (s *FleetService) MaintenanceAlerts(ctx context.Context, today models.Date) ([]models.MaintenanceAlert, error) {
	vehicles, err := s.store.GetVehicles(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch vehicles: %w", err)
	}

	var alerts []models.MaintenanceAlert
	for _, v := range vehicles {
		if alert, ok := dueAlert(v, models.AlertKindInspection, v.InspectionDate, today); ok {
			alerts = append(alerts, alert)
		}
		if alert, ok := dueAlert(v, models.AlertKindMaintenance, v.MaintenanceDate, today); ok {
			alerts = append(alerts, alert)
		}
	}
	return alerts, nil
}

func dueAlert(v models.Vehicle, kind string, due models.Date, today models.Date) (models.MaintenanceAlert, bool) {
	if due.IsZero() {
		return models.MaintenanceAlert{}, false
	}

	daysLeft := int(due.Time().Sub(today.Time()).Hours() / 24)
	if daysLeft > models.MaintenanceAlertDays {
		return models.MaintenanceAlert{}, false
	}

	return models.MaintenanceAlert{
		VehicleID:     v.ID,
		VehicleNumber: v.Number,
		Kind:          kind,
		DueDate:       due,
		DaysLeft:      daysLeft,
		Urgent:        daysLeft <= models.MaintenanceUrgentDays,
	}, true
}
