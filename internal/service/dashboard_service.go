package service

import (
	"context"
	"fmt"
	"sync"

	"fleetdesk/internal/domain"
	"fleetdesk/internal/models"

	"github.com/rs/zerolog"
)

// DashboardSummary is the aggregate view shown on the landing screen.
// Distance and fuel figures come from the local journal, not the store.
type DashboardSummary struct {
	Date              models.Date `json:"date"`
	VehiclesTotal     int         `json:"vehiclesTotal"`
	VehiclesUsable    int         `json:"vehiclesUsable"`
	ReservationsToday int         `json:"reservationsToday"`
	MonthlyDistanceKm int64       `json:"monthlyDistanceKm"`
	MonthlyRecords    int64       `json:"monthlyRecords"`
	AvgFuelEconomy    float64     `json:"avgFuelEconomy"`
	Alerts            int         `json:"alerts"`
}

type DashboardService struct {
	store   domain.Store
	journal domain.Journal
	fleet   *FleetService
	logger  *zerolog.Logger
}

func NewDashboardService(store domain.Store, journal domain.Journal, fleet *FleetService, logger *zerolog.Logger) *DashboardService {
	return &DashboardService{
		store:   store,
		journal: journal,
		fleet:   fleet,
		logger:  logger,
	}
}

// Summary builds the dashboard for a date. Vehicle and reservation snapshots
// are fetched concurrently; journal aggregates run after since they are local.
func (s *DashboardService) Summary(ctx context.Context, date models.Date) (DashboardSummary, error) {
	var (
		wg           sync.WaitGroup
		vehicles     []models.Vehicle
		reservations []models.Reservation
		vehErr       error
		resErr       error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		vehicles, vehErr = s.store.GetVehicles(ctx)
	}()
	go func() {
		defer wg.Done()
		reservations, resErr = s.store.GetReservations(ctx, &date)
	}()
	wg.Wait()

	if vehErr != nil {
		return DashboardSummary{}, fmt.Errorf("fetch vehicles: %w", vehErr)
	}
	if resErr != nil {
		return DashboardSummary{}, fmt.Errorf("fetch reservations: %w", resErr)
	}

	summary := DashboardSummary{Date: date, VehiclesTotal: len(vehicles)}

	for _, v := range vehicles {
		if v.Usable() {
			summary.VehiclesUsable++
		}
	}
	for _, r := range reservations {
		if r.Date.Equal(date) && r.Active() {
			summary.ReservationsToday++
		}
	}

	distance, err := s.journal.MonthlyDistance(ctx, date)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to read monthly distance")
	} else {
		summary.MonthlyDistanceKm = distance
	}

	count, err := s.journal.RecordCount(ctx, date)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to count journal records")
	} else {
		summary.MonthlyRecords = count
	}

	economy, err := s.journal.AverageFuelEconomy(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to read fuel economy")
	} else {
		summary.AvgFuelEconomy = economy
	}

	alerts, err := s.fleet.MaintenanceAlerts(ctx, date)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to build maintenance alerts")
	} else {
		summary.Alerts = len(alerts)
	}

	return summary, nil
}
