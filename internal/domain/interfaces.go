package domain

import (
	"context"

	"fleetdesk/internal/models"
)

// Store is the remote spreadsheet-backed data store. It owns all persistence;
// this service only reads snapshots and submits completed records.
type Store interface {
	GetVehicles(ctx context.Context) ([]models.Vehicle, error)
	// GetReservations optionally filters server-side by date; callers must
	// treat the result as a candidate set and filter again.
	GetReservations(ctx context.Context, date *models.Date) ([]models.Reservation, error)
	CreateReservation(ctx context.Context, req models.ReservationRequest) (int64, error)
	DeleteReservation(ctx context.Context, id int64) error
	CreateDrivingRecord(ctx context.Context, record models.DrivingRecord) error
}

// StagingRepository holds at most one pending departure per session.
// Staging a new departure overwrites the previous one (last-write-wins).
type StagingRepository interface {
	GetDeparture(ctx context.Context, sessionID string) (*models.Departure, error)
	SetDeparture(ctx context.Context, sessionID string, dep *models.Departure) error
	ClearDeparture(ctx context.Context, sessionID string) error
}

// Journal is the local driving-record log used for dashboard aggregates.
type Journal interface {
	AppendRecord(ctx context.Context, record models.DrivingRecord) error
	MonthlyDistance(ctx context.Context, date models.Date) (int64, error)
	AverageFuelEconomy(ctx context.Context) (float64, error)
	RecordCount(ctx context.Context, date models.Date) (int64, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// SyncWorker mirrors reservation snapshots to the secondary spreadsheet.
type SyncWorker interface {
	EnqueueSnapshot(ctx context.Context, date models.Date) error
}

type Notifier interface {
	Notify(text string) error
}

// ReservationLister is the slice of Store the snapshot worker needs.
type ReservationLister interface {
	GetReservations(ctx context.Context, date *models.Date) ([]models.Reservation, error)
	GetVehicles(ctx context.Context) ([]models.Vehicle, error)
}

// ScheduleWriter pushes a reservations snapshot into the mirror spreadsheet.
type ScheduleWriter interface {
	WriteSchedule(ctx context.Context, date models.Date, vehicles []models.Vehicle, reservations []models.Reservation) error
}
