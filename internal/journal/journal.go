// Package journal keeps a local copy of every submitted driving record in
// SQLite. The spreadsheet store stays the source of truth; the journal
// exists so dashboard statistics and exports do not hammer the remote API.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fleetdesk/internal/models"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

type Journal struct {
	db     *sql.DB
	logger zerolog.Logger
}

func New(path string, logger *zerolog.Logger) (*Journal, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to journal database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	j := &Journal{
		db:     db,
		logger: logger.With().Str("component", "journal").Logger(),
	}
	j.logger.Info().Str("path", path).Msg("journal initialized")
	return j, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS driving_records (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            vehicle_id INTEGER NOT NULL,
            reservation_id INTEGER,
            date TEXT NOT NULL,
            day_of_week TEXT NOT NULL,
            weather TEXT,
            vehicle_condition TEXT,
            start_time TEXT NOT NULL,
            end_time TEXT NOT NULL,
            destination TEXT,
            purpose TEXT,
            driver TEXT NOT NULL,
            passengers INTEGER NOT NULL DEFAULT 0,
            start_meter INTEGER NOT NULL,
            end_meter INTEGER NOT NULL,
            distance_km INTEGER,
            gasoline REAL NOT NULL DEFAULT 0,
            diesel REAL NOT NULL DEFAULT 0,
            oil REAL NOT NULL DEFAULT 0,
            fuel_level INTEGER NOT NULL,
            alcohol_flagged BOOLEAN NOT NULL DEFAULT 0,
            notes TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE INDEX IF NOT EXISTS idx_records_date ON driving_records(date)`,
		`CREATE INDEX IF NOT EXISTS idx_records_vehicle_id ON driving_records(vehicle_id)`,
		`CREATE INDEX IF NOT EXISTS idx_records_driver ON driving_records(driver)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// AppendRecord stores a composed record. Appends only, никогда не обновляем.
func (j *Journal) AppendRecord(ctx context.Context, record models.DrivingRecord) error {
	query := `INSERT INTO driving_records (
				vehicle_id, reservation_id, date, day_of_week, weather, vehicle_condition,
				start_time, end_time, destination, purpose, driver, passengers,
				start_meter, end_meter, distance_km, gasoline, diesel, oil,
				fuel_level, alcohol_flagged, notes, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var reservationID interface{}
	if record.ReservationID != nil {
		reservationID = *record.ReservationID
	}
	var distance interface{}
	if record.DistanceKm != nil {
		distance = *record.DistanceKm
	}

	flagged := record.BeforeCheck.Flagged() || record.AfterCheck.Flagged()

	_, err := j.db.ExecContext(ctx, query,
		record.VehicleID,
		reservationID,
		record.Date.ISO(),
		record.DayOfWeek,
		record.Weather,
		record.VehicleCondition,
		record.StartTime.String(),
		record.EndTime.String(),
		record.Destination,
		record.Purpose,
		record.DriverName,
		record.Passengers,
		record.StartMeter,
		record.EndMeter,
		distance,
		record.Gasoline,
		record.Diesel,
		record.Oil,
		record.FuelLevel,
		flagged,
		record.Notes,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to append driving record: %w", err)
	}
	return nil
}

// MonthlyDistance sums recorded distances for the month containing date.
// Records with no derivable distance contribute nothing.
func (j *Journal) MonthlyDistance(ctx context.Context, date models.Date) (int64, error) {
	query := `SELECT COALESCE(SUM(distance_km), 0)
              FROM driving_records
              WHERE strftime('%Y-%m', date) = ?`

	monthKey := fmt.Sprintf("%04d-%02d", date.Year, int(date.Month))

	var total int64
	if err := j.db.QueryRowContext(ctx, query, monthKey).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to get monthly distance: %w", err)
	}
	return total, nil
}

// AverageFuelEconomy returns km per liter over all records that have both a
// distance and a refuel amount. Returns 0 when there is nothing to average.
func (j *Journal) AverageFuelEconomy(ctx context.Context) (float64, error) {
	query := `SELECT COALESCE(SUM(distance_km), 0), COALESCE(SUM(gasoline + diesel), 0)
              FROM driving_records
              WHERE distance_km IS NOT NULL AND (gasoline > 0 OR diesel > 0)`

	var distance int64
	var fuel float64
	if err := j.db.QueryRowContext(ctx, query).Scan(&distance, &fuel); err != nil {
		return 0, fmt.Errorf("failed to get fuel economy: %w", err)
	}
	if fuel == 0 {
		return 0, nil
	}
	return float64(distance) / fuel, nil
}

// RecordCount returns the number of journaled records for the given month.
func (j *Journal) RecordCount(ctx context.Context, date models.Date) (int64, error) {
	query := `SELECT COUNT(*) FROM driving_records WHERE strftime('%Y-%m', date) = ?`
	monthKey := fmt.Sprintf("%04d-%02d", date.Year, int(date.Month))

	var count int64
	if err := j.db.QueryRowContext(ctx, query, monthKey).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

// RecordsForMonth returns journaled records for the month, oldest first.
// Used by the export command.
func (j *Journal) RecordsForMonth(ctx context.Context, date models.Date) ([]models.DrivingRecord, error) {
	query := `SELECT vehicle_id, reservation_id, date, day_of_week, weather, vehicle_condition,
                     start_time, end_time, destination, purpose, driver, passengers,
                     start_meter, end_meter, distance_km, gasoline, diesel, oil,
                     fuel_level, notes
              FROM driving_records
              WHERE strftime('%Y-%m', date) = ?
              ORDER BY date, start_time`

	monthKey := fmt.Sprintf("%04d-%02d", date.Year, int(date.Month))

	rows, err := j.db.QueryContext(ctx, query, monthKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []models.DrivingRecord
	for rows.Next() {
		var r models.DrivingRecord
		var reservationID sql.NullInt64
		var distance sql.NullInt64
		var dateStr, startStr, endStr string

		err := rows.Scan(
			&r.VehicleID, &reservationID, &dateStr, &r.DayOfWeek,
			&r.Weather, &r.VehicleCondition, &startStr, &endStr,
			&r.Destination, &r.Purpose, &r.DriverName, &r.Passengers,
			&r.StartMeter, &r.EndMeter, &distance,
			&r.Gasoline, &r.Diesel, &r.Oil, &r.FuelLevel, &r.Notes,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}

		if r.Date, err = models.ParseDate(dateStr); err != nil {
			return nil, fmt.Errorf("failed to parse record date: %w", err)
		}
		if r.StartTime, err = models.ParseTimeOfDay(startStr); err != nil {
			return nil, fmt.Errorf("failed to parse start time: %w", err)
		}
		if r.EndTime, err = models.ParseTimeOfDay(endStr); err != nil {
			return nil, fmt.Errorf("failed to parse end time: %w", err)
		}
		if reservationID.Valid {
			r.ReservationID = &reservationID.Int64
		}
		if distance.Valid {
			r.DistanceKm = &distance.Int64
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}
	return records, nil
}
