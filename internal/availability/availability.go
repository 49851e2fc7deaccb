// Package availability decides whether a vehicle is free for a requested
// time interval given the reservations already on the books. All functions
// are pure: they are handed a snapshot of reservations per call and own no
// state of their own.
package availability

import (
	"errors"
	"fmt"

	"fleetdesk/internal/models"
)

var (
	// ErrInvalidInterval rejects a zero-length or inverted interval before
	// any conflict logic runs.
	ErrInvalidInterval = errors.New("interval end must be after start")

	// ErrCapacityExceeded rejects more passengers than the vehicle seats.
	ErrCapacityExceeded = errors.New("passenger count exceeds vehicle capacity")
)

// ValidateInterval must pass before a conflict check; an invalid interval
// short-circuits with no further evaluation.
func ValidateInterval(iv models.Interval) error {
	if !iv.Start.Valid() || !iv.End.Valid() {
		return fmt.Errorf("%w: out-of-range time of day", ErrInvalidInterval)
	}
	if iv.Start >= iv.End {
		return fmt.Errorf("%w: %s >= %s", ErrInvalidInterval, iv.Start, iv.End)
	}
	return nil
}

// ValidateCapacity rejects a reservation that would overload the vehicle.
func ValidateCapacity(vehicle models.Vehicle, passengers int) error {
	if passengers > vehicle.Capacity {
		return fmt.Errorf("%w: %d > %d", ErrCapacityExceeded, passengers, vehicle.Capacity)
	}
	return nil
}

// HasConflict reports whether the requested interval overlaps any active
// reservation of the vehicle on the given date. Reservations are re-filtered
// by date here: the remote store may or may not have filtered server-side,
// so the input is treated as a candidate set.
//
// Overlap uses half-open semantics: a reservation ending exactly when the
// request starts does not conflict.
func HasConflict(vehicleID int64, date models.Date, iv models.Interval, reservations []models.Reservation) bool {
	for _, r := range reservations {
		if r.VehicleID != vehicleID {
			continue
		}
		if !r.Active() {
			continue
		}
		if !r.Date.Equal(date) {
			continue
		}
		if iv.Overlaps(r.Interval()) {
			return true
		}
	}
	return false
}

// AvailableVehicles returns the vehicles free for the whole interval,
// preserving roster order. An empty result is a valid answer, not an error;
// the caller decides how to signal "no availability".
func AvailableVehicles(vehicles []models.Vehicle, date models.Date, iv models.Interval, reservations []models.Reservation) []models.Vehicle {
	free := make([]models.Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		if HasConflict(v.ID, date, iv, reservations) {
			continue
		}
		free = append(free, v)
	}
	return free
}
