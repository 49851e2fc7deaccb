// Package triplog holds the rules for composing a driving record out of its
// two capture phases: a staged departure and a later arrival.
package triplog

import (
	"errors"
	"fmt"

	"fleetdesk/internal/models"
)

var (
	// ErrNoPendingDeparture rejects an arrival when nothing is staged;
	// the caller must perform departure capture first.
	ErrNoPendingDeparture = errors.New("no pending departure staged")

	// ErrConfirmationRequired blocks a departure whose sobriety check
	// flagged alcohol until the caller confirms explicitly.
	ErrConfirmationRequired = errors.New("alcohol detected, explicit confirmation required")

	// ErrInvalidFuelLevel rejects a fuel gauge reading outside 1..8.
	ErrInvalidFuelLevel = errors.New("fuel level out of range")
)

// GateDeparture enforces the pre-trip alcohol gate. The presence flag and a
// non-zero reading each trigger it on their own; disagreement between the two
// is not treated as an error.
func GateDeparture(dep models.Departure, confirmed bool) error {
	if dep.BeforeCheck.Flagged() && !confirmed {
		return ErrConfirmationRequired
	}
	return nil
}

// ValidateArrival checks the arrival-only fields.
func ValidateArrival(arr models.Arrival) error {
	if arr.FuelLevel < models.FuelLevelMin || arr.FuelLevel > models.FuelLevelMax {
		return fmt.Errorf("%w: %d", ErrInvalidFuelLevel, arr.FuelLevel)
	}
	return nil
}

// Compose merges a staged departure with arrival fields into one complete
// record. Distance is derived only when the end reading moved past the start
// reading; otherwise it stays unset rather than going negative.
func Compose(dep models.Departure, arr models.Arrival) models.DrivingRecord {
	record := models.DrivingRecord{
		VehicleID:        dep.VehicleID,
		Date:             dep.Date,
		DayOfWeek:        dep.Date.Weekday().String(),
		Weather:          dep.Weather,
		VehicleCondition: dep.VehicleCondition,
		StartTime:        dep.StartTime,
		EndTime:          arr.EndTime,
		Destination:      dep.Destination,
		Purpose:          dep.Purpose,
		Passengers:       dep.Passengers,
		DriverName:       dep.DriverName,
		StartMeter:       dep.StartMeter,
		EndMeter:         arr.EndMeter,
		Gasoline:         arr.Gasoline,
		Diesel:           arr.Diesel,
		Oil:              arr.Oil,
		NoRefuel:         arr.NoRefuel,
		FuelLevel:        arr.FuelLevel,
		BeforeCheck:      dep.BeforeCheck,
		AfterCheck:       arr.AfterCheck,
		Notes:            arr.Notes,
	}

	if arr.EndMeter > dep.StartMeter {
		distance := arr.EndMeter - dep.StartMeter
		record.DistanceKm = &distance
	}

	return record
}

// ArrivalWarning reports whether the post-trip check flagged alcohol. Unlike
// the departure gate this never blocks submission; it only surfaces a warning.
func ArrivalWarning(arr models.Arrival) bool {
	return arr.AfterCheck.Flagged()
}
