package models

import "time"

// SobrietyCheck captures one alcohol check, performed both before departure
// and after arrival.
type SobrietyCheck struct {
	CheckerType  string  `json:"checkerType"`
	CheckerName  string  `json:"checkerName"`
	Method       string  `json:"method"`
	Presence     string  `json:"alcoholPresence"` // present or absent
	AlcoholLevel float64 `json:"alcoholValue"`
}

// Flagged reports whether the check detected alcohol. Either the presence
// flag or a non-zero reading is sufficient; disagreement between the two is
// not reconciled.
func (c SobrietyCheck) Flagged() bool {
	return c.Presence == AlcoholPresent || c.AlcoholLevel > 0
}

// Departure is the partial driving record captured when a vehicle leaves.
// It sits in the session staging slot until the matching arrival completes it.
type Departure struct {
	VehicleID        int64         `json:"vehicleId"`
	Date             Date          `json:"date"`
	Weather          string        `json:"weather"`
	VehicleCondition string        `json:"vehicleCondition"`
	StartTime        TimeOfDay     `json:"startTime"`
	Destination      string        `json:"destination"`
	StartMeter       int64         `json:"startMeter"`
	Purpose          string        `json:"purpose"`
	Passengers       int           `json:"passengers"`
	DriverName       string        `json:"driverName"`
	BeforeCheck      SobrietyCheck `json:"beforeCheck"`
	StagedAt         time.Time     `json:"stagedAt,omitempty"`
}

// Arrival carries the fields captured when the vehicle returns.
type Arrival struct {
	EndTime    TimeOfDay     `json:"endTime"`
	EndMeter   int64         `json:"endMeter"`
	Gasoline   float64       `json:"gasoline"`
	Diesel     float64       `json:"diesel"`
	Oil        float64       `json:"oil"`
	NoRefuel   bool          `json:"noRefuel"`
	FuelLevel  int           `json:"fuelLevel"`
	AfterCheck SobrietyCheck `json:"afterCheck"`
	Notes      string        `json:"notes"`
}

// DrivingRecord is the completed two-phase record submitted to the store.
type DrivingRecord struct {
	VehicleID        int64         `json:"vehicleId"`
	Date             Date          `json:"date"`
	DayOfWeek        string        `json:"dayOfWeek"`
	Weather          string        `json:"weather"`
	VehicleCondition string        `json:"vehicleCondition"`
	StartTime        TimeOfDay     `json:"startTime"`
	EndTime          TimeOfDay     `json:"endTime"`
	Destination      string        `json:"destination"`
	Purpose          string        `json:"purpose"`
	Passengers       int           `json:"passengers"`
	DriverName       string        `json:"driverName"`
	StartMeter       int64         `json:"startMeter"`
	EndMeter         int64         `json:"endMeter"`
	DistanceKm       *int64        `json:"distanceKm,omitempty"` // nil when EndMeter <= StartMeter
	Gasoline         float64       `json:"gasoline"`
	Diesel           float64       `json:"diesel"`
	Oil              float64       `json:"oil"`
	NoRefuel         bool          `json:"noRefuel"`
	FuelLevel        int           `json:"fuelLevel"`
	BeforeCheck      SobrietyCheck `json:"beforeCheck"`
	AfterCheck       SobrietyCheck `json:"afterCheck"`
	Notes            string        `json:"notes"`
	ReservationID    *int64        `json:"reservationId"`
}
