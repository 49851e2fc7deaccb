package models

import "time"

type Reservation struct {
	ID          int64     `json:"id"`
	VehicleID   int64     `json:"vehicleId"`
	Date        Date      `json:"date"`
	StartTime   TimeOfDay `json:"startTime"`
	EndTime     TimeOfDay `json:"endTime"`
	UserName    string    `json:"userName"`
	Department  string    `json:"department"`
	Destination string    `json:"destination"`
	Purpose     string    `json:"purpose"`
	Passengers  int       `json:"passengers"`
	Status      string    `json:"status"` // reserved, in_use, completed, cancelled
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

func (r Reservation) Interval() Interval {
	return Interval{Start: r.StartTime, End: r.EndTime}
}

// Active reports whether the reservation occupies its time slot.
// Cancelled reservations never contribute to conflicts.
func (r Reservation) Active() bool {
	return r.Status != StatusCancelled
}

// ReservationRequest carries the fields of a new reservation before an ID
// and status are assigned by the remote store.
type ReservationRequest struct {
	VehicleID   int64     `json:"vehicleId"`
	Date        Date      `json:"date"`
	StartTime   TimeOfDay `json:"startTime"`
	EndTime     TimeOfDay `json:"endTime"`
	UserName    string    `json:"userName"`
	Department  string    `json:"department"`
	Destination string    `json:"destination"`
	Purpose     string    `json:"purpose"`
	Passengers  int       `json:"passengers"`
}

func (r ReservationRequest) Interval() Interval {
	return Interval{Start: r.StartTime, End: r.EndTime}
}
