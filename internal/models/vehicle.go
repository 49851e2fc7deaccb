package models

type Vehicle struct {
	ID              int64  `json:"id" yaml:"id"`
	Number          string `json:"number" yaml:"number"`
	Type            string `json:"type" yaml:"type"`
	Capacity        int    `json:"capacity" yaml:"capacity"`
	Notes           string `json:"notes,omitempty" yaml:"notes"`
	InspectionDate  Date   `json:"inspectionDate" yaml:"inspection_date"`
	MaintenanceDate Date   `json:"maintenanceDate" yaml:"maintenance_date"`
	Status          string `json:"status" yaml:"status"`
}

// Usable reports whether the vehicle can be dispatched at all.
func (v Vehicle) Usable() bool {
	return v.Status == VehicleAvailable
}

// MaintenanceAlert flags a vehicle whose inspection or periodic maintenance
// falls due within the alert window.
type MaintenanceAlert struct {
	VehicleID     int64  `json:"vehicleId"`
	VehicleNumber string `json:"vehicleNumber"`
	Kind          string `json:"kind"` // inspection or maintenance
	DueDate       Date   `json:"dueDate"`
	DaysLeft      int    `json:"daysLeft"`
	Urgent        bool   `json:"urgent"`
}

const (
	AlertKindInspection  = "inspection"
	AlertKindMaintenance = "maintenance"
)
