package models

const (
	StatusReserved  = "reserved"
	StatusInUse     = "in_use"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

const (
	VehicleAvailable   = "available"
	VehicleMaintenance = "maintenance"
)

const (
	AlcoholPresent = "present"
	AlcoholAbsent  = "absent"
)

var (
	VehicleTypes = []string{"sedan", "kei", "truck_2t", "bus"}

	WeatherOptions = []string{"sunny", "cloudy", "rainy"}

	VehicleConditions = []string{"good", "bad"}

	CheckerTypes = []string{
		"safety_manager",
		"deputy_safety_manager",
		"operations_manager",
		"other",
	}

	CheckMethods = []string{"in_person", "phone"}
)

const (
	// FuelLevelMin и FuelLevelMax bound the 8-step fuel gauge reading.
	FuelLevelMin = 1
	FuelLevelMax = 8

	// MaintenanceAlertDays is the due-window for inspection/maintenance alerts.
	MaintenanceAlertDays = 30

	// MaintenanceUrgentDays marks alerts that need immediate attention.
	MaintenanceUrgentDays = 7

	// DefaultStagingTTL время жизни отложенной записи о выезде в Redis
	DefaultStagingTTL = 24 * 60 * 60 // 24 hours in seconds

	// WorkerQueueSize размер очереди воркера
	WorkerQueueSize = 128
)
