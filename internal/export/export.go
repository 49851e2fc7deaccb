// Package export renders journal data into xlsx workbooks for the monthly
// paperwork run.
package export

import (
	"fmt"

	"fleetdesk/internal/models"

	"github.com/xuri/excelize/v2"
)

const drivingLogSheet = "DrivingLog"

var drivingLogHeader = []string{
	"Date", "Day", "Vehicle ID", "Driver", "Destination", "Purpose",
	"Start", "End", "Start Meter", "End Meter", "Distance (km)",
	"Gasoline (L)", "Diesel (L)", "Oil (L)", "Fuel Level", "Passengers", "Notes",
}

// WriteDrivingLog writes one row per record, oldest first, to path.
func WriteDrivingLog(records []models.DrivingRecord, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(drivingLogSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	for col, title := range drivingLogHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(drivingLogSheet, cell, title); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for i, r := range records {
		var distance interface{}
		if r.DistanceKm != nil {
			distance = *r.DistanceKm
		}

		row := []interface{}{
			r.Date.String(),
			r.DayOfWeek,
			r.VehicleID,
			r.DriverName,
			r.Destination,
			r.Purpose,
			r.StartTime.String(),
			r.EndTime.String(),
			r.StartMeter,
			r.EndMeter,
			distance,
			r.Gasoline,
			r.Diesel,
			r.Oil,
			r.FuelLevel,
			r.Passengers,
			r.Notes,
		}

		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("data cell: %w", err)
			}
			if err := f.SetCellValue(drivingLogSheet, cell, value); err != nil {
				return fmt.Errorf("write row %d: %w", i+2, err)
			}
		}
	}

	if err := f.SetColWidth(drivingLogSheet, "A", "Q", 14); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
