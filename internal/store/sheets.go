package store

import (
	"context"
	"fmt"
	"os"

	"fleetdesk/internal/config"
	"fleetdesk/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsMirror writes reservation snapshots into a secondary spreadsheet so
// fleet managers get a read-only schedule view without hitting the API.
type SheetsMirror struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
}

func NewSheetsMirror(cfg config.GoogleConfig) (*SheetsMirror, error) {
	ctx := context.Background()

	credentialsJSON, err := os.ReadFile(cfg.GoogleCredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %v", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %v", err)
	}

	client := jwtConfig.Client(ctx)

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %v", err)
	}

	return &SheetsMirror{
		service:       srv,
		spreadsheetID: cfg.MirrorSpreadsheetID,
		sheetName:     cfg.MirrorSheetName,
	}, nil
}

// TestConnection проверяет подключение к таблице
func (s *SheetsMirror) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.sheetName+"!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %v", err)
	}
	return nil
}

// WriteSchedule clears the mirror sheet and rewrites it with the day's
// reservations, one row per reservation, grouped under a date header.
func (s *SheetsMirror) WriteSchedule(ctx context.Context, date models.Date, vehicles []models.Vehicle, reservations []models.Reservation) error {
	clearRange := s.sheetName + "!A:H"
	_, err := s.service.Spreadsheets.Values.Clear(s.spreadsheetID, clearRange, &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("unable to clear mirror sheet: %v", err)
	}

	numbers := make(map[int64]string, len(vehicles))
	for _, v := range vehicles {
		numbers[v.ID] = v.Number
	}

	values := [][]interface{}{
		{fmt.Sprintf("Schedule %s", date)},
		{},
		{"ID", "Vehicle", "Start", "End", "User", "Department", "Destination", "Status"},
	}

	for _, r := range reservations {
		if !r.Date.Equal(date) || !r.Active() {
			continue
		}
		number := numbers[r.VehicleID]
		if number == "" {
			number = fmt.Sprintf("#%d", r.VehicleID)
		}
		values = append(values, []interface{}{
			r.ID,
			number,
			r.StartTime.String(),
			r.EndTime.String(),
			r.UserName,
			r.Department,
			r.Destination,
			r.Status,
		})
	}

	valueRange := &sheets.ValueRange{Values: values}
	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, s.sheetName+"!A1", valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("unable to update mirror sheet: %v", err)
	}

	return nil
}
