package store

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fleetdesk/internal/config"
	"fleetdesk/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*GASClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := zerolog.New(io.Discard)
	client, err := NewGASClient(config.StoreConfig{
		BaseURL:        srv.URL,
		RequestTimeout: 5 * time.Second,
	}, &logger)
	require.NoError(t, err)
	return client, srv
}

func TestGASClientGetVehicles(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "getVehicles", r.URL.Query().Get("action"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[
			{"id":1,"number":"100-A","type":"sedan","capacity":5,"inspectionDate":"2026/03/01","maintenanceDate":"2025-12-01","status":"available"},
			{"id":2,"number":"200-B","type":"bus","capacity":29,"inspectionDate":"2026-01-15","maintenanceDate":"2025/11/20","status":"maintenance"}
		]}`))
	})

	vehicles, err := client.GetVehicles(context.Background())
	require.NoError(t, err)
	require.Len(t, vehicles, 2)
	assert.Equal(t, "100-A", vehicles[0].Number)
	// Both slash and dash date forms normalize to the same value type.
	assert.Equal(t, models.NewDate(2026, time.March, 1), vehicles[0].InspectionDate)
	assert.Equal(t, models.NewDate(2025, time.December, 1), vehicles[0].MaintenanceDate)
	assert.False(t, vehicles[1].Usable())
}

func TestGASClientGetReservations(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "getReservations", r.URL.Query().Get("action"))
		assert.Equal(t, "2025/06/10", r.URL.Query().Get("date"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[
			{"id":7,"vehicleId":1,"date":"2025-06-10","startTime":"09:00","endTime":"10:30","status":"reserved","userName":"Tanaka"}
		]}`))
	})

	date := models.NewDate(2025, time.June, 10)
	reservations, err := client.GetReservations(context.Background(), &date)
	require.NoError(t, err)
	require.Len(t, reservations, 1)
	assert.Equal(t, models.NewTimeOfDay(9, 0), reservations[0].StartTime)
	assert.Equal(t, models.NewTimeOfDay(10, 30), reservations[0].EndTime)
	assert.Equal(t, date, reservations[0].Date)
}

func TestGASClientCreateReservation(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "createReservation", r.URL.Query().Get("action"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "2025/06/10", body["date"])
		assert.Equal(t, "09:00", body["startTime"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":42}}`))
	})

	id, err := client.CreateReservation(context.Background(), models.ReservationRequest{
		VehicleID: 1,
		Date:      models.NewDate(2025, time.June, 10),
		StartTime: models.NewTimeOfDay(9, 0),
		EndTime:   models.NewTimeOfDay(10, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestGASClientRejectedEnvelope(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":false,"error":"sheet is locked"}`))
	})

	_, err := client.GetVehicles(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRemoteRejected)
	assert.Contains(t, err.Error(), "sheet is locked")
}

func TestGASClientNon200(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	err := client.DeleteReservation(context.Background(), 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 502")
}

func TestGASClientCreateDrivingRecord(t *testing.T) {
	var received map[string]interface{}
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "createDrivingRecord", r.URL.Query().Get("action"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	distance := int64(42)
	record := models.DrivingRecord{
		VehicleID:  1,
		Date:       models.NewDate(2025, time.June, 10),
		StartTime:  models.NewTimeOfDay(8, 30),
		EndTime:    models.NewTimeOfDay(17, 0),
		StartMeter: 12000,
		EndMeter:   12042,
		DistanceKm: &distance,
		DayOfWeek:  "Tuesday",
	}

	err := client.CreateDrivingRecord(context.Background(), record)
	require.NoError(t, err)
	assert.Equal(t, "2025/06/10", received["date"])
	assert.Equal(t, float64(42), received["distanceKm"])
	assert.Nil(t, received["reservationId"])
}
