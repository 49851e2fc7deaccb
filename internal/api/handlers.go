package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"fleetdesk/internal/models"
)

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleVehicles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	vehicles, err := s.fleet.Vehicles(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vehicles": vehicles})
}

func (s *HTTPServer) handleMaintenanceAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	today := models.Today()
	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		parsed, err := models.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format")
			return
		}
		today = parsed
	}

	alerts, err := s.fleet.MaintenanceAlerts(r.Context(), today)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if alerts == nil {
		alerts = []models.MaintenanceAlert{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	date, err := models.ParseDate(strings.TrimSpace(r.URL.Query().Get("date")))
	if err != nil {
		writeError(w, http.StatusBadRequest, "date is required, YYYY/MM/DD or YYYY-MM-DD")
		return
	}

	start, err := models.ParseTimeOfDay(strings.TrimSpace(r.URL.Query().Get("start")))
	if err != nil {
		writeError(w, http.StatusBadRequest, "start is required, HH:MM")
		return
	}
	end, err := models.ParseTimeOfDay(strings.TrimSpace(r.URL.Query().Get("end")))
	if err != nil {
		writeError(w, http.StatusBadRequest, "end is required, HH:MM")
		return
	}

	vehicles, err := s.reservations.AvailableVehicles(r.Context(), date, models.Interval{Start: start, End: end})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vehicles": vehicles})
}

func (s *HTTPServer) handleReservations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listReservations(w, r)
	case http.MethodPost:
		s.createReservation(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) listReservations(w http.ResponseWriter, r *http.Request) {
	date, err := models.ParseDate(strings.TrimSpace(r.URL.Query().Get("date")))
	if err != nil {
		writeError(w, http.StatusBadRequest, "date is required, YYYY/MM/DD or YYYY-MM-DD")
		return
	}

	vehicleType := strings.TrimSpace(r.URL.Query().Get("type"))

	reservations, err := s.reservations.Search(r.Context(), date, vehicleType)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reservations": reservations})
}

func (s *HTTPServer) createReservation(w http.ResponseWriter, r *http.Request) {
	var req models.ReservationRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	id, err := s.reservations.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (s *HTTPServer) handleReservationByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	const prefix = "/api/v1/reservations/"
	raw := strings.TrimPrefix(r.URL.Path, prefix)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "reservation id is required")
		return
	}

	if err := s.reservations.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type departureRequest struct {
	models.Departure
	// Confirmed acknowledges a flagged sobriety check and lets the
	// departure through the gate.
	Confirmed bool `json:"confirmed"`
}

func (s *HTTPServer) handleDeparture(w http.ResponseWriter, r *http.Request) {
	sessionID := s.sessionID(r)
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session header is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		dep, err := s.records.PendingDeparture(r.Context(), sessionID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"departure": dep})

	case http.MethodPost:
		var req departureRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := s.records.StageDeparture(r.Context(), sessionID, req.Departure, req.Confirmed); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"status": "staged"})

	case http.MethodDelete:
		if err := s.records.DiscardDeparture(r.Context(), sessionID); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "discarded"})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type arrivalRequest struct {
	models.Arrival
	ReservationID *int64 `json:"reservationId"`
}

func (s *HTTPServer) handleArrival(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sessionID := s.sessionID(r)
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session header is required")
		return
	}

	var req arrivalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	record, warn, err := s.records.CompleteArrival(r.Context(), sessionID, req.Arrival, req.ReservationID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"record":         record,
		"alcoholWarning": warn,
	})
}

func (s *HTTPServer) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	date := models.Today()
	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		parsed, err := models.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format")
			return
		}
		date = parsed
	}

	summary, err := s.dashboard.Summary(r.Context(), date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
