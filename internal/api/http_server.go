// Package api exposes the reservation and trip-record operations over HTTP.
// The frontend is a thin client: every conflict decision is made here, never
// in the browser.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fleetdesk/internal/availability"
	"fleetdesk/internal/config"
	"fleetdesk/internal/metrics"
	"fleetdesk/internal/service"
	"fleetdesk/internal/triplog"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type HTTPServer struct {
	cfg          config.APIConfig
	reservations *service.ReservationService
	records      *service.RecordService
	fleet        *service.FleetService
	dashboard    *service.DashboardService
	server       *http.Server
	auth         *HTTPAuth
	logger       zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, reservations *service.ReservationService, records *service.RecordService, fleet *service.FleetService, dashboard *service.DashboardService, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{
		cfg:          cfg,
		reservations: reservations,
		records:      records,
		fleet:        fleet,
		dashboard:    dashboard,
		logger:       logger.With().Str("component", "http").Logger(),
	}
	srv.auth = NewHTTPAuth(cfg)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/vehicles", srv.handleVehicles)
	mux.HandleFunc("/api/v1/vehicles/alerts", srv.handleMaintenanceAlerts)
	mux.HandleFunc("/api/v1/availability", srv.handleAvailability)
	mux.HandleFunc("/api/v1/reservations", srv.handleReservations)
	mux.HandleFunc("/api/v1/reservations/", srv.handleReservationByID)
	mux.HandleFunc("/api/v1/records/departure", srv.handleDeparture)
	mux.HandleFunc("/api/v1/records/arrival", srv.handleArrival)
	mux.HandleFunc("/api/v1/dashboard", srv.handleDashboard)
	mux.HandleFunc("/healthz", srv.handleHealth)

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

// Handler returns the full middleware chain, used directly by tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("http api listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := strings.TrimSpace(r.Header.Get("x-request-id"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("x-request-id", requestID)

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		metrics.IncHTTP(r.URL.Path)
		s.logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

// sessionID identifies the staging slot owner. Records endpoints refuse to
// work without it.
func (s *HTTPServer) sessionID(r *http.Request) string {
	header := strings.TrimSpace(strings.ToLower(s.cfg.Auth.HeaderSession))
	if header == "" {
		header = "x-session-id"
	}
	return strings.TrimSpace(r.Header.Get(header))
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeServiceError maps domain errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, availability.ErrInvalidInterval),
		errors.Is(err, availability.ErrCapacityExceeded),
		errors.Is(err, triplog.ErrInvalidFuelLevel):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrVehicleNotFound),
		errors.Is(err, service.ErrReservationNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrTimeConflict),
		errors.Is(err, service.ErrVehicleNotUsable),
		errors.Is(err, triplog.ErrConfirmationRequired),
		errors.Is(err, triplog.ErrNoPendingDeparture):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusBadGateway, "upstream store error")
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
