package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fleetdesk",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	reservationsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fleetdesk",
			Name:      "reservations_created_total",
			Help:      "Reservations accepted by the conflict check.",
		},
	)

	conflictsDetected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fleetdesk",
			Name:      "reservation_conflicts_total",
			Help:      "Reservation attempts rejected for a time overlap.",
		},
	)

	recordsCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fleetdesk",
			Name:      "driving_records_completed_total",
			Help:      "Driving records composed and submitted.",
		},
	)

	stagingOverwrites = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fleetdesk",
			Name:      "departure_staging_overwrites_total",
			Help:      "Departure stagings that replaced an unsubmitted slot.",
		},
	)

	alcoholGateHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fleetdesk",
			Name:      "alcohol_gate_hits_total",
			Help:      "Departures held back by the sobriety gate.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			reservationsCreated,
			conflictsDetected,
			recordsCompleted,
			stagingOverwrites,
			alcoholGateHits,
		)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

func IncReservationCreated() { reservationsCreated.Inc() }
func IncConflictDetected()   { conflictsDetected.Inc() }
func IncRecordCompleted()    { recordsCompleted.Inc() }
func IncStagingOverwrite()   { stagingOverwrites.Inc() }
func IncAlcoholGateHit()     { alcoholGateHits.Inc() }
