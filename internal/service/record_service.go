package service

import (
	"context"
	"fmt"

	"fleetdesk/internal/domain"
	"fleetdesk/internal/events"
	"fleetdesk/internal/metrics"
	"fleetdesk/internal/models"
	"fleetdesk/internal/triplog"

	"github.com/rs/zerolog"
)

// RecordService drives the two-phase driving record flow. Each session holds
// at most one staged departure; the matching arrival completes it into a
// record submitted to the store and appended to the local journal.
type RecordService struct {
	staging  domain.StagingRepository
	store    domain.Store
	journal  domain.Journal
	eventBus domain.EventPublisher
	notifier domain.Notifier
	logger   *zerolog.Logger
}

func NewRecordService(staging domain.StagingRepository, store domain.Store, journal domain.Journal, eventBus domain.EventPublisher, notifier domain.Notifier, logger *zerolog.Logger) *RecordService {
	return &RecordService{
		staging:  staging,
		store:    store,
		journal:  journal,
		eventBus: eventBus,
		notifier: notifier,
		logger:   logger,
	}
}

// StageDeparture validates the departure against the alcohol gate and stores
// it in the session slot. A previously staged, unsubmitted departure is
// silently replaced.
func (s *RecordService) StageDeparture(ctx context.Context, sessionID string, dep models.Departure, confirmed bool) error {
	if err := triplog.GateDeparture(dep, confirmed); err != nil {
		metrics.IncAlcoholGateHit()
		s.logger.Warn().
			Str("session", sessionID).
			Int64("vehicle_id", dep.VehicleID).
			Msg("departure blocked by sobriety gate")
		return err
	}

	existing, err := s.staging.GetDeparture(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("check staging slot: %w", err)
	}
	if existing != nil {
		metrics.IncStagingOverwrite()
		s.logger.Info().Str("session", sessionID).Msg("replacing unsubmitted departure")
	}

	if err := s.staging.SetDeparture(ctx, sessionID, &dep); err != nil {
		return fmt.Errorf("stage departure: %w", err)
	}
	return nil
}

// PendingDeparture returns the staged departure for the session, nil when
// there is none.
func (s *RecordService) PendingDeparture(ctx context.Context, sessionID string) (*models.Departure, error) {
	return s.staging.GetDeparture(ctx, sessionID)
}

// DiscardDeparture drops the staged departure without composing a record.
func (s *RecordService) DiscardDeparture(ctx context.Context, sessionID string) error {
	return s.staging.ClearDeparture(ctx, sessionID)
}

// CompleteArrival composes the staged departure with arrival data, submits
// the record and clears the slot. The slot survives a failed submit so the
// arrival can be retried. The returned flag reports a post-trip alcohol
// warning; it never blocks submission.
func (s *RecordService) CompleteArrival(ctx context.Context, sessionID string, arr models.Arrival, reservationID *int64) (models.DrivingRecord, bool, error) {
	if err := triplog.ValidateArrival(arr); err != nil {
		return models.DrivingRecord{}, false, err
	}

	dep, err := s.staging.GetDeparture(ctx, sessionID)
	if err != nil {
		return models.DrivingRecord{}, false, fmt.Errorf("load staging slot: %w", err)
	}
	if dep == nil {
		return models.DrivingRecord{}, false, triplog.ErrNoPendingDeparture
	}

	record := triplog.Compose(*dep, arr)
	record.ReservationID = reservationID

	if err := s.store.CreateDrivingRecord(ctx, record); err != nil {
		// Слот не очищаем, чтобы можно было повторить отправку
		return models.DrivingRecord{}, false, fmt.Errorf("submit driving record: %w", err)
	}

	if err := s.journal.AppendRecord(ctx, record); err != nil {
		// Store submit succeeded; a journal miss only degrades stats.
		s.logger.Error().Err(err).Msg("failed to append record to journal")
	}

	if err := s.staging.ClearDeparture(ctx, sessionID); err != nil {
		s.logger.Error().Err(err).Str("session", sessionID).Msg("failed to clear staging slot")
	}

	metrics.IncRecordCompleted()

	flagged := record.BeforeCheck.Flagged() || record.AfterCheck.Flagged()
	payload := events.RecordEventPayload{
		VehicleID:  record.VehicleID,
		Driver:     record.DriverName,
		Date:       record.Date,
		DistanceKm: record.DistanceKm,
		Flagged:    flagged,
	}
	if err := s.eventBus.PublishJSON(events.EventRecordCompleted, payload); err != nil {
		s.logger.Error().Err(err).Msg("failed to publish record_completed")
	}

	warn := triplog.ArrivalWarning(arr)
	if warn {
		if err := s.eventBus.PublishJSON(events.EventAlcoholDetected, payload); err != nil {
			s.logger.Error().Err(err).Msg("failed to publish alcohol_detected")
		}
		s.notify(fmt.Sprintf("Post-trip alcohol warning: driver %s, vehicle %d, %s",
			record.DriverName, record.VehicleID, record.Date))
	}

	return record, warn, nil
}

func (s *RecordService) notify(text string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(text); err != nil {
		s.logger.Error().Err(err).Msg("failed to send notification")
	}
}
