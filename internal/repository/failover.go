package repository

import (
	"context"
	"sync/atomic"
	"time"

	"fleetdesk/internal/domain"
	"fleetdesk/internal/models"

	"github.com/rs/zerolog"
)

// FailoverStagingRepository prefers the primary (Redis) slot store and falls
// back to the in-memory one when the primary errors, probing for recovery
// once a minute.
type FailoverStagingRepository struct {
	primary   domain.StagingRepository
	fallback  domain.StagingRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck time.Time
}

func NewFailoverStagingRepository(primary, fallback domain.StagingRepository, logger *zerolog.Logger) *FailoverStagingRepository {
	return &FailoverStagingRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverStagingRepository) GetDeparture(ctx context.Context, sessionID string) (*models.Departure, error) {
	if !r.isDown.Load() {
		dep, err := r.primary.GetDeparture(ctx, sessionID)
		if err == nil {
			return dep, nil
		}
		r.logger.Error().Err(err).Msg("Primary staging repository failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	// Try to recover after 1 minute
	if r.isDown.Load() && time.Since(r.lastCheck) > time.Minute {
		dep, err := r.primary.GetDeparture(ctx, sessionID)
		if err == nil {
			r.isDown.Store(false)
			return dep, nil
		}
		r.lastCheck = time.Now()
	}

	return r.fallback.GetDeparture(ctx, sessionID)
}

func (r *FailoverStagingRepository) SetDeparture(ctx context.Context, sessionID string, dep *models.Departure) error {
	if !r.isDown.Load() {
		err := r.primary.SetDeparture(ctx, sessionID, dep)
		if err == nil {
			return nil
		}
		r.logger.Error().Err(err).Msg("Primary staging repository failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	return r.fallback.SetDeparture(ctx, sessionID, dep)
}

func (r *FailoverStagingRepository) ClearDeparture(ctx context.Context, sessionID string) error {
	if !r.isDown.Load() {
		err := r.primary.ClearDeparture(ctx, sessionID)
		if err == nil {
			return nil
		}
		r.logger.Error().Err(err).Msg("Primary staging repository failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	return r.fallback.ClearDeparture(ctx, sessionID)
}
