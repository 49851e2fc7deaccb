package repository

import (
	"context"
	"sync"
	"time"

	"fleetdesk/internal/models"
)

type memoryEntry struct {
	departure *models.Departure
	expiresAt time.Time
}

// MemoryStagingRepository keeps departure slots in process memory. Used as
// the fallback when Redis is unavailable and in tests.
type MemoryStagingRepository struct {
	slots sync.Map
	ttl   time.Duration
}

func NewMemoryStagingRepository(ttl time.Duration) *MemoryStagingRepository {
	return &MemoryStagingRepository{ttl: ttl}
}

func (r *MemoryStagingRepository) GetDeparture(ctx context.Context, sessionID string) (*models.Departure, error) {
	val, ok := r.slots.Load(sessionID)
	if !ok {
		return nil, nil
	}
	entry := val.(*memoryEntry)
	if r.ttl > 0 && time.Now().After(entry.expiresAt) {
		r.slots.Delete(sessionID)
		return nil, nil
	}
	return entry.departure, nil
}

func (r *MemoryStagingRepository) SetDeparture(ctx context.Context, sessionID string, dep *models.Departure) error {
	r.slots.Store(sessionID, &memoryEntry{
		departure: dep,
		expiresAt: time.Now().Add(r.ttl),
	})
	return nil
}

func (r *MemoryStagingRepository) ClearDeparture(ctx context.Context, sessionID string) error {
	r.slots.Delete(sessionID)
	return nil
}
