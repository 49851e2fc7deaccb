// Package worker keeps the mirror spreadsheet eventually consistent with the
// remote store. Reservation changes enqueue a snapshot task for the affected
// date; the worker rebuilds that day's schedule sheet from a fresh fetch, so
// tasks are idempotent and safe to coalesce or replay.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"fleetdesk/internal/domain"
	"fleetdesk/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type snapshotTask struct {
	Date      models.Date `json:"date"`
	Attempt   int         `json:"attempt"`
	CreatedAt time.Time   `json:"created_at"`
}

type MirrorWorker struct {
	store         domain.ReservationLister
	writer        domain.ScheduleWriter
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan snapshotTask
	redisQueueKey string
	deadLetterKey string
	pollInterval  time.Duration
	logger        zerolog.Logger
}

// NewMirrorWorker builds a worker with sane defaults. redisClient may be nil;
// the worker then runs purely on the in-memory queue.
func NewMirrorWorker(store domain.ReservationLister, writer domain.ScheduleWriter, redisClient *redis.Client, retry RetryPolicy, logger *zerolog.Logger) *MirrorWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 1 * time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}

	return &MirrorWorker{
		store:         store,
		writer:        writer,
		redis:         redisClient,
		retryPolicy:   retry,
		queue:         make(chan snapshotTask, models.WorkerQueueSize),
		redisQueueKey: "mirror:queue",
		deadLetterKey: "mirror:deadletter",
		pollInterval:  2 * time.Second,
		logger:        logger.With().Str("component", "mirror-worker").Logger(),
	}
}

// EnqueueSnapshot schedules a rebuild of the mirror sheet for the given date.
func (w *MirrorWorker) EnqueueSnapshot(ctx context.Context, date models.Date) error {
	task := snapshotTask{Date: date, CreatedAt: time.Now()}

	// Try redis first for durability.
	if w.redis != nil {
		if err := w.pushRedis(ctx, task); err != nil {
			w.logger.Warn().Err(err).Msg("redis push failed, fallback to memory queue")
		} else {
			return nil
		}
	}

	select {
	case w.queue <- task:
		return nil
	default:
		w.logger.Warn().Str("date", task.Date.String()).Msg("in-memory queue full, snapshot dropped")
		return errors.New("mirror queue full")
	}
}

// Start launches the main loop; stops when ctx is done.
func (w *MirrorWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("mirror worker started")
	defer w.logger.Info().Msg("mirror worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if t, ok := w.tryLocalQueue(); ok {
			w.processTask(ctx, t)
			continue
		}

		if t, ok := w.tryRedis(ctx); ok {
			w.processTask(ctx, t)
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.pollInterval):
		}
	}
}

func (w *MirrorWorker) tryLocalQueue() (snapshotTask, bool) {
	select {
	case t := <-w.queue:
		return t, true
	default:
		return snapshotTask{}, false
	}
}

func (w *MirrorWorker) tryRedis(ctx context.Context) (snapshotTask, bool) {
	if w.redis == nil {
		return snapshotTask{}, false
	}
	res, err := w.redis.BRPop(ctx, time.Second, w.redisQueueKey).Result()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, redis.Nil) {
			return snapshotTask{}, false
		}
		w.logger.Error().Err(err).Msg("redis BRPOP error")
		return snapshotTask{}, false
	}
	if len(res) != 2 {
		return snapshotTask{}, false
	}
	var task snapshotTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		w.logger.Error().Err(err).Msg("decode redis task")
		return snapshotTask{}, false
	}
	return task, true
}

func (w *MirrorWorker) processTask(ctx context.Context, task snapshotTask) {
	if err := w.snapshot(ctx, task.Date); err != nil {
		w.retryOrFail(ctx, task, err)
		return
	}
	w.logger.Debug().Str("date", task.Date.String()).Msg("mirror snapshot written")
}

func (w *MirrorWorker) snapshot(ctx context.Context, date models.Date) error {
	vehicles, err := w.store.GetVehicles(ctx)
	if err != nil {
		return err
	}
	reservations, err := w.store.GetReservations(ctx, &date)
	if err != nil {
		return err
	}
	return w.writer.WriteSchedule(ctx, date, vehicles, reservations)
}

func (w *MirrorWorker) retryOrFail(ctx context.Context, task snapshotTask, cause error) {
	task.Attempt++
	if task.Attempt >= w.retryPolicy.MaxRetries {
		w.logger.Error().Err(cause).Str("date", task.Date.String()).Msg("snapshot failed, giving up")
		w.pushDeadLetter(ctx, task)
		return
	}

	delay := w.retryPolicy.NextDelay(task.Attempt)
	w.logger.Warn().Err(cause).
		Str("date", task.Date.String()).
		Int("attempt", task.Attempt).
		Dur("delay", delay).
		Msg("snapshot failed, will retry")

	select {
	case <-ctx.Done():
	case <-time.After(delay):
	}

	select {
	case w.queue <- task:
	default:
		w.pushDeadLetter(ctx, task)
	}
}

func (w *MirrorWorker) pushRedis(ctx context.Context, task snapshotTask) error {
	if w.redis == nil {
		return errors.New("redis client is nil")
	}
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, w.redisQueueKey, data).Err()
}

func (w *MirrorWorker) pushDeadLetter(ctx context.Context, task snapshotTask) {
	if w.redis == nil {
		return
	}
	data, err := json.Marshal(task)
	if err != nil {
		w.logger.Error().Err(err).Msg("encode deadletter task")
		return
	}
	if err := w.redis.LPush(ctx, w.deadLetterKey, data).Err(); err != nil {
		w.logger.Error().Err(err).Msg("deadletter push failed")
	}
}
