package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fleetdesk/internal/domain"
	"fleetdesk/internal/models"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// MaintenanceJob runs the daily due-date scan and pushes a digest to the
// managers chat.
type MaintenanceJob struct {
	fleet    *FleetService
	notifier domain.Notifier
	cron     *cron.Cron
	schedule string
	logger   zerolog.Logger
}

func NewMaintenanceJob(fleet *FleetService, notifier domain.Notifier, schedule string, logger *zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		fleet:    fleet,
		notifier: notifier,
		cron:     cron.New(),
		schedule: schedule,
		logger:   logger.With().Str("component", "maintenance-job").Logger(),
	}
}

func (j *MaintenanceJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.Run); err != nil {
		return fmt.Errorf("schedule maintenance job: %w", err)
	}
	j.cron.Start()
	j.logger.Info().Str("schedule", j.schedule).Msg("maintenance job scheduled")
	return nil
}

func (j *MaintenanceJob) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
}

// Run executes one scan. Exposed so the cli can trigger it on demand.
func (j *MaintenanceJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	alerts, err := j.fleet.MaintenanceAlerts(ctx, models.Today())
	if err != nil {
		j.logger.Error().Err(err).Msg("maintenance scan failed")
		return
	}
	if len(alerts) == 0 {
		j.logger.Debug().Msg("no maintenance due")
		return
	}

	if err := j.notifier.Notify(formatAlerts(alerts)); err != nil {
		j.logger.Error().Err(err).Msg("failed to send maintenance digest")
	}
}

func formatAlerts(alerts []models.MaintenanceAlert) string {
	var b strings.Builder
	b.WriteString("Vehicles due for service:\n")
	for _, a := range alerts {
		marker := ""
		if a.Urgent {
			marker = " (!)"
		}
		fmt.Fprintf(&b, "- %s: %s due %s, %d days left%s\n",
			a.VehicleNumber, a.Kind, a.DueDate, a.DaysLeft, marker)
	}
	return b.String()
}
