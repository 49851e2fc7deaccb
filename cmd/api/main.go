package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fleetdesk/internal/api"
	"fleetdesk/internal/config"
	"fleetdesk/internal/domain"
	"fleetdesk/internal/events"
	"fleetdesk/internal/journal"
	"fleetdesk/internal/logging"
	"fleetdesk/internal/metrics"
	"fleetdesk/internal/models"
	"fleetdesk/internal/notify"
	"fleetdesk/internal/repository"
	"fleetdesk/internal/service"
	"fleetdesk/internal/store"
	"fleetdesk/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	gas, err := store.NewGASClient(cfg.Store, &logger)
	if err != nil {
		return fmt.Errorf("init store client: %w", err)
	}

	journalDB, err := journal.New(cfg.Journal.Path, &logger)
	if err != nil {
		return fmt.Errorf("init journal: %w", err)
	}
	defer journalDB.Close()

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer repository.Close(redisClient)
	}

	staging := initStaging(cfg, redisClient, &logger)

	notifier, err := notify.NewTelegramNotifier(cfg.Notify, &logger)
	if err != nil {
		return fmt.Errorf("init notifier: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := events.NewEventBus()
	bus.Subscribe(events.EventAlcoholDetected, func(e *events.Event) error {
		logger.Warn().RawJSON("payload", e.Payload).Msg("alcohol detected")
		return nil
	})

	mirror := initMirror(ctx, cfg, gas, redisClient, &logger)

	reservations := service.NewReservationService(gas, bus, mirror, &logger)
	records := service.NewRecordService(staging, gas, journalDB, bus, notifier, &logger)
	fleet := service.NewFleetService(gas, &logger)
	dashboard := service.NewDashboardService(gas, journalDB, fleet, &logger)

	if roster := loadFallbackRoster(cfg, &logger); len(roster) > 0 {
		fleet.SetFallbackRoster(roster)
	}

	maintenance := service.NewMaintenanceJob(fleet, notifier, cfg.Jobs.MaintenanceSchedule, &logger)
	if err := maintenance.Start(); err != nil {
		return fmt.Errorf("start maintenance job: %w", err)
	}
	defer maintenance.Stop()

	startMetrics(ctx, cfg, &logger)

	httpServer := api.NewHTTPServer(cfg.API, reservations, records, fleet, dashboard, &logger)
	return startServer(ctx, httpServer, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func loadFallbackRoster(cfg *config.Config, logger *zerolog.Logger) []models.Vehicle {
	path := cfg.Fleet.VehiclesFile
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("fallback roster not loaded")
		return nil
	}

	var rosterConfig struct {
		Vehicles []models.Vehicle `yaml:"vehicles"`
	}
	if err := yaml.Unmarshal(data, &rosterConfig); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("fallback roster not parsed")
		return nil
	}

	logger.Info().Int("count", len(rosterConfig.Vehicles)).Msg("fallback roster loaded")
	return rosterConfig.Vehicles
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(context.Background(), redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// initStaging builds the departure slot storage: redis with in-memory
// failover when redis is configured, plain in-memory otherwise.
func initStaging(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) domain.StagingRepository {
	memory := repository.NewMemoryStagingRepository(cfg.StagingTTL())
	if redisClient == nil {
		return memory
	}
	primary := repository.NewRedisStagingRepository(redisClient, cfg.StagingTTL())
	return repository.NewFailoverStagingRepository(primary, memory, logger)
}

func initMirror(ctx context.Context, cfg *config.Config, gas *store.GASClient, redisClient *redis.Client, logger *zerolog.Logger) domain.SyncWorker {
	if !cfg.Jobs.MirrorEnabled {
		return nil
	}
	if cfg.Google.GoogleCredentialsFile == "" || cfg.Google.MirrorSpreadsheetID == "" {
		logger.Warn().Msg("mirror enabled but google config incomplete, skipping")
		return nil
	}

	writer, err := store.NewSheetsMirror(cfg.Google)
	if err != nil {
		logger.Warn().Err(err).Msg("mirror init failed, continuing without mirror")
		return nil
	}

	mirrorWorker := worker.NewMirrorWorker(gas, writer, redisClient, worker.RetryPolicy{}, logger)
	go mirrorWorker.Start(ctx)

	logger.Info().Msg("mirror worker started")
	return mirrorWorker
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	go func() {
		if !cfg.API.HTTP.Enabled {
			return
		}
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}
