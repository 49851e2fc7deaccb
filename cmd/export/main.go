// Command export renders a month of journaled driving records into an xlsx
// workbook.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"fleetdesk/internal/config"
	"fleetdesk/internal/export"
	"fleetdesk/internal/journal"
	"fleetdesk/internal/logging"
	"fleetdesk/internal/models"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	var (
		monthFlag  = flag.String("month", "", "month to export as YYYY-MM (default: current month)")
		outputFlag = flag.String("out", "", "output file path (default: <exports_path>/driving-log-YYYY-MM.xlsx)")
	)
	flag.Parse()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}
	logger := baseLogger.With().Str("component", "export").Logger()

	month := models.Today()
	if *monthFlag != "" {
		parsed, err := time.Parse("2006-01", *monthFlag)
		if err != nil {
			return fmt.Errorf("invalid -month, expected YYYY-MM: %w", err)
		}
		month = models.DateOf(parsed)
	}

	output := *outputFlag
	if output == "" {
		dir := cfg.Exports.Path
		if dir == "" {
			dir = "exports"
		}
		output = filepath.Join(dir, fmt.Sprintf("driving-log-%04d-%02d.xlsx", month.Year, int(month.Month)))
	}
	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	journalDB, err := journal.New(cfg.Journal.Path, &logger)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer journalDB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	records, err := journalDB.RecordsForMonth(ctx, month)
	if err != nil {
		return fmt.Errorf("read records: %w", err)
	}

	if err := export.WriteDrivingLog(records, output); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	logger.Info().Int("records", len(records)).Str("output", output).Msg("export complete")
	return nil
}
