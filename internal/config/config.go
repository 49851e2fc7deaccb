package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Store      StoreConfig      `yaml:"store"`
	Google     GoogleConfig     `yaml:"google"`
	Redis      RedisConfig      `yaml:"redis"`
	Journal    JournalConfig    `yaml:"journal"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Notify     NotifyConfig     `yaml:"notify"`
	Jobs       JobsConfig       `yaml:"jobs"`
	Exports    ExportConfig     `yaml:"exports"`
	Fleet      FleetConfig      `yaml:"fleet"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

// StoreConfig points at the spreadsheet-backed web app that owns the data.
type StoreConfig struct {
	BaseURL        string        `yaml:"base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type GoogleConfig struct {
	GoogleCredentialsFile string `yaml:"credentials_file"`
	MirrorSpreadsheetID   string `yaml:"mirror_spreadsheet_id"`
	MirrorSheetName       string `yaml:"mirror_sheet_name"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type JournalConfig struct {
	Path string `yaml:"path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	Enabled   bool               `yaml:"enabled"`
	HTTP      APIHTTPConfig      `yaml:"http"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type APIAuthConfig struct {
	Enabled       bool           `yaml:"enabled"`
	HeaderAPIKey  string         `yaml:"header_api_key"`
	HeaderSession string         `yaml:"header_session"`
	APIKeys       []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type NotifyConfig struct {
	TelegramToken string `yaml:"telegram_token"`
	ChatID        int64  `yaml:"chat_id"`
}

type JobsConfig struct {
	// MaintenanceSchedule is a cron spec for the daily due-date scan.
	MaintenanceSchedule string `yaml:"maintenance_schedule"`
	MirrorEnabled       bool   `yaml:"mirror_enabled"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type FleetConfig struct {
	// VehiclesFile is the roster fallback used when the remote store is
	// unreachable at startup.
	VehiclesFile   string `yaml:"vehicles_file"`
	StagingTTLSecs int    `yaml:"staging_ttl_seconds"`
}

func Load(configPath string) (*Config, error) {
	// Загружаем .env файл если существует
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Store.BaseURL == "" {
		return errors.New("store base_url is required")
	}

	if c.Journal.Path == "" {
		return errors.New("journal path is required")
	}

	if c.Notify.TelegramToken != "" && c.Notify.ChatID == 0 {
		return errors.New("notify chat_id is required when telegram_token is set")
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	// auth enabled by default when API is enabled
	if !c.API.Auth.Enabled {
		c.API.Auth.Enabled = true
	}
	if !c.API.HTTP.Enabled && c.API.Enabled {
		c.API.HTTP.Enabled = true
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.API.Auth.HeaderSession == "" {
		c.API.Auth.HeaderSession = "x-session-id"
	}

	if c.Store.RequestTimeout == 0 {
		c.Store.RequestTimeout = 15 * time.Second
	}
	if c.Google.MirrorSheetName == "" {
		c.Google.MirrorSheetName = "Schedule"
	}
	if c.Jobs.MaintenanceSchedule == "" {
		c.Jobs.MaintenanceSchedule = "0 9 * * *"
	}
	if c.Fleet.StagingTTLSecs == 0 {
		c.Fleet.StagingTTLSecs = 24 * 60 * 60
	}
}

// StagingTTL returns the staging slot lifetime as a duration.
func (c *Config) StagingTTL() time.Duration {
	return time.Duration(c.Fleet.StagingTTLSecs) * time.Second
}
