package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv/autoload"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Workbook      WorkbookConfig
	Cache         CacheConfig
	Fallback      FallbackConfig
	Observability ObservabilityConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	RateLimitPerSecond int
	RateLimitBurst     int
	AllowedOrigins     []string
	RequestTimeout     time.Duration
}

// WorkbookConfig locates the spreadsheet exports the dashboard reads.
type WorkbookConfig struct {
	DataDir     string
	BackData    string // monthly/weekly targets, store performance, store areas, weekly meeting
	Forecast    string // month-end forecast workbook holding the summary sheet
	SalesReport string // daily line-item sales report
	OpenTimeout time.Duration
	SearchIndex string // bleve index path, empty for in-memory
}

type CacheConfig struct {
	TTL         time.Duration
	RefreshSpec string // cron spec, empty disables the refresh job
}

// FallbackConfig controls whether a sample dataset is served when a
// workbook cannot be opened. The response is always marked as sample data.
type FallbackConfig struct {
	SampleOnUnavailable bool
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	MetricsPath    string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "localhost"),
			Port:               getEnvAsInt("SERVER_PORT", 8080),
			RateLimitPerSecond: getEnvAsInt("SERVER_RATE_LIMIT_PER_SECOND", 50),
			RateLimitBurst:     getEnvAsInt("SERVER_RATE_LIMIT_BURST", 100),
			AllowedOrigins:     getEnvAsList("SERVER_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			RequestTimeout:     getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 60*time.Second),
		},
		Workbook: WorkbookConfig{
			DataDir:     getEnv("WORKBOOK_DATA_DIR", "./data"),
			BackData:    getEnv("WORKBOOK_BACKDATA", "backdata.xlsx"),
			Forecast:    getEnv("WORKBOOK_FORECAST", "ending_forecast.xlsx"),
			SalesReport: getEnv("WORKBOOK_SALES_REPORT", "sales_report.xlsx"),
			OpenTimeout: getEnvAsDuration("WORKBOOK_OPEN_TIMEOUT", 15*time.Second),
			SearchIndex: getEnv("WORKBOOK_SEARCH_INDEX", ""),
		},
		Cache: CacheConfig{
			TTL:         getEnvAsDuration("CACHE_TTL", 5*time.Minute),
			RefreshSpec: getEnv("CACHE_REFRESH_SPEC", "*/30 * * * *"),
		},
		Fallback: FallbackConfig{
			SampleOnUnavailable: getEnvAsBool("FALLBACK_SAMPLE_ON_UNAVAILABLE", false),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			MetricsPath:    getEnv("METRICS_PATH", "/metrics"),
		},
	}

	if cfg.Workbook.BackData == "" && cfg.Workbook.SalesReport == "" {
		return nil, errors.New("at least one of WORKBOOK_BACKDATA or WORKBOOK_SALES_REPORT is required")
	}

	if cfg.Cache.TTL <= 0 {
		return nil, errors.New("CACHE_TTL must be positive")
	}

	if cfg.Workbook.OpenTimeout <= 0 {
		return nil, errors.New("WORKBOOK_OPEN_TIMEOUT must be positive")
	}

	return cfg, nil
}

// Addr returns the listen address for the HTTP server
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
