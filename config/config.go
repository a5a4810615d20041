package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"pension720/database"

	"github.com/joho/godotenv"
)

// Storage backends
const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

// DefaultSourceURL is the public winning number history page
const DefaultSourceURL = "https://www.dhlottery.co.kr/gameResult.do?method=win720"

// Config holds all application configuration
type Config struct {
	// Source configuration
	SourceURL       string
	FetchTimeout    time.Duration
	FetchMaxRetries int
	UserAgent       string

	// Run configuration
	SkipFetch    bool
	TicketCount  int   // 0 skips generation
	Cycle        int64 // Drives deterministic variation between runs
	Seed         string
	OutputFormat string // "plain" or "markdown"
	MaxBonusGap  int    // Widest character gap between a primary line and its bonus line

	// Storage configuration
	StorageBackend string // "file" or "postgres"
	HistoryPath    string
	FrequencyPath  string

	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// NATS configuration
	NATSServers string // NATS server addresses (comma-separated); empty disables publishing

	// OpenTelemetry configuration
	OTelEnabled              bool
	OTelExporterType         string // "console", "otlp" or "none"
	OTelOTLPEndpoint         string
	OTelServiceName          string
	OTelExportIntervalMillis int

	// Logging
	LogLevel  string
	LogFormat string // "text" or "json"

	// Environment
	Environment string // "development" or "production"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// Load reads the configuration without touching the global instance
func Load() (*Config, error) {
	return load()
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// load loads configuration from environment variables.
// A .env file in the working directory is read first; real environment variables win.
func load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		// Source
		SourceURL:       getEnvWithDefault("SOURCE_URL", DefaultSourceURL),
		FetchTimeout:    time.Duration(getIntWithDefault("FETCH_TIMEOUT_SECONDS", 20)) * time.Second,
		FetchMaxRetries: getIntWithDefault("FETCH_MAX_RETRIES", 3),
		UserAgent:       getEnvWithDefault("USER_AGENT", "Mozilla/5.0 (compatible; pension720/1.0)"),

		// Run
		SkipFetch:    getBoolWithDefault("SKIP_FETCH", false),
		TicketCount:  getIntWithDefault("TICKET_COUNT", 5),
		Seed:         getEnvWithDefault("SEED", "pension720"),
		OutputFormat: getEnvWithDefault("OUTPUT_FORMAT", "plain"),
		MaxBonusGap:  getIntWithDefault("MAX_BONUS_GAP", 250),

		// Storage
		StorageBackend: getEnvWithDefault("STORAGE_BACKEND", StorageFile),
		HistoryPath:    getEnvWithDefault("HISTORY_PATH", "data/history.json"),
		FrequencyPath:  getEnvWithDefault("FREQUENCY_PATH", "data/frequency.json"),

		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// NATS
		NATSServers: os.Getenv("NATS_SERVERS"),

		// OpenTelemetry
		OTelEnabled:              getBoolWithDefault("OTEL_ENABLED", false),
		OTelExporterType:         getEnvWithDefault("OTEL_EXPORTER_TYPE", "console"),
		OTelOTLPEndpoint:         getEnvWithDefault("OTEL_OTLP_ENDPOINT", "otel-collector:4317"),
		OTelServiceName:          getEnvWithDefault("OTEL_SERVICE_NAME", "pension720"),
		OTelExportIntervalMillis: getIntWithDefault("OTEL_EXPORT_INTERVAL_MILLIS", 10000),

		// Logging
		LogLevel:  getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvWithDefault("LOG_FORMAT", "text"),

		// Environment
		Environment: getEnvWithDefault("ENVIRONMENT", "development"),
	}

	if cycle := os.Getenv("CYCLE"); cycle != "" {
		parsed, err := strconv.ParseInt(cycle, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("CYCLE must be an integer: %w", err)
		}
		config.Cycle = parsed
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks values that would only fail later in the run
func (c *Config) Validate() error {
	if c.TicketCount < 0 {
		return fmt.Errorf("TICKET_COUNT must not be negative, got %d", c.TicketCount)
	}
	if c.OutputFormat != "plain" && c.OutputFormat != "markdown" {
		return fmt.Errorf("OUTPUT_FORMAT must be plain or markdown, got %q", c.OutputFormat)
	}
	if c.MaxBonusGap <= 0 {
		return fmt.Errorf("MAX_BONUS_GAP must be positive, got %d", c.MaxBonusGap)
	}

	switch c.StorageBackend {
	case StorageFile:
		if c.HistoryPath == "" || c.FrequencyPath == "" {
			return fmt.Errorf("HISTORY_PATH and FREQUENCY_PATH are required for the file backend")
		}
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
		// If DatabaseName is provided, ensure it's not empty
		if c.DatabaseName != "" && strings.TrimSpace(c.DatabaseName) == "" {
			return fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be %s or %s, got %q", StorageFile, StoragePostgres, c.StorageBackend)
	}

	if !c.SkipFetch && c.SourceURL == "" {
		return fmt.Errorf("SOURCE_URL is required unless SKIP_FETCH is set")
	}
	return nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntWithDefault falls back to the default when the variable is unset or not a number
func getIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		SourceURL:        "http://localhost/draws",
		FetchTimeout:     5 * time.Second,
		FetchMaxRetries:  1,
		TicketCount:      5,
		Seed:             "test",
		OutputFormat:     "plain",
		MaxBonusGap:      250,
		StorageBackend:   StorageFile,
		HistoryPath:      "history.json",
		FrequencyPath:    "frequency.json",
		OTelExporterType: "none",
		OTelServiceName:  "pension720-test",
		LogLevel:         "info",
		LogFormat:        "text",
		Environment:      "test",
	}
}
