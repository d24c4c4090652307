package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/godilite/voting-tool/internal/domain"
	"go.uber.org/zap"
)

// Store backends.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
	BackendSheets = "sheets"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv                string
	HTTPPort              int
	GRPCPort              int
	GRPCReflectionEnabled bool

	StoreBackend          string
	DataDir               string
	DBDriver              string
	DBPath                string
	SheetsCredentialsFile string
	SheetsSpreadsheetID   string

	RedisAddr      string
	SessionTTL     time.Duration
	AdminTokenHash string
}

// LoadFromEnv loads configuration from environment variables. Values that
// do not parse are reported as ErrConfig.
func LoadFromEnv() (*Config, error) {
	var errs []error

	httpPort, err := strconv.Atoi(getEnv("HTTP_PORT", "8080"))
	if err != nil {
		errs = append(errs, fmt.Errorf("HTTP_PORT: %v", err))
	}

	grpcPort, err := strconv.Atoi(getEnv("GRPC_PORT", "50051"))
	if err != nil {
		errs = append(errs, fmt.Errorf("GRPC_PORT: %v", err))
	}

	reflection, err := strconv.ParseBool(getEnv("GRPC_REFLECTION_ENABLED", "false"))
	if err != nil {
		errs = append(errs, fmt.Errorf("GRPC_REFLECTION_ENABLED: %v", err))
	}

	sessionTTL, err := time.ParseDuration(getEnv("SESSION_TTL", "24h"))
	if err != nil {
		errs = append(errs, fmt.Errorf("SESSION_TTL: %v", err))
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfig, errors.Join(errs...))
	}

	return &Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		HTTPPort:              httpPort,
		GRPCPort:              grpcPort,
		GRPCReflectionEnabled: reflection,
		StoreBackend:          getEnv("STORE_BACKEND", BackendCSV),
		DataDir:               getEnv("DATA_DIR", "./data/votings"),
		DBDriver:              getEnv("DB_DRIVER", "sqlite3"),
		DBPath:                getEnv("DB_PATH", "./data/votings.db"),
		SheetsCredentialsFile: os.Getenv("SHEETS_CREDENTIALS_FILE"),
		SheetsSpreadsheetID:   os.Getenv("SHEETS_SPREADSHEET_ID"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		SessionTTL:            sessionTTL,
		AdminTokenHash:        os.Getenv("ADMIN_TOKEN_HASH"),
	}, nil
}

// Validate checks that the selected backend has what it needs.
func (c *Config) Validate() error {
	var errs []error

	for name, port := range map[string]int{"HTTP_PORT": c.HTTPPort, "GRPC_PORT": c.GRPCPort} {
		if port < 0 || port > 65535 {
			errs = append(errs, fmt.Errorf("%s %d out of range", name, port))
		}
	}
	if c.HTTPPort != 0 && c.HTTPPort == c.GRPCPort {
		errs = append(errs, fmt.Errorf("HTTP_PORT and GRPC_PORT are both %d", c.HTTPPort))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}

	switch c.StoreBackend {
	case BackendCSV:
		if c.DataDir == "" {
			errs = append(errs, errors.New("DATA_DIR is required for the csv backend"))
		}
	case BackendSQLite:
		if c.DBDriver == "" || c.DBPath == "" {
			errs = append(errs, errors.New("DB_DRIVER and DB_PATH are required for the sqlite backend"))
		}
	case BackendSheets:
		if c.SheetsCredentialsFile == "" {
			errs = append(errs, errors.New("SHEETS_CREDENTIALS_FILE is required for the sheets backend"))
		}
		if c.SheetsSpreadsheetID == "" {
			errs = append(errs, errors.New("SHEETS_SPREADSHEET_ID is required for the sheets backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", domain.ErrConfig, errors.Join(errs...))
	}
	return nil
}

// IsProduction reports whether APP_ENV selects production behavior.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
