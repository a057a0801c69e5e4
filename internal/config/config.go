package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Supported fact-table backends.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Visual tuning for rendered flow curves.
type FlowStyle struct {
	ControlDivisor  float64
	Samples         int
	ShareWidthScale float64
	PairWidthScale  float64
	MaxWidth        float64
}

// Runtime configuration read from the environment.
type Config struct {
	Port                string
	StoreDriver         string
	DBPath              string
	DatabaseURL         string
	ODFile              string
	StationsPath        string
	LinesPath           string
	StationNameProperty string
	CORSOrigin          string
	QueryTimeout        time.Duration
	MaxSessions         int
	SessionIdle         time.Duration
	LogLevel            string
	Flow                FlowStyle
}

// Get returns the environment value for key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Load reads the configuration. Call godotenv.Load beforehand to pick up a .env file.
func Load() (Config, error) {
	cfg := Config{
		Port:                Get("PORT", "8080"),
		StoreDriver:         strings.ToLower(Get("STORE_DRIVER", DriverSQLite)),
		DBPath:              Get("DB_PATH", "data/od.db"),
		DatabaseURL:         Get("DATABASE_URL", ""),
		ODFile:              Get("OD_FILE", "data/od/*.csv"),
		StationsPath:        Get("STATIONS_PATH", "data/metro-station.json"),
		LinesPath:           Get("LINES_PATH", "data/metro-line.json"),
		StationNameProperty: Get("STATION_NAME_PROPERTY", "name"),
		CORSOrigin:          Get("CORS_ORIGIN", "http://localhost:5173"),
		LogLevel:            strings.ToLower(Get("LOG_LEVEL", "info")),
	}

	var errs []error

	switch cfg.StoreDriver {
	case DriverSQLite, DriverMemory:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when STORE_DRIVER=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER %q is not one of sqlite, postgres, memory", cfg.StoreDriver))
	}

	timeout, err := time.ParseDuration(Get("QUERY_TIMEOUT", "10s"))
	if err != nil || timeout <= 0 {
		errs = append(errs, fmt.Errorf("QUERY_TIMEOUT must be a positive duration: %q", Get("QUERY_TIMEOUT", "")))
	}
	cfg.QueryTimeout = timeout

	cfg.MaxSessions = getInt("RENDER_SESSION_LIMIT", 10000, &errs)
	if cfg.MaxSessions <= 0 {
		errs = append(errs, errors.New("RENDER_SESSION_LIMIT must be positive"))
	}
	idle, err := time.ParseDuration(Get("RENDER_SESSION_IDLE", "1h"))
	if err != nil || idle <= 0 {
		errs = append(errs, fmt.Errorf("RENDER_SESSION_IDLE must be a positive duration: %q", Get("RENDER_SESSION_IDLE", "")))
	}
	cfg.SessionIdle = idle

	cfg.Flow.ControlDivisor = getFloat("CURVE_CONTROL_DIVISOR", 1.996, &errs)
	cfg.Flow.Samples = getInt("CURVE_SAMPLES", 32, &errs)
	cfg.Flow.ShareWidthScale = getFloat("FLOW_SHARE_WIDTH_SCALE", 100, &errs)
	cfg.Flow.PairWidthScale = getFloat("FLOW_PAIR_WIDTH_SCALE", 0.02, &errs)
	cfg.Flow.MaxWidth = getFloat("FLOW_MAX_WIDTH", 50, &errs)

	if cfg.Flow.ControlDivisor == 0 {
		errs = append(errs, errors.New("CURVE_CONTROL_DIVISOR must be non-zero"))
	}
	if cfg.Flow.Samples < 3 {
		errs = append(errs, errors.New("CURVE_SAMPLES must be at least 3"))
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("load config: %w", errors.Join(errs...))
	}

	return cfg, nil
}

func getFloat(key string, fallback float64, errs *[]error) float64 {
	raw := Get(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}

func getInt(key string, fallback int, errs *[]error) int {
	raw := Get(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}
