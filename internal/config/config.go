package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	DriverMongoDB = "mongodb"
	DriverMemory  = "memory"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	MongoDB   MongoDBConfig
	Auth      AuthConfig
	Weather   WeatherConfig
	Sheets    SheetsConfig
	Scheduler SchedulerConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port           string
	Env            string
	ExposeErrors   bool
	AllowedOrigins []string
}

// StorageConfig selects the document store backing the API.
type StorageConfig struct {
	Driver string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// AuthConfig holds bearer token settings.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// WeatherConfig contains the Open-Meteo endpoints used by the forecast route.
type WeatherConfig struct {
	Enabled      bool
	GeocodingURL string
	ForecastURL  string
	Timeout      time.Duration
}

// SheetsConfig contains configuration required to export records to Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
}

// SchedulerConfig holds cron settings for background jobs.
type SchedulerConfig struct {
	RecurringSchedule string
	Timezone          string
}

// Development reports whether the server runs in development mode.
func (s ServerConfig) Development() bool {
	return s.Env == "development"
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// A missing .env is fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	env := getenvWithDefault("APP_ENV", "production")

	cfg := &Config{
		Server: ServerConfig{
			Port:           getenvWithDefault("APP_PORT", "5001"),
			Env:            env,
			ExposeErrors:   getenvBool("EXPOSE_ERRORS", env != "production"),
			AllowedOrigins: splitList(getenvWithDefault("CORS_ALLOWED_ORIGINS", "*")),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(getenvWithDefault("STORAGE_DRIVER", DriverMongoDB)),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "livestock"),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
		},
		Weather: WeatherConfig{
			Enabled:      getenvBool("WEATHER_ENABLED", true),
			GeocodingURL: getenvWithDefault("WEATHER_GEOCODING_URL", "https://geocoding-api.open-meteo.com/v1"),
			ForecastURL:  getenvWithDefault("WEATHER_FORECAST_URL", "https://api.open-meteo.com/v1"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
		},
		Scheduler: SchedulerConfig{
			RecurringSchedule: getenvWithDefault("RECURRING_CRON_SCHEDULE", "0 * * * *"),
			Timezone:          getenvWithDefault("TIMEZONE", "UTC"),
		},
	}

	var err error
	if cfg.Auth.TokenTTL, err = getenvDuration("JWT_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.Weather.Timeout, err = getenvDuration("WEATHER_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Storage.Driver {
	case DriverMongoDB:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided")
		}
		if c.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must be provided")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET must be provided")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}

	if c.Weather.Enabled {
		if c.Weather.GeocodingURL == "" || c.Weather.ForecastURL == "" {
			return errors.New("WEATHER_GEOCODING_URL and WEATHER_FORECAST_URL must not be empty")
		}
	}

	if c.Scheduler.RecurringSchedule == "" {
		return errors.New("RECURRING_CRON_SCHEDULE must be provided")
	}

	if c.Scheduler.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
