package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/lorrc/service-desk-dashboard/internal/core/domain"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Dashboard configuration
	Dashboard DashboardConfig

	// Operator seeded at startup
	Operator OperatorConfig

	// JWT configuration
	JWT JWTConfig

	// Rate limiting configuration
	RateLimit RateLimitConfig

	// WebSocket configuration
	WebSocket WebSocketConfig

	// Logging configuration
	Logging LoggingConfig

	// Application metadata
	App AppConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database configuration. An empty URL means records
// come from the dashboard data source and operators from configuration.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	AutoMigrate     bool
	MigrationsPath  string
}

// DashboardConfig holds the field roles, labels and timing of the dashboard
type DashboardConfig struct {
	DataSource     string // JSON file path or http(s) URL
	SourceTimeout  time.Duration
	GroupField     string
	ValueField     string
	DateField      string
	StartField     string
	PriorityField  string
	RatingField    string
	PriorityLabels []string
	RatingLabels   []string
	TableColumns   []string
	GoodBand       float64 // averages below are good
	MediumBand     float64 // averages below are medium, otherwise bad
	IdleDelay      time.Duration
	IdleCeiling    time.Duration
}

// OperatorConfig holds the operator account created at startup
type OperatorConfig struct {
	ID           string
	Email        string
	PasswordHash string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret         string
	AccessTokenTTL time.Duration
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstSize         int
	AuthRPS           float64 // Stricter limit for auth endpoints
	AuthBurst         int
	InteractionRPS    float64 // Per-operator limit for filter interactions
	InteractionBurst  int
}

// WebSocketConfig holds WebSocket configuration
type WebSocketConfig struct {
	AllowedOrigins  []string
	ReadBufferSize  int
	WriteBufferSize int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := FromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FromEnv reads the configuration from the environment without validating it
func FromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", ":8080"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getDurationOrDefault("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getIntOrDefault("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getIntOrDefault("DB_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: getDurationOrDefault("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: getDurationOrDefault("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			AutoMigrate:     getBoolOrDefault("DB_AUTO_MIGRATE", true),
			MigrationsPath:  getEnvOrDefault("DB_MIGRATIONS_PATH", "migrations"),
		},
		Dashboard: DashboardConfig{
			DataSource:     getEnvOrDefault("DASHBOARD_DATA_SOURCE", "dados_atendimento.json"),
			SourceTimeout:  getDurationOrDefault("DASHBOARD_SOURCE_TIMEOUT", 30*time.Second),
			GroupField:     getEnvOrDefault("DASHBOARD_GROUP_FIELD", domain.FieldAgent),
			ValueField:     getEnvOrDefault("DASHBOARD_VALUE_FIELD", domain.FieldResolutionHours),
			DateField:      getEnvOrDefault("DASHBOARD_DATE_FIELD", domain.FieldRequestedAt),
			StartField:     getEnvOrDefault("DASHBOARD_START_FIELD", domain.FieldStartHours),
			PriorityField:  getEnvOrDefault("DASHBOARD_PRIORITY_FIELD", domain.FieldPriority),
			RatingField:    getEnvOrDefault("DASHBOARD_RATING_FIELD", domain.FieldRating),
			PriorityLabels: getStringSliceOrDefault("DASHBOARD_PRIORITY_LABELS", []string{"Alta", "Média", "Baixa"}),
			RatingLabels:   getStringSliceOrDefault("DASHBOARD_RATING_LABELS", []string{"Ótimo", "Bom", "Regular", "Ruim"}),
			TableColumns:   getStringSliceOrDefault("DASHBOARD_TABLE_COLUMNS", nil),
			GoodBand:       getFloatOrDefault("DASHBOARD_GOOD_BAND", 10),
			MediumBand:     getFloatOrDefault("DASHBOARD_MEDIUM_BAND", 20),
			IdleDelay:      getDurationOrDefault("DASHBOARD_IDLE_DELAY", 50*time.Millisecond),
			IdleCeiling:    getDurationOrDefault("DASHBOARD_IDLE_CEILING", 500*time.Millisecond),
		},
		Operator: OperatorConfig{
			ID:           os.Getenv("OPERATOR_ID"),
			Email:        os.Getenv("OPERATOR_EMAIL"),
			PasswordHash: os.Getenv("OPERATOR_PASSWORD_HASH"),
		},
		JWT: JWTConfig{
			Secret:         os.Getenv("JWT_SECRET"),
			AccessTokenTTL: getDurationOrDefault("JWT_ACCESS_TOKEN_TTL", 8*time.Hour),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getBoolOrDefault("RATE_LIMIT_ENABLED", true),
			RequestsPerSecond: getFloatOrDefault("RATE_LIMIT_RPS", 10),
			BurstSize:         getIntOrDefault("RATE_LIMIT_BURST", 20),
			AuthRPS:           getFloatOrDefault("RATE_LIMIT_AUTH_RPS", 1),
			AuthBurst:         getIntOrDefault("RATE_LIMIT_AUTH_BURST", 5),
			InteractionRPS:    getFloatOrDefault("RATE_LIMIT_INTERACTION_RPS", 20),
			InteractionBurst:  getIntOrDefault("RATE_LIMIT_INTERACTION_BURST", 40),
		},
		WebSocket: WebSocketConfig{
			AllowedOrigins:  getStringSliceOrDefault("WS_ALLOWED_ORIGINS", []string{}),
			ReadBufferSize:  getIntOrDefault("WS_READ_BUFFER_SIZE", 1024),
			WriteBufferSize: getIntOrDefault("WS_WRITE_BUFFER_SIZE", 4096),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
		App: AppConfig{
			Name:        getEnvOrDefault("APP_NAME", "service-desk-dashboard"),
			Version:     getEnvOrDefault("APP_VERSION", "dev"),
			Environment: getEnvOrDefault("APP_ENV", "development"),
		},
	}
}

// Validate validates the configuration. Unset field roles are not an error
// here: the dashboard reports them and keeps serving placeholders.
func (c *Config) Validate() error {
	var errs []string

	// Required fields
	if c.JWT.Secret == "" {
		errs = append(errs, "JWT_SECRET is required")
	}

	if c.Database.URL == "" {
		if c.Dashboard.DataSource == "" {
			errs = append(errs, "DASHBOARD_DATA_SOURCE is required when DATABASE_URL is not set")
		}
		if c.Operator.Email == "" || c.Operator.PasswordHash == "" {
			errs = append(errs, "OPERATOR_EMAIL and OPERATOR_PASSWORD_HASH are required when DATABASE_URL is not set")
		}
	}

	if (c.Operator.Email == "") != (c.Operator.PasswordHash == "") {
		errs = append(errs, "OPERATOR_EMAIL and OPERATOR_PASSWORD_HASH must be set together")
	}

	if c.Operator.ID != "" {
		if _, err := uuid.Parse(c.Operator.ID); err != nil {
			errs = append(errs, "OPERATOR_ID must be a UUID")
		}
	}

	// Security validations
	if c.App.Environment == "production" {
		if len(c.JWT.Secret) < 32 {
			errs = append(errs, "JWT_SECRET must be at least 32 characters in production")
		}

		if len(c.WebSocket.AllowedOrigins) == 0 {
			errs = append(errs, "WS_ALLOWED_ORIGINS must be set in production")
		}
	}

	// Logical validations
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		errs = append(errs, "DB_MAX_IDLE_CONNS cannot be greater than DB_MAX_OPEN_CONNS")
	}

	if c.Dashboard.GoodBand >= c.Dashboard.MediumBand {
		errs = append(errs, "DASHBOARD_GOOD_BAND must be lower than DASHBOARD_MEDIUM_BAND")
	}

	if c.Dashboard.IdleDelay < 0 {
		errs = append(errs, "DASHBOARD_IDLE_DELAY cannot be negative")
	}

	if c.Dashboard.IdleCeiling < c.Dashboard.IdleDelay {
		errs = append(errs, "DASHBOARD_IDLE_CEILING cannot be lower than DASHBOARD_IDLE_DELAY")
	}

	if len(errs) > 0 {
		return errors.New("configuration errors:\n  - " + strings.Join(errs, "\n  - "))
	}

	return nil
}

// Roles returns the configured field roles.
func (c *Config) Roles() domain.FieldRoles {
	return domain.FieldRoles{
		GroupField: c.Dashboard.GroupField,
		ValueField: c.Dashboard.ValueField,
		DateField:  c.Dashboard.DateField,
	}
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Helper functions

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getStringSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// String returns a redacted string representation of the config (safe for logging)
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Server: %s, DB: %s, Source: %s, JWT: [REDACTED], RateLimit: %v, Environment: %s}",
		c.Server.Port,
		redactURL(c.Database.URL),
		redactURL(c.Dashboard.DataSource),
		c.RateLimit.Enabled,
		c.App.Environment,
	)
}

// redactURL redacts credentials from a URL. Values without credentials,
// such as file paths, are returned unchanged.
func redactURL(url string) string {
	if url == "" {
		return ""
	}
	if idx := strings.Index(url, "@"); idx > 0 {
		return "[REDACTED]" + url[idx:]
	}
	if strings.Contains(url, "://") && strings.Contains(url, "password=") {
		return "[REDACTED]"
	}
	return url
}
