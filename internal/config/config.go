package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
	Realtime     RealtimeConfig
	Worker       WorkerConfig
	Membership   MembershipConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	CORSOrigins           []string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN             string
	ApplicationName string
	MaxConns        int32
	MinConns        int32
	RunMigrations   bool
	MigrationsDir   string
	ConnMaxIdleSec  int32
	ConnMaxLifeSec  int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr               string
	Password           string
	DB                 int
	PoolSize           int
	DialTimeoutSeconds int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret               string
	AccessTokenTTLMinutes   int
	PasswordResetTTLMinutes int
	VerificationTTLMinutes  int
	BcryptCost              int
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom string
}

// RealtimeConfig names the pub/sub channel namespace.
type RealtimeConfig struct {
	ChannelPrefix string
}

// WorkerConfig drives the maintenance job.
type WorkerConfig struct {
	Enabled                  bool
	CleanupIntervalMinutes   int
	PendingConfirmationHours int
	AccountRetentionDays     int
	AbsenceLimitDays         int
}

// MembershipConfig caps association sizes.
type MembershipConfig struct {
	MaxInternsPerHR int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "irms-backend"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "4000"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			CORSOrigins:           getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Postgres: PostgresConfig{
			DSN:             os.Getenv("POSTGRES_DSN"),
			ApplicationName: getEnv("APP_NAME", "irms-backend"),
			MaxConns:        maxConns,
			MinConns:        minConns,
			RunMigrations:   runMigrations,
			MigrationsDir:   getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec:  connMaxIdle,
			ConnMaxLifeSec:  connMaxLife,
		},
		Redis: RedisConfig{
			Addr:               getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:           os.Getenv("REDIS_PASSWORD"),
			DB:                 redisDB,
			PoolSize:           getEnvAsInt("REDIS_POOL_SIZE", 10),
			DialTimeoutSeconds: getEnvAsInt("REDIS_DIAL_TIMEOUT_SECONDS", 5),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:               getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes:   getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			PasswordResetTTLMinutes: getEnvAsInt("AUTH_PASSWORD_RESET_TTL_MINUTES", 30),
			VerificationTTLMinutes:  getEnvAsInt("AUTH_VERIFICATION_TTL_MINUTES", 10),
			BcryptCost:              getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Notification: NotificationConfig{
			EmailFrom: getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
		},
		Realtime: RealtimeConfig{
			ChannelPrefix: getEnv("REALTIME_CHANNEL_PREFIX", "irms"),
		},
		Worker: WorkerConfig{
			Enabled:                  getEnvAsBool("WORKER_ENABLED", true),
			CleanupIntervalMinutes:   getEnvAsInt("WORKER_CLEANUP_INTERVAL_MINUTES", 24*60),
			PendingConfirmationHours: getEnvAsInt("WORKER_PENDING_CONFIRMATION_HOURS", 24),
			AccountRetentionDays:     getEnvAsInt("WORKER_ACCOUNT_RETENTION_DAYS", 10),
			AbsenceLimitDays:         getEnvAsInt("WORKER_ABSENCE_LIMIT_DAYS", 2),
		},
		Membership: MembershipConfig{
			MaxInternsPerHR: getEnvAsInt("MEMBERSHIP_MAX_INTERNS_PER_HR", 20),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// CleanupInterval returns how often the maintenance job runs.
func (w WorkerConfig) CleanupInterval() time.Duration {
	if w.CleanupIntervalMinutes <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(w.CleanupIntervalMinutes) * time.Minute
}

// PendingConfirmationWindow is how long a ticket may wait for confirmation.
func (w WorkerConfig) PendingConfirmationWindow() time.Duration {
	if w.PendingConfirmationHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(w.PendingConfirmationHours) * time.Hour
}

// AccountRetention is how long an account survives past its end date.
func (w WorkerConfig) AccountRetention() time.Duration {
	if w.AccountRetentionDays <= 0 {
		return 10 * 24 * time.Hour
	}
	return time.Duration(w.AccountRetentionDays) * 24 * time.Hour
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
