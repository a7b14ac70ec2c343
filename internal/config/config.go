package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App        AppConfig
	Postgres   PostgresConfig
	Redis      RedisConfig
	Logger     LoggerConfig
	Bridge     BridgeConfig
	Admin      AdminConfig
	Enrollment EnrollmentConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// BridgeConfig defines the session-bridge parameters: the secret used to
// verify the primary (Auth.js) session token, the secret used to mint
// platform tokens, token lifetimes and the retry bounds for session
// establishment and verification.
type BridgeConfig struct {
	PrimarySecret          string
	JWTSecret              string
	AccessTokenTTLSeconds  int
	RefreshTokenTTLSeconds int
	EstablishAttempts      int
	VerifyAttempts         int
	RetryBaseDelayMS       int
	PrimaryCookieName      string
	SessionCookieName      string
}

// AdminConfig guards operator endpoints.
type AdminConfig struct {
	ServiceKeyHash string
}

// EnrollmentConfig holds the best-effort mailing-list hook settings.
type EnrollmentConfig struct {
	WebhookURL string
	ListID     string
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
			Name:                  getEnv("APP_NAME", "session-bridge"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Bridge: BridgeConfig{
			PrimarySecret:          os.Getenv("AUTHJS_SECRET"),
			JWTSecret:              os.Getenv("BRIDGE_JWT_SECRET"),
			AccessTokenTTLSeconds:  getEnvAsInt("BRIDGE_ACCESS_TOKEN_TTL_SECONDS", 3600),
			RefreshTokenTTLSeconds: getEnvAsInt("BRIDGE_REFRESH_TOKEN_TTL_SECONDS", 604800),
			EstablishAttempts:      getEnvAsInt("BRIDGE_ESTABLISH_ATTEMPTS", 3),
			VerifyAttempts:         getEnvAsInt("BRIDGE_VERIFY_ATTEMPTS", 2),
			RetryBaseDelayMS:       getEnvAsInt("BRIDGE_RETRY_BASE_DELAY_MS", 500),
			PrimaryCookieName:      getEnv("AUTHJS_COOKIE_NAME", "authjs.session-token"),
			SessionCookieName:      getEnv("BRIDGE_SESSION_COOKIE_NAME", "sb-session-id"),
		},
		Admin: AdminConfig{
			ServiceKeyHash: os.Getenv("ADMIN_SERVICE_KEY_HASH"),
		},
		Enrollment: EnrollmentConfig{
			WebhookURL: getEnv("ENROLLMENT_WEBHOOK_URL", ""),
			ListID:     getEnv("ENROLLMENT_LIST_ID", ""),
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

// AccessTokenTTL returns the minted access token lifetime.
func (b BridgeConfig) AccessTokenTTL() time.Duration {
	return time.Duration(b.AccessTokenTTLSeconds) * time.Second
}

// RefreshTokenTTL returns the minted refresh token lifetime.
func (b BridgeConfig) RefreshTokenTTL() time.Duration {
	return time.Duration(b.RefreshTokenTTLSeconds) * time.Second
}

// RetryBaseDelay returns the backoff base for session retries.
func (b BridgeConfig) RetryBaseDelay() time.Duration {
	return time.Duration(b.RetryBaseDelayMS) * time.Millisecond
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
