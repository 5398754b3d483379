package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Log database (optional, ERROR+ records only)
	LogDBHost     string
	LogDBPort     string
	LogDBUser     string
	LogDBPassword string
	LogDBName     string
	LogDBSSLMode  string
	LogRetention  int

	// Sessions and friend codes
	SessionTTL      time.Duration
	MaxCodeAttempts int

	// Identity provider
	IdentityMode          string
	WorldAppID            string
	WorldActionID         string
	WorldVerifyURL        string
	IdentityTimeout       time.Duration
	IdentityTokenSecret   string
	IdentityTokenIssuer   string
	IdentityTokenAudience string

	// Server
	Port                   string
	CORSOrigins            string
	RateLimitPerMinute     int
	AuthRateLimitPerMinute int

	// Error tracking
	SentryDSN string
	AppEnv    string
}

const (
	IdentityModeDev   = "dev"
	IdentityModeCloud = "cloud"
	IdentityModeToken = "token"
)

func Load() *Config {
	return &Config{
		LogDBHost:     getEnv("LOG_DB_HOST", ""),
		LogDBPort:     getEnv("LOG_DB_PORT", "5432"),
		LogDBUser:     getEnv("LOG_DB_USER", "postgres"),
		LogDBPassword: getEnv("LOG_DB_PASSWORD", ""),
		LogDBName:     getEnv("LOG_DB_NAME", "friendpool_logs"),
		LogDBSSLMode:  getEnv("LOG_DB_SSLMODE", "disable"),
		LogRetention:  parseInt(getEnv("LOG_RETENTION_DAYS", "30"), 30),

		SessionTTL:      parseDuration(getEnv("SESSION_TTL", "24h"), 24*time.Hour),
		MaxCodeAttempts: parseInt(getEnv("MAX_CODE_ATTEMPTS", "32"), 32),

		IdentityMode:          getEnv("IDENTITY_MODE", IdentityModeDev),
		WorldAppID:            getEnv("WLD_APP_ID", ""),
		WorldActionID:         getEnv("WLD_ACTION_ID", ""),
		WorldVerifyURL:        getEnv("WLD_VERIFY_URL", "https://developer.worldcoin.org/api/v2/verify"),
		IdentityTimeout:       parseDuration(getEnv("IDENTITY_TIMEOUT", "10s"), 10*time.Second),
		IdentityTokenSecret:   getEnv("IDENTITY_TOKEN_SECRET", ""),
		IdentityTokenIssuer:   getEnv("IDENTITY_TOKEN_ISSUER", ""),
		IdentityTokenAudience: getEnv("IDENTITY_TOKEN_AUDIENCE", ""),

		Port:                   getEnv("PORT", "8080"),
		CORSOrigins:            getEnv("CORS_ORIGINS", "*"),
		RateLimitPerMinute:     parseInt(getEnv("RATE_LIMIT_PER_MINUTE", "60"), 60),
		AuthRateLimitPerMinute: parseInt(getEnv("AUTH_RATE_LIMIT_PER_MINUTE", "10"), 10),

		SentryDSN: getEnv("SENTRY_DSN", ""),
		AppEnv:    getEnv("APP_ENV", "development"),
	}
}

// Validate reports settings that would leave the identity provider unusable.
func (c *Config) Validate() error {
	switch c.IdentityMode {
	case IdentityModeDev:
		return nil
	case IdentityModeCloud:
		if c.WorldAppID == "" {
			return errors.New("WLD_APP_ID is required when IDENTITY_MODE=cloud")
		}
		return nil
	case IdentityModeToken:
		if c.IdentityTokenSecret == "" {
			return errors.New("IDENTITY_TOKEN_SECRET is required when IDENTITY_MODE=token")
		}
		return nil
	default:
		return errors.New("IDENTITY_MODE must be one of dev, cloud, token")
	}
}

// LogDBEnabled reports whether ERROR logs should also be written to Postgres.
func (c *Config) LogDBEnabled() bool {
	return c.LogDBHost != ""
}

func (c *Config) DSN() string {
	return "host=" + c.LogDBHost +
		" user=" + c.LogDBUser +
		" password=" + c.LogDBPassword +
		" dbname=" + c.LogDBName +
		" port=" + c.LogDBPort +
		" sslmode=" + c.LogDBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
