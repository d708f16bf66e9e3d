package app

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/wardenauth/warden/pkg/jwtx"
)

// Revocation registry backends.
const (
	RevocationBackendSQLite = "sqlite"
	RevocationBackendMemory = "memory"
)

type Config struct {
	Issuer        string // Issuer claim for every token (default: warden)
	SigningSecret string // Required: HS256 secret, at least 32 bytes

	AccessTTL  time.Duration // Access token lifetime (default: 15m)
	RefreshTTL time.Duration // Refresh token lifetime (default: 168h)
	ResetTTL   time.Duration // Password reset token lifetime (default: 15m)
	MFATTL     time.Duration // MFA pending token lifetime (default: 5m)
	JWTLeeway  time.Duration // Clock skew tolerance for exp/nbf (default: 30s)

	DatabaseFile      string // Path to the SQLite database file (default: ./warden.db)
	PepperFile        string // Path to the password pepper file (default: ./pepper)
	RevocationBackend string // sqlite or memory (default: sqlite)

	MFAIssuerName string // Display name in authenticator apps (default: Warden)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Revocation purge interval (default: 1h)
}

// LoadConfig reads configuration from the environment, after loading a .env
// file when one is present. The signing secret is the only setting without a
// default.
func LoadConfig() (Config, error) {
	// A missing .env is not an error; real deployments set the environment
	// directly.
	_ = godotenv.Load()

	cfg := Config{
		Issuer:        getEnvOrDefault("WARDEN_ISSUER", "warden"),
		SigningSecret: os.Getenv("WARDEN_SIGNING_SECRET"),

		AccessTTL:  getEnvDurationOrDefault("WARDEN_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL: getEnvDurationOrDefault("WARDEN_REFRESH_TTL", jwtx.DefaultRefreshTokenTTL),
		ResetTTL:   getEnvDurationOrDefault("WARDEN_RESET_TTL", jwtx.DefaultResetTokenTTL),
		MFATTL:     getEnvDurationOrDefault("WARDEN_MFA_TTL", jwtx.DefaultMFATokenTTL),
		JWTLeeway:  getEnvDurationOrDefault("WARDEN_JWT_LEEWAY", 30*time.Second),

		DatabaseFile:      getEnvOrDefault("WARDEN_DATABASE_FILE", "warden.db"),
		PepperFile:        getEnvOrDefault("WARDEN_PEPPER_FILE", "pepper"),
		RevocationBackend: getEnvOrDefault("WARDEN_REVOCATION_BACKEND", RevocationBackendSQLite),

		MFAIssuerName: getEnvOrDefault("WARDEN_MFA_ISSUER", "Warden"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	if len(cfg.SigningSecret) < jwtx.MinSecretLength {
		return Config{}, errors.New("WARDEN_SIGNING_SECRET must be set and at least 32 bytes")
	}

	switch cfg.RevocationBackend {
	case RevocationBackendSQLite, RevocationBackendMemory:
	default:
		return Config{}, errors.New("WARDEN_REVOCATION_BACKEND must be sqlite or memory")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are taken as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
