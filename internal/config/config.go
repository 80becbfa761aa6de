package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries everything the server and worker need at startup.
// Values come from the environment; every field has a working default
// so a bare `gasbillmanager serve` runs against a local sqlite file.
type Config struct {
	Port string

	DBDriver    string
	DSN         string
	AutoMigrate bool

	DaeryunPDFPath string

	// MaxSnapshotAge bounds how old a stored tariff snapshot may be
	// before a live fetch is attempted. Zero disables the check.
	MaxSnapshotAge time.Duration

	// RefreshSchedule is a cron expression (or plain seconds) for the
	// tariff refresh job. The reset check always runs once a minute.
	RefreshSchedule string

	// AuthEnabled turns on token auth and the user/token endpoints.
	AuthEnabled bool

	AdminEmail string
}

// FromEnv builds a Config from environment variables, with sane defaults.
func FromEnv() Config {
	return Config{
		Port:            envOr("PORT", "8080"),
		DBDriver:        envOr("GASBILL_DB_DRIVER", "sqlite"),
		DSN:             envOr("GASBILL_DSN", "gasbillmanager.db"),
		AutoMigrate:     envBool("GASBILL_AUTO_MIGRATE", true),
		DaeryunPDFPath:  envOr("DAERYUN_PDF_PATH", "/data/tariff_daeryun.pdf"),
		MaxSnapshotAge:  envDuration("GASBILL_SNAPSHOT_MAX_AGE", 7*24*time.Hour),
		RefreshSchedule: envOr("GASBILL_REFRESH_SCHEDULE", "0 3 * * 1"),
		AuthEnabled:     envBool("GASBILL_AUTH_ENABLED", false),
		AdminEmail:      os.Getenv("GASBILL_ADMIN_EMAIL"),
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
