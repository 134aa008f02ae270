package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ErrMissingEnv is returned by Load when a required environment variable is
// absent or empty.
var ErrMissingEnv = errors.New("config: missing required environment variable")

// Config holds all application configuration loaded from environment variables.
type Config struct {
	SensorTowerAPIKey  string
	SensorTowerBaseURL string

	SupabaseURL        string
	SupabaseServiceKey string

	// SupabaseDBURL is the optional direct Postgres connection string. When
	// set, rows are written over a database connection instead of the
	// PostgREST endpoint.
	SupabaseDBURL string

	// SnapshotDir, when set, receives a per-table CSV dump of written rows.
	SnapshotDir string

	LookupPaceMs int
}

// Load reads the .env file (if any) and the process environment, and fails
// when a required variable is missing.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	cfg := &Config{
		SensorTowerAPIKey:  os.Getenv("SENSORTOWER_API_KEY"),
		SensorTowerBaseURL: getEnv("SENSORTOWER_BASE_URL", "https://api.sensortower.com"),

		SupabaseURL:        os.Getenv("SUPABASE_URL"),
		SupabaseServiceKey: os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		SupabaseDBURL:      os.Getenv("SUPABASE_DB_URL"),

		SnapshotDir:  os.Getenv("SNAPSHOT_DIR"),
		LookupPaceMs: getEnvInt("LOOKUP_PACE_MS", 300),
	}

	var missing []string
	if cfg.SensorTowerAPIKey == "" {
		missing = append(missing, "SENSORTOWER_API_KEY")
	}
	if cfg.SupabaseURL == "" {
		missing = append(missing, "SUPABASE_URL")
	}
	if cfg.SupabaseServiceKey == "" {
		missing = append(missing, "SUPABASE_SERVICE_ROLE_KEY")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(missing, ", "))
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
