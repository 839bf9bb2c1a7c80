// Package config handles the loading and parsing of application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig holds all configuration settings for the application.
type AppConfig struct {
	// --- Core Settings ---
	DBPath     string // Database connection string (Postgres DSN).
	ServerAddr string // Address for the HTTP server to listen on (e.g., ":8080").

	// --- Redis / locking ---
	RedisAddr     string // host:port of the Redis instance backing locks, caches, and leaderboards.
	RedisPassword string
	RedisDB       int

	// --- Geolocation ---
	GeolocationDBPath string // Path to the MaxMind GeoLite2-City .mmdb file.

	// --- Bancho behavior ---
	LoginNotification string // Optional message sent to every client on successful login.
	MaintenanceMode   bool   // When true, only staff may log in.
	MainMenuIconURL   string // Optional main-menu icon image URL.
	MainMenuOnClick   string // Optional main-menu icon click-through URL.

	// --- Anticheat webhooks ---
	DiscordGeneralAnticheatWebhook      string
	DiscordConfidentialAnticheatWebhook string

	// --- Application Logic ---
	MigrationsPath     string // Path to the database migration files.
	CORSAllowedOrigins string // Comma-separated list of allowed CORS origins.

	// --- Timeouts and Intervals ---
	HTTPClientTimeout time.Duration // Loaded but not passed to the notifier; webhook delivery uses its own fixed 10s client timeout.
	ShutdownTimeout   time.Duration // Graceful shutdown timeout.
	CORSMaxAge        int           // Max age for CORS preflight requests in seconds.
}

// Load reads environment variables and populates the AppConfig struct.
// It sets sensible defaults for non-critical values.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		// --- Core Settings ---
		DBPath:     getEnv("DB_PATH", ""),
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),

		// --- Redis / locking ---
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// --- Geolocation ---
		GeolocationDBPath: getEnv("GEOLOCATION_DB_PATH", ""),

		// --- Bancho behavior ---
		LoginNotification: getEnv("LOGIN_NOTIFICATION", ""),
		MaintenanceMode:    getEnvAsBool("MAINTENANCE_MODE", false),
		MainMenuIconURL:    getEnv("MAIN_MENU_ICON_URL", ""),
		MainMenuOnClick:    getEnv("MAIN_MENU_ON_CLICK_URL", ""),

		// --- Anticheat webhooks ---
		DiscordGeneralAnticheatWebhook:      getEnv("DISCORD_GENERAL_ANTICHEAT_WEBHOOK", ""),
		DiscordConfidentialAnticheatWebhook: getEnv("DISCORD_CONFIDENTIAL_ANTICHEAT_WEBHOOK", ""),

		// --- Application Logic ---
		MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		CORSAllowedOrigins: getEnv(
			"CORS_ALLOWED_ORIGINS",
			"http://localhost:5173,http://localhost:4173,https://akatsuki.pw",
		),

		// --- Timeouts and Intervals ---
		HTTPClientTimeout: getEnvAsDuration("HTTP_CLIENT_TIMEOUT", 10*time.Second),
		ShutdownTimeout:   getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		CORSMaxAge:        getEnvAsInt("CORS_MAX_AGE", 300),
	}

	if err := validateCriticalConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateCriticalConfig checks that essential configuration values are set.
func validateCriticalConfig(cfg *AppConfig) error {
	criticalVars := map[string]string{
		"DB_PATH":             cfg.DBPath,
		"GEOLOCATION_DB_PATH": cfg.GeolocationDBPath,
	}
	var missing []string
	for name, value := range criticalVars {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing critical environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// --- Helper Functions for robust environment variable loading ---

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an integer environment variable or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves a boolean environment variable or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsDuration retrieves a time.Duration environment variable or returns a default value.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	return defaultValue
}
