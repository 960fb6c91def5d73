package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	DatabasePath string

	// Upstream control-panel backend that owns the car catalog.
	BackendURL string

	CatalogRefreshSpec string // cron spec, with seconds field
	WizardTTLMinutes   int
	SessionTTLHours    int

	JWTSecret     string
	AdminEmail    string
	AdminPassword string

	SlackToken        string
	SlackLeadsChannel string
}

func Load() *Config {
	// Missing .env is fine in production, the real values come from the host.
	_ = godotenv.Load(".env")

	return &Config{
		Port:               getEnv("PORT", "3001"),
		DatabasePath:       getEnv("DATABASE_PATH", "database.db"),
		BackendURL:         getEnv("BACKEND_URL", "https://control.carservicewale.com/api"),
		CatalogRefreshSpec: getEnv("CATALOG_REFRESH_SPEC", "0 0 */6 * * *"),
		WizardTTLMinutes:   getEnvAsInt("WIZARD_TTL_MINUTES", 30),
		SessionTTLHours:    getEnvAsInt("SESSION_TTL_HOURS", 24*30),
		JWTSecret:          getEnv("JWT_SECRET", "secret"),
		AdminEmail:         getEnv("ADMIN_EMAIL", ""),
		AdminPassword:      getEnv("ADMIN_PASSWORD", ""),
		SlackToken:         getEnv("SLACK_BOT_TOKEN", ""),
		SlackLeadsChannel:  getEnv("SLACK_LEADS_CHANNEL", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if num, err := strconv.Atoi(value); err == nil {
			return num
		}
	}
	return defaultValue
}
