package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Flow     FlowConfig
	Session  SessionConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Name               string
	Version            string
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Driver     string // "postgres" or "sqlite"
	Connection string
}

type FlowConfig struct {
	ConfigPath     string
	StrictOrder    bool // reject answers for a question other than the one currently awaited
	IncludeSummary bool // attach the full summary to the completion response
}

type SessionConfig struct {
	StaleMinutes     int
	CleanupSchedule  string // cron expression, empty disables the scheduler
	MaxSessionsPerIP int    // per hour, 0 disables the limit
	EventTopic       string
}

type TracingConfig struct {
	Enabled  bool
	Endpoint string // OTLP HTTP endpoint, host:port
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Name:               getEnv("APP_NAME", "Lola Discovery API"),
			Version:            getEnv("APP_VERSION", "1.0.0"),
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Flow: FlowConfig{
			ConfigPath:     getEnv("FLOW_CONFIG_PATH", "configs/flow_config.json"),
			StrictOrder:    getEnvAsBool("FLOW_STRICT_ORDER", false),
			IncludeSummary: getEnvAsBool("FLOW_INCLUDE_SUMMARY", true),
		},
		Session: SessionConfig{
			StaleMinutes:     getEnvAsInt("SESSION_STALE_MINUTES", 60),
			CleanupSchedule:  getEnv("SESSION_CLEANUP_SCHEDULE", "@every 10m"),
			MaxSessionsPerIP: getEnvAsInt("MAX_SESSIONS_PER_IP", 10),
			EventTopic:       getEnv("SESSION_EVENT_TOPIC", "SESSION_EVENTS"),
		},
		Tracing: TracingConfig{
			Enabled:  getEnvAsBool("OTEL_ENABLED", false),
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
