package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	HTTPAddr string
	LogLevel string

	LearningCycleThreshold int
	LearningWindow         int
	LearningMinSuccesses   int
	RecordWorkers          int

	PersistPatterns  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	MaxRetries       int

	RecordsCSVPath string
	ExportDir      string
	ChromeBin      string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		LearningCycleThreshold: getEnvInt("LEARNING_CYCLE_THRESHOLD", 5),
		LearningWindow:         getEnvInt("LEARNING_WINDOW", 10),
		LearningMinSuccesses:   getEnvInt("LEARNING_MIN_SUCCESSES", 3),
		RecordWorkers:          getEnvInt("RECORD_WORKERS", 4),

		PersistPatterns:  getEnvBool("PERSIST_PATTERNS", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "flyers"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "flyers123"),
		PostgresDB:       getEnv("POSTGRES_DB", "flyer_studio"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		MaxRetries:       getEnvInt("MAX_RETRIES", 3),

		RecordsCSVPath: getEnv("RECORDS_CSV_PATH", "./output/generation_records.csv"),
		ExportDir:      getEnv("EXPORT_DIR", "./output/flyers"),
		ChromeBin:      getEnv("CHROME_BIN", ""),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
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

func getEnvBool(key string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
