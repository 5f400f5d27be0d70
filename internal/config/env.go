package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// envPaths are tried in order; the first readable file wins.
var envPaths = []string{".env", "../.env", "../../.env"}

// LoadEnv loads environment variables from the nearest .env file.
// Variables already present in the environment are never overridden.
func LoadEnv() error {
	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		// godotenv.Load does not override variables that are already set
		return godotenv.Load(envPath)
	}
	return nil
}

// GetEnv gets environment variable with default
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvInt gets integer environment variable with default
func GetEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// GetEnvBool gets boolean environment variable with default
func GetEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return defaultValue
}

// GetEnvDuration accepts Go durations ("5s") or a bare number of seconds.
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// Settings is the resolved runtime configuration for one ETL process.
type Settings struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectRetries int
	ConnectDelay   time.Duration

	DataDir     string
	DivipolePDF string

	LogMode string
	LogFile string
	Debug   bool
}

// Load reads .env (if any) and resolves Settings with the documented defaults.
func Load() (Settings, error) {
	if err := LoadEnv(); err != nil {
		return Settings{}, err
	}

	dataDir := GetEnv("ETL_DATA_DIR", "/app/data/data")

	return Settings{
		DBHost:     GetEnv("DB_HOST", "db"),
		DBPort:     GetEnv("DB_PORT", "5432"),
		DBName:     GetEnv("DB_NAME", "postgres"),
		DBUser:     GetEnv("DB_USER", "postgres"),
		DBPassword: GetEnv("DB_PASS", "postgres"),
		DBSSLMode:  GetEnv("DB_SSLMODE", "disable"),

		ConnectRetries: GetEnvInt("DB_CONNECT_RETRIES", 5),
		ConnectDelay:   GetEnvDuration("DB_CONNECT_DELAY", 5*time.Second),

		DataDir:     dataDir,
		DivipolePDF: GetEnv("ETL_DIVIPOLE_PDF", "/app/data/DIVIPOLE 2026 GEORREFERENCIACIÓN 15122025.pdf"),

		LogMode: GetEnv("LOG_MODE", "dev"),
		LogFile: GetEnv("LOG_FILE", ""),
		Debug:   GetEnvBool("ETL_DEBUG", false),
	}, nil
}

// DataFile resolves name against DataDir unless it is already a path.
func (s Settings) DataFile(name string) string {
	if filepath.IsAbs(name) || strings.ContainsRune(name, filepath.Separator) {
		return name
	}
	return filepath.Join(s.DataDir, name)
}

// DSN renders a lib/pq keyword/value connection string.
func (s Settings) DSN() string {
	return "host=" + s.DBHost +
		" port=" + s.DBPort +
		" user=" + s.DBUser +
		" password=" + s.DBPassword +
		" dbname=" + s.DBName +
		" sslmode=" + s.DBSSLMode
}
