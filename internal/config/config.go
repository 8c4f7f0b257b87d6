package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process configuration, loaded once at startup and
// passed into every component; nothing reads the environment after
// Load returns.
type Config struct {
	HTTPAddr     string
	StoreBackend string // "memory" or "postgres"
	Postgres     PostgresConfig
	RedisAddr    string // empty disables the cross-instance notifier
	Simulator    SimulatorConfig
}

// PostgresConfig holds the document store's Postgres connection parts.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	TimeZone string
}

// DSN builds the connection string for the postgres driver.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		p.Host, p.User, p.Password, p.DBName, p.Port, p.SSLMode, p.TimeZone,
	)
}

// SimulatorConfig controls the built-in driver location simulator.
type SimulatorConfig struct {
	Enabled  bool
	BusID    string
	Interval time.Duration
}

// Load reads .env (if present) and environment variables with defaults.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found – relying on env vars")
	}

	return &Config{
		HTTPAddr:     getEnv("HTTP_ADDR", "0.0.0.0:8080"),
		StoreBackend: getEnv("STORE_BACKEND", "memory"),
		Postgres: PostgresConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "password"),
			DBName:   getEnv("DB_NAME", "shuttle"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			TimeZone: getEnv("DB_TIMEZONE", "UTC"),
		},
		RedisAddr: getEnv("REDIS_ADDR", ""),
		Simulator: SimulatorConfig{
			Enabled:  getEnvBool("SIM_ENABLED", false),
			BusID:    getEnv("SIM_BUS_ID", "bus1"),
			Interval: time.Duration(getEnvInt("SIM_INTERVAL_SECONDS", 10)) * time.Second,
		},
	}
}

// getEnv reads an environment variable or returns the provided default.
func getEnv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	v, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("Invalid boolean for %s: %q, using default", key, v)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	v, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid integer for %s: %q, using default", key, v)
		return defaultValue
	}
	return parsed
}
