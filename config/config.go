package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	DataBackend       string // "csv" or "postgres"
	InternalDataPath  string // CSV path; not consulted by the postgres backend
	ModelPath         string
	VocabPath         string

	CacheTTL            time.Duration
	MaxListings         int
	MaxInternalMatches  int
	ScrapeTimeout       time.Duration
	ScrapeDelayMin      time.Duration
	ScrapeDelayMax      time.Duration
	Headless            bool

	Port      string
	ChromeBin string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "pricing"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "pricing123"),
		PostgresDB:       getEnv("POSTGRES_DB", "pricing_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		DataBackend:      getEnv("DATA_BACKEND", "csv"),
		InternalDataPath: getEnv("INTERNAL_DATA_PATH", "./data/internal_records.csv"),
		ModelPath:        getEnv("MODEL_PATH", "./data/model.txt"),
		VocabPath:        getEnv("VOCAB_PATH", "./data/vocab.json"),

		CacheTTL:           time.Duration(getEnvInt("CACHE_TTL", 3600)) * time.Second,
		MaxListings:        getEnvInt("MAX_LISTINGS", 30),
		MaxInternalMatches: getEnvInt("MAX_INTERNAL_MATCHES", 50),
		ScrapeTimeout:      time.Duration(getEnvInt("SCRAPE_TIMEOUT_MS", 30000)) * time.Millisecond,
		ScrapeDelayMin:     time.Duration(getEnvInt("SCRAPE_DELAY_MS_MIN", 2000)) * time.Millisecond,
		ScrapeDelayMax:     time.Duration(getEnvInt("SCRAPE_DELAY_MS_MAX", 4000)) * time.Millisecond,
		Headless:           getEnvBool("HEADLESS", true),

		Port:      getEnv("PORT", "8080"),
		ChromeBin: getEnv("CHROME_BIN", ""),
	}
}

// DSN returns the PostgreSQL connection string built from the
// POSTGRES_* fields, used whenever DataBackend is "postgres". A DSN
// given in INTERNAL_DATA_PATH is not used.
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
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
