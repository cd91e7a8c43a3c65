package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int

	// RedisAddr empty disables the cluster leader lock (single-instance mode).
	RedisAddr     string
	RedisPassword string

	Collector CollectorConfig
	Upstream  UpstreamConfig
}

// CollectorConfig controls the scheduled collection cadence.
type CollectorConfig struct {
	CronSpec       string
	RunInterval    time.Duration
	MaxRunDuration time.Duration
	FamilyIDs      []string
}

// UpstreamConfig holds base URLs for the consumed collaborators.
type UpstreamConfig struct {
	SourceGatewayURL    string
	PartyRegistryURL    string
	ContractRegistryURL string
	InvoicingSinkURL    string
	RequestTimeout      time.Duration
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "billcollect"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "billcollect"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 3600),

		RedisAddr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
		RedisPassword: getenv("REDIS_PASSWORD", ""),

		Collector: CollectorConfig{
			CronSpec:       strings.TrimSpace(getenv("COLLECTOR_CRON", "")),
			RunInterval:    getenvDuration("COLLECTOR_RUN_INTERVAL", 24*time.Hour),
			MaxRunDuration: getenvDuration("COLLECTOR_MAX_RUN_DURATION", 30*time.Minute),
			FamilyIDs:      parseList(getenv("COLLECTOR_FAMILY_IDS", "")),
		},
		Upstream: UpstreamConfig{
			SourceGatewayURL:    getenv("SOURCE_GATEWAY_URL", "http://localhost:9090"),
			PartyRegistryURL:    getenv("PARTY_REGISTRY_URL", "http://localhost:9091"),
			ContractRegistryURL: getenv("CONTRACT_REGISTRY_URL", "http://localhost:9092"),
			InvoicingSinkURL:    getenv("INVOICING_SINK_URL", "http://localhost:9093"),
			RequestTimeout:      getenvDuration("UPSTREAM_REQUEST_TIMEOUT", 15*time.Second),
		},
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}

func parseList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
