package config

import (
	"fmt"
	"os"
	"socialnet/internal/logger"
	"strconv"

	"github.com/joho/godotenv"
)

const DefaultDatabaseURL = "/tmp/test.db"

type Config struct {
	Port        string
	DatabaseURL string
	GinMode     string

	AdminName      string
	AdminSecretKey string
	AdminPassword  string

	RedisAddr          string
	RateLimitPerMinute int64

	KafkaBrokers string
	KafkaTopic   string

	OTelEndpoint    string
	OTelServiceName string
}

// Load reads .env (if present) and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logger.Info.Println("No .env file found, reading config from environment")
	}

	return &Config{
		Port:               getEnv("PORT", "3000"),
		DatabaseURL:        getEnv("DATABASE_URL", DefaultDatabaseURL),
		GinMode:            getEnv("GIN_MODE", "debug"),
		AdminName:          getEnv("ADMIN_NAME", "Social Admin"),
		AdminSecretKey:     getEnv("ADMIN_SECRET_KEY", "sample key"),
		AdminPassword:      os.Getenv("ADMIN_PASSWORD"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		KafkaBrokers:       os.Getenv("KAFKA_BROKERS"),
		KafkaTopic:         getEnv("KAFKA_TOPIC", "social.events"),
		OTelEndpoint:       os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTelServiceName:    getEnv("OTEL_SERVICE_NAME", "socialnet"),
	}
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func (c *Config) String() string {
	return fmt.Sprintf("Port=%s, GinMode=%s, Redis=%t, Kafka=%t, OTel=%t",
		c.Port, c.GinMode, c.RedisAddr != "", c.KafkaBrokers != "", c.OTelEndpoint != "")
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int64) int64 {
	n, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
