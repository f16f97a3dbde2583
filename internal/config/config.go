package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port                   string
	AllowedOrigin          string
	DBDriver               string
	DatabaseURL            string
	SeedOnStart            bool
	RedisAddr              string
	RedisPassword          string
	RedisDB                int
	HistoryCacheTTLSeconds int
	AMQPURL                string
	AMQPExchange           string
	AuthSecret             string
	AccessTokenTTLMinutes  int
	OperatorUsername       string
	OperatorPassword       string
	StoreTimeoutSeconds    int
	LogLevel               string
	LogFormat              string
	DefaultPaymentType     string
	DefaultReceiptType     string
}

func Load() Config {
	cfg := Config{
		Port:                   getEnv("PORT", "8080"),
		AllowedOrigin:          getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		DBDriver:               strings.ToLower(getEnv("DB_DRIVER", "memory")),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		SeedOnStart:            getEnvBool("SEED_ON_START", true),
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		RedisDB:                getEnvInt("REDIS_DB", 0),
		HistoryCacheTTLSeconds: getEnvInt("HISTORY_CACHE_TTL_SECONDS", 15),
		AMQPURL:                os.Getenv("AMQP_URL"),
		AMQPExchange:           getEnv("AMQP_EXCHANGE", "petcare.events"),
		AuthSecret:             strings.TrimSpace(os.Getenv("AUTH_SECRET")),
		AccessTokenTTLMinutes:  getEnvInt("ACCESS_TOKEN_TTL_MINUTES", 480),
		OperatorUsername:       getEnv("OPERATOR_USERNAME", "operator"),
		OperatorPassword:       strings.TrimSpace(os.Getenv("OPERATOR_PASSWORD")),
		StoreTimeoutSeconds:    getEnvInt("STORE_TIMEOUT_SECONDS", 10),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		LogFormat:              getEnv("LOG_FORMAT", "console"),
		DefaultPaymentType:     getEnv("DEFAULT_PAYMENT_TYPE", "cash"),
		DefaultReceiptType:     getEnv("DEFAULT_RECEIPT_TYPE", "simple"),
	}

	if cfg.HistoryCacheTTLSeconds < 0 {
		cfg.HistoryCacheTTLSeconds = 15
	}
	if cfg.AccessTokenTTLMinutes < 1 {
		cfg.AccessTokenTTLMinutes = 480
	}
	if cfg.StoreTimeoutSeconds < 1 {
		cfg.StoreTimeoutSeconds = 10
	}

	return cfg
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func (c Config) HistoryCacheTTL() time.Duration {
	return time.Duration(c.HistoryCacheTTLSeconds) * time.Second
}

func (c Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLMinutes) * time.Minute
}

func (c Config) StoreTimeout() time.Duration {
	return time.Duration(c.StoreTimeoutSeconds) * time.Second
}

func getEnv(key string, fallback string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	return val
}

func getEnvInt(key string, fallback int) int {
	val, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return val
}

func getEnvBool(key string, fallback bool) bool {
	val, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return val
}
