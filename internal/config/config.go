package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server Server
	Mongo  Mongo
	Redis  Redis
	Kafka  Kafka
	Token  Token
	Stripe Stripe
	Auth   Auth
	Venue  Venue
}

type Server struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type Mongo struct {
	URI      string
	Database string
}

type Redis struct {
	Addr string
}

type Kafka struct {
	Brokers  []string
	Enabled  bool
	MockMode bool
	Topics   Topics
}

type Topics struct {
	CheckinEvents string
	AuditEvents   string
}

// Token configures the QR token codec. The secret is injected here so
// the codec never reads process state on its own.
type Token struct {
	Secret     string
	ExpiryDays int
}

type Stripe struct {
	SecretKey string
	Enabled   bool
}

type Auth struct {
	JWTSecret string
}

// Venue holds the festival's local timezone, used for the "today"
// registration metric.
type Venue struct {
	Timezone string
}

func Load() *Config {
	return &Config{
		Server: Server{
			Port:         getEnv("PORT", ":8080"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Mongo: Mongo{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DB", "festpass"),
		},
		Redis: Redis{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Kafka: Kafka{
			Brokers:  []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Enabled:  getEnvBool("KAFKA_ENABLED", false),
			MockMode: getEnvBool("KAFKA_MOCK_MODE", false),
			Topics: Topics{
				CheckinEvents: getEnv("KAFKA_TOPIC_CHECKIN", "pass-checkins"),
				AuditEvents:   getEnv("KAFKA_TOPIC_AUDIT", "admin-audit"),
			},
		},
		Token: Token{
			Secret:     getEnv("QR_SECRET_KEY", ""),
			ExpiryDays: getEnvInt("QR_TOKEN_EXPIRY_DAYS", 30),
		},
		Stripe: Stripe{
			SecretKey: getEnv("STRIPE_SECRET_KEY", ""),
			Enabled:   getEnvBool("STRIPE_ENABLED", true),
		},
		Auth: Auth{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Venue: Venue{
			Timezone: getEnv("VENUE_TIMEZONE", "Asia/Kolkata"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
