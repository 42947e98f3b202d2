// Package config builds runtime configuration from environment variables so
// main stays lean. Every knob has a development default; production overrides
// everything via the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string

	Providers ProviderConfig
	Redis     RedisConfig
	Postgres  PostgresConfig
	Kafka     KafkaConfig

	// SessionTTL bounds how long an abandoned validation session survives in
	// the session store before the applicant has to restart the KYC step.
	SessionTTL time.Duration
}

// ProviderConfig holds endpoints and credentials for external verification
// services. Empty base URLs mean the mock client is wired instead, which is
// how local development runs without provider accounts.
type ProviderConfig struct {
	DocumentBaseURL      string
	CivilRegistryBaseURL string
	FaceMatchBaseURL     string
	LivenessBaseURL      string
	DomesticListBaseURL  string
	InternationalBaseURL string
	APIKey               string
	CallTimeout          time.Duration
}

// RedisConfig configures the optional Redis session store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig configures the applicant record store.
type PostgresConfig struct {
	DSN string
}

// KafkaConfig configures the audit event sink.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	return Server{
		Addr:          getEnv("ORIGEN_ADDR", ":8080"),
		JWTSigningKey: getEnv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:     getEnv("JWT_ISSUER", "origen"),
		JWTAudience:   getEnv("JWT_AUDIENCE", "origen-onboarding"),
		Providers: ProviderConfig{
			DocumentBaseURL:      os.Getenv("PROVIDER_DOCUMENT_URL"),
			CivilRegistryBaseURL: os.Getenv("PROVIDER_CIVIL_REGISTRY_URL"),
			FaceMatchBaseURL:     os.Getenv("PROVIDER_FACE_MATCH_URL"),
			LivenessBaseURL:      os.Getenv("PROVIDER_LIVENESS_URL"),
			DomesticListBaseURL:  os.Getenv("PROVIDER_DOMESTIC_LIST_URL"),
			InternationalBaseURL: os.Getenv("PROVIDER_INTERNATIONAL_LIST_URL"),
			APIKey:               os.Getenv("PROVIDER_API_KEY"),
			CallTimeout:          getDuration("PROVIDER_CALL_TIMEOUT", 20*time.Second),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			DSN: os.Getenv("POSTGRES_DSN"),
		},
		Kafka: KafkaConfig{
			Brokers: splitNonEmpty(os.Getenv("KAFKA_BROKERS")),
			Topic:   getEnv("KAFKA_AUDIT_TOPIC", "origen.audit.events"),
		},
		SessionTTL: getDuration("KYC_SESSION_TTL", 30*time.Minute),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitNonEmpty(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
