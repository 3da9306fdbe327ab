package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// Feature source selection. The stub synthesizes deterministic borrower
// history for development; openbanking pulls raw events from the linked
// provider while profiles and vectors stay in PostgreSQL.
const (
	FeatureSourcePostgres    = "postgres"
	FeatureSourceStub        = "stub"
	FeatureSourceOpenBanking = "openbanking"
)

// OpenBankingConfig carries provider credentials for the openbanking
// feature source.
type OpenBankingConfig struct {
	BaseURL     string
	ClientID    string
	Secret      string
	Environment string
	AccessToken string
}

type KafkaConfig struct {
	Brokers       []string
	DecisionTopic string
	FeatureTopic  string
}

// PolicyConfig carries the decision thresholds. They are product-owned
// numbers, so they load from the environment with the documented defaults.
type PolicyConfig struct {
	Version                string
	ApproveCreditThreshold float64
	ApproveFraudCeiling    float64
	RejectFraudThreshold   float64
	RejectCreditFloor      float64
}

// FeatureConfig bounds feature computation and the fraud volume floor.
type FeatureConfig struct {
	LookbackDays   int
	MaxEvents      int
	MinVolumeFloor float64
}

// TaskConfig sizes the background recompute runner.
type TaskConfig struct {
	QueueSize int
	Workers   int
}

type Config struct {
	HTTPPort      int
	DB            DatabaseConfig
	Kafka         KafkaConfig
	Policy        PolicyConfig
	Features      FeatureConfig
	Tasks         TaskConfig
	FeatureSource string
	OpenBanking   OpenBankingConfig
	OTLPEndpoint  string
	ServiceName   string
}

// Validate rejects configurations the service cannot start with.
func (c Config) Validate() error {
	if c.DB.Password == "" {
		return fmt.Errorf("DB_PASSWORD environment variable is required")
	}
	switch c.FeatureSource {
	case FeatureSourcePostgres, FeatureSourceStub:
	case FeatureSourceOpenBanking:
		if c.OpenBanking.AccessToken == "" {
			return fmt.Errorf("OPENBANKING_ACCESS_TOKEN is required when FEATURE_SOURCE=openbanking")
		}
	default:
		return fmt.Errorf("unknown FEATURE_SOURCE %q", c.FeatureSource)
	}
	return nil
}

func Load() Config {
	return Config{
		HTTPPort: getEnvInt("HTTP_PORT", 8093),
		DB: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "altlend"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "altlend_decisioning"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)),
			MinConns: int32(getEnvInt("DB_MIN_CONNS", 2)),
		},
		Kafka: KafkaConfig{
			Brokers:       strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			DecisionTopic: getEnv("KAFKA_DECISION_TOPIC", "decisioning.decisions"),
			FeatureTopic:  getEnv("KAFKA_FEATURE_TOPIC", "decisioning.features"),
		},
		Policy: PolicyConfig{
			Version:                getEnv("POLICY_VERSION", "policy-v1"),
			ApproveCreditThreshold: getEnvFloat("POLICY_APPROVE_CREDIT_THRESHOLD", 70),
			ApproveFraudCeiling:    getEnvFloat("POLICY_APPROVE_FRAUD_CEILING", 0.60),
			RejectFraudThreshold:   getEnvFloat("POLICY_REJECT_FRAUD_THRESHOLD", 0.80),
			RejectCreditFloor:      getEnvFloat("POLICY_REJECT_CREDIT_FLOOR", 40),
		},
		Features: FeatureConfig{
			LookbackDays:   getEnvInt("FEATURE_LOOKBACK_DAYS", 30),
			MaxEvents:      getEnvInt("FEATURE_MAX_EVENTS", 5000),
			MinVolumeFloor: getEnvFloat("FRAUD_MIN_VOLUME", 500),
		},
		Tasks: TaskConfig{
			QueueSize: getEnvInt("TASK_QUEUE_SIZE", 256),
			Workers:   getEnvInt("TASK_WORKERS", 2),
		},
		FeatureSource: getEnv("FEATURE_SOURCE", FeatureSourcePostgres),
		OpenBanking: OpenBankingConfig{
			BaseURL:     getEnv("OPENBANKING_BASE_URL", "https://sandbox.plaid.com"),
			ClientID:    getEnv("OPENBANKING_CLIENT_ID", ""),
			Secret:      getEnv("OPENBANKING_SECRET", ""),
			Environment: getEnv("OPENBANKING_ENV", "sandbox"),
			AccessToken: getEnv("OPENBANKING_ACCESS_TOKEN", ""),
		},
		OTLPEndpoint: getEnv("OTLP_ENDPOINT", ""),
		ServiceName:  "decisioning",
	}
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
