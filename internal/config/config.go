package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config is read once at startup from the environment.
type Config struct {
	Port     string
	RunLocal bool

	StoreDriver string
	DatabaseURL string

	ElasticsearchURLs []string
	SearchIndex       string

	IdempotencyTable string
	IdempotencyTTL   time.Duration

	OrdersQueueURL string
	OrderTTL       time.Duration

	KafkaBrokers     []string
	KafkaEventsTopic string
	KafkaGroupID     string

	MetricsNamespace string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] .env not loaded: %v", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv, applying defaults for unset keys.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	orderTTL, err := time.ParseDuration(get("ORDER_TTL", "30m"))
	if err != nil {
		return nil, fmt.Errorf("ORDER_TTL: %w", err)
	}
	idemTTL, err := time.ParseDuration(get("IDEMPOTENCY_TTL", "48h"))
	if err != nil {
		return nil, fmt.Errorf("IDEMPOTENCY_TTL: %w", err)
	}
	runLocal, err := strconv.ParseBool(get("RUN_LOCAL", "false"))
	if err != nil {
		return nil, fmt.Errorf("RUN_LOCAL: %w", err)
	}

	cfg := &Config{
		Port:              get("PORT", "8080"),
		RunLocal:          runLocal,
		StoreDriver:       get("STORE_DRIVER", DriverPostgres),
		DatabaseURL:       getenv("DATABASE_URL"),
		ElasticsearchURLs: splitList(get("ELASTICSEARCH_URLS", "http://localhost:9200")),
		SearchIndex:       get("SEARCH_INDEX", "products"),
		IdempotencyTable:  getenv("IDEMPOTENCY_TABLE"),
		IdempotencyTTL:    idemTTL,
		OrdersQueueURL:    getenv("ORDERS_QUEUE_URL"),
		OrderTTL:          orderTTL,
		KafkaBrokers:      splitList(getenv("KAFKA_BROKERS")),
		KafkaEventsTopic:  get("KAFKA_EVENTS_TOPIC", "storefront.orders"),
		KafkaGroupID:      get("KAFKA_GROUP_ID", "storefront-crowdfunding"),
		MetricsNamespace:  get("METRICS_NAMESPACE", "storefront"),
	}

	switch cfg.StoreDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=%s", DriverPostgres)
		}
	case DriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	if orderTTL <= 0 {
		return nil, fmt.Errorf("ORDER_TTL must be positive, got %s", orderTTL)
	}
	return cfg, nil
}

// KafkaEnabled reports whether brokers were configured.
func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

func splitList(csv string) []string {
	var out []string
	for _, s := range strings.Split(csv, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
