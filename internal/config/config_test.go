package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{"STORE_DRIVER": "memory"}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.RunLocal)
	assert.Equal(t, "products", cfg.SearchIndex)
	assert.Equal(t, []string{"http://localhost:9200"}, cfg.ElasticsearchURLs)
	assert.Equal(t, 30*time.Minute, cfg.OrderTTL)
	assert.Equal(t, 48*time.Hour, cfg.IdempotencyTTL)
	assert.False(t, cfg.KafkaEnabled())
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{
		"DATABASE_URL":       "postgres://localhost/shop",
		"RUN_LOCAL":          "true",
		"ORDER_TTL":          "45s",
		"KAFKA_BROKERS":      "k1:9092, k2:9092,",
		"ELASTICSEARCH_URLS": "http://es1:9200,http://es2:9200",
	}))
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.True(t, cfg.RunLocal)
	assert.Equal(t, 45*time.Second, cfg.OrderTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Len(t, cfg.ElasticsearchURLs, 2)
	assert.True(t, cfg.KafkaEnabled())
}

func TestFromEnv_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"postgres without url": {},
		"unknown driver":       {"STORE_DRIVER": "mysql"},
		"bad ttl":              {"STORE_DRIVER": "memory", "ORDER_TTL": "soon"},
		"negative ttl":         {"STORE_DRIVER": "memory", "ORDER_TTL": "-1m"},
		"bad run local":        {"STORE_DRIVER": "memory", "RUN_LOCAL": "maybe"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(envOf(env))
			assert.Error(t, err)
		})
	}
}
