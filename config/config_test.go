package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigFromEnvironment(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("LOG_SEARCH_BACKEND", " Elasticsearch ")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("RETENTION_PERIOD", "48h")
	t.Setenv("DATABASE_HOST", "mysql")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, BackendElasticsearch, cfg.Search.Backend)
	assert.True(t, cfg.Search.Enabled)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, 48*time.Hour, cfg.Retention.Period)
	assert.Equal(t, 5*time.Second, cfg.Ingest.MaxBatchWait)
	assert.Equal(t, []string{"log-search", "saved-searches"}, cfg.Features())
}

func TestDefaultsDisableKafka(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.Search.Backend)
	assert.False(t, cfg.KafkaEnabled())
	assert.Equal(t, []string{"log-search"}, cfg.Features())
	assert.Equal(t, 30*time.Minute, cfg.Console.SessionTTL)
}

func TestFeaturesWhenSearchDisabled(t *testing.T) {
	cfg := &Config{}
	assert.Empty(t, cfg.Features())
	assert.NotNil(t, cfg.Features())
}
