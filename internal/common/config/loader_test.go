package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const minimalConfig = `
camunda:
  broker_address: zeebe:26500
database:
  postgres:
    host: db
    database: social_insights
    user: analyst
  elasticsearch:
    addresses: ["http://es:9200"]
  redis:
    address: redis:6379
`

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.HTTPPort)
	assert.Equal(t, "http://es:9200", cfg.Database.Elasticsearch.GetURL())
	assert.Equal(t, "social-mentions", cfg.Database.Elasticsearch.MentionsIndex)
	assert.Equal(t, 90, cfg.Database.Redis.SnapshotTTL)
	assert.Equal(t, "native", cfg.Analytics.GraphBackend)
	assert.Equal(t, "postgres", cfg.Analytics.MentionSource)
	assert.Equal(t, "UTC", cfg.Analytics.Timezone)
	assert.Equal(t, 30000, cfg.Analytics.PersistTimeout)
	assert.Equal(t, 80.0, cfg.Analytics.KOLThreshold)
	assert.Equal(t, 5000, cfg.Analytics.MinFollowers)
	assert.Equal(t, 8, cfg.Analytics.Sentiment.Concurrency)
	assert.Equal(t, "configs/activity-registry.json", cfg.Registry.Path)
}

func TestLoadFromFile_EnvPlaceholders(t *testing.T) {
	t.Setenv("SI_TEST_REDIS_PASSWORD", "s3cret")
	cfg, err := LoadFromFile(writeConfig(t, minimalConfig+`
    password: ${SI_TEST_REDIS_PASSWORD}
`))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Database.Redis.Password)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name  string
		extra string
	}{
		{"unknown graph backend", "analytics:\n  graph_backend: igraph\n"},
		{"unknown mention source", "analytics:\n  mention_source: kafka\n"},
		{"threshold above range", "analytics:\n  kol_threshold: 120\n"},
		{"bad timezone", "analytics:\n  timezone: Mars/Olympus\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, minimalConfig+tt.extra))
			assert.Error(t, err)
		})
	}

	_, err := LoadFromFile(writeConfig(t, "logging:\n  level: debug\n"))
	assert.ErrorContains(t, err, "camunda.broker_address")
}

func TestLoadFromFile_ShippedConfig(t *testing.T) {
	t.Setenv("DB_USER", "analyst")
	cfg, err := LoadFromFile("../../../configs/config.yaml")
	require.NoError(t, err)

	for _, name := range []string{"analyze-company", "identify-kols", "notify-insights"} {
		_, ok := cfg.Workers[name]
		assert.True(t, ok, name)
	}
	assert.Equal(t, 150*time.Second, GetDuration(GetWorkerConfig(cfg, "analyze-company").Timeout))
	assert.False(t, IsWorkerEnabled(cfg, "notify-insights"))
	assert.True(t, IsWorkerEnabled(cfg, "unlisted-worker"))
}
