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
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
[storage]
driver = "memory"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, NotifierDriverLog, cfg.Notifications.Driver)
	assert.Equal(t, 200, cfg.Sweep.BatchSize)

	policy := cfg.Policy()
	assert.Equal(t, time.Hour, policy.SessionDuration)
	assert.Equal(t, time.Hour, policy.MinLeadTime)
	assert.Equal(t, 60*24*time.Hour, policy.MaxLeadTime)
	assert.Equal(t, 52, policy.HistoryWeeks)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
[database]
host = "db"
dbname = "scheduling"

[notifications]
driver = "kafka"
`)
	t.Setenv("DB_HOST", "postgres.internal")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres.internal", cfg.Database.Host)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Notifications.KafkaBrokers)
	assert.Contains(t, cfg.Database.DSN(), "host=postgres.internal")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
	}{
		{"unknown storage", "[storage]\ndriver = \"mongo\"\n", ErrInvalidStorageDriver},
		{"missing database", "[storage]\ndriver = \"postgres\"\n", ErrMissingDatabase},
		{"unknown notifier", "[storage]\ndriver = \"memory\"\n[notifications]\ndriver = \"sqs\"\n", ErrInvalidNotifierDriver},
		{"session not dividing a day", "[storage]\ndriver = \"memory\"\n[scheduling]\nsession_duration_minutes = 50\n", ErrInvalidSessionLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}
