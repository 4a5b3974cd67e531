package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("database:\n  host: localhost\n  port: 5432\n"))
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.Scheduling.Buffer())
	assert.Equal(t, 10*time.Second, cfg.Scheduling.AssignmentLockTTL())
	assert.Equal(t, 5*time.Minute, cfg.Routes.CacheTTL())
	assert.Equal(t, TransportKafka, cfg.Notifications.Transport)
	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 5*time.Minute, cfg.Worker.CompletionSweep())
	assert.NotEmpty(t, cfg.Notifications.EmailFrom)
}

func TestParse_BufferFromFile(t *testing.T) {
	cfg, err := Parse([]byte("scheduling:\n  buffer_minutes: 45\n"))
	require.NoError(t, err)
	assert.Equal(t, 45*time.Minute, cfg.Scheduling.Buffer())
}

func TestParse_BufferFromEnv(t *testing.T) {
	t.Setenv("SCHEDULING_BUFFER_MINUTES", "0")

	cfg, err := Parse([]byte("scheduling:\n  buffer_minutes: 45\n"))
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.Scheduling.Buffer())
}

func TestParse_InvalidBufferEnv(t *testing.T) {
	t.Setenv("SCHEDULING_BUFFER_MINUTES", "soon")

	_, err := Parse([]byte("{}"))
	assert.Error(t, err)
}

func TestParse_Timezone(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	require.NoError(t, err)
	loc, err := cfg.Scheduling.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	cfg, err = Parse([]byte("scheduling:\n  timezone: Europe/Belgrade\n"))
	require.NoError(t, err)
	loc, err = cfg.Scheduling.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Belgrade", loc.String())

	_, err = Parse([]byte("scheduling:\n  timezone: Mars/Olympus\n"))
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  host: db\n  port: 5432\n  user: app\n  password: secret\n  name: transfers\n  ssl_mode: disable\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "host=db port=5432 user=app password=secret dbname=transfers sslmode=disable", cfg.Database.DSN())

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
