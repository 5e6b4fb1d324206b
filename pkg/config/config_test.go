package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const validConfig = `
applications:
  - name: live
    thread_count: 2
transport:
  address: ":8081"
api:
  address: ":8080"
`

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	require.Len(t, cfg.Applications, 1)
	assert.Equal(t, "live", cfg.Applications[0].Name)
	assert.Equal(t, 2, cfg.Applications[0].ThreadCount)

	// Defaults
	assert.Equal(t, 5*time.Second, cfg.Publisher.StatsInterval)
	assert.Equal(t, 10*time.Second, cfg.API.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateNoApplications(t *testing.T) {
	_, err := Load(writeConfig(t, `
applications: []
transport:
  address: ":8081"
api:
  address: ":8080"
`))
	assert.ErrorContains(t, err, "applications must not be empty")
}

func TestValidateDuplicateApplicationName(t *testing.T) {
	_, err := Load(writeConfig(t, `
applications:
  - name: live
  - name: live
transport:
  address: ":8081"
api:
  address: ":8080"
`))
	assert.ErrorContains(t, err, "duplicated")
}

func TestValidateTracingNeedsURL(t *testing.T) {
	_, err := Load(writeConfig(t, `
applications:
  - name: live
transport:
  address: ":8081"
api:
  address: ":8080"
tracing:
  enabled: true
`))
	assert.ErrorContains(t, err, "jaeger_url")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MEDIAPUB_API_ADDRESS", ":9999")
	t.Setenv("MEDIAPUB_LOG_LEVEL", "debug")

	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.API.Address)
	assert.Equal(t, "debug", cfg.Logging.Level)
}
