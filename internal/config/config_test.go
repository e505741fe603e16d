package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DataModeMock, cfg.DataMode)
	assert.Equal(t, 300*time.Millisecond, cfg.Store.Latency)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "Asia/Jakarta", cfg.Facility.Timezone)
	assert.Equal(t, "PUSKESMAS MERDEKA", cfg.Facility.Name)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yml := "data_mode: api\nstore:\n  latency: 50ms\ndatabase:\n  name: clinic\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(yml), 0o600))

	t.Setenv("SIMPUS_SERVER_PORT", "9999")
	t.Setenv("SIMPUS_FAKER_BASE_URL", "http://faker:8090")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, DataModeAPI, cfg.DataMode)
	assert.Equal(t, 50*time.Millisecond, cfg.Store.Latency)
	assert.Equal(t, "clinic", cfg.Database.Name)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "http://faker:8090", cfg.Faker.BaseURL)
	assert.Contains(t, cfg.Database.DSN(), "dbname=clinic")
}

func TestValidateRejectsUnknownMode(t *testing.T) {
	cfg := &Config{DataMode: "offline", Facility: FacilityConfig{Timezone: "Asia/Jakarta"}}
	assert.Error(t, cfg.Validate())
}
