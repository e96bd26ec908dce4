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
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, Default().Automation, cfg.Automation)
	assert.Equal(t, DriverBadger, cfg.Storage.Driver)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAMLOverDefaults(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
storage:
  driver: file
  path: /tmp/extractor
automation:
  max_pages: 5
  page_delay_min: 1s
  page_delay_max: 2500ms
  schedule: "@every 6h"
telegram:
  count_every: 30s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, DriverFile, cfg.Storage.Driver)
	assert.Equal(t, 5, cfg.Automation.MaxPages)
	assert.Equal(t, time.Second, cfg.Automation.PageDelayMin)
	assert.Equal(t, 2500*time.Millisecond, cfg.Automation.PageDelayMax)
	assert.Equal(t, 3*time.Second, cfg.Automation.SettleDelay, "unset keys keep their default")
	assert.Equal(t, "@every 6h", cfg.Automation.Schedule)
	assert.Equal(t, 30*time.Second, cfg.Telegram.CountEvery)
	assert.False(t, cfg.Telegram.Enabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("START_URL", "https://www.linkedin.com/jobs/search/?keywords=rust")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/jobs")
	t.Setenv("STORAGE_DRIVER", DriverPostgres)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "-100200")
	t.Setenv("EXTRACTOR_SERVER", "http://10.0.0.2:9000")

	cfg, err := Load(writeConfig(t, "log_level: warn\n"))
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Contains(t, cfg.StartURL, "rust")
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "postgres://u:p@localhost:5432/jobs", cfg.Storage.DatabaseURL)
	assert.True(t, cfg.Telegram.Enabled())
	assert.Equal(t, int64(-100200), cfg.Telegram.ChatID)
	assert.Equal(t, "http://10.0.0.2:9000", cfg.Popup.Server)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_BadChatID(t *testing.T) {
	t.Setenv("TELEGRAM_CHAT_ID", "not-a-number")

	_, err := Load(writeConfig(t, ""))
	assert.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "automation: [\n"))
	assert.Error(t, err)
}

func TestValidate_ListsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Storage.Driver = "sqlite"
	cfg.Automation.MaxPages = 0
	cfg.Automation.PageDelayMin = 5 * time.Second
	cfg.Automation.PageDelayMax = time.Second
	cfg.Telegram.Token = "123:abc"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"storage.driver", "max_pages", "page_delay", "chat_id"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidate_PostgresNeedsURL(t *testing.T) {
	cfg := Default()
	cfg.Storage.Driver = DriverPostgres

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}
