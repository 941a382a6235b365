package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  address: 127.0.0.1
  port: 9090
proxy:
  url: http://localhost:7777/rpc
  project_key: /srv/projects/alpha
journal:
  path: /var/lib/threadloom/journal
stream:
  poll_interval_ms: 1500
  batch_max: 25
security:
  api_keys:
    backend: [bk1]
    admin: [adm1]
retention:
  enabled: true
  cron: "0 2 * * *"
  max_age_days: 14
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9090", cfg.Addr())
	assert.Equal(t, "http://localhost:7777/rpc", cfg.Proxy.URL)
	assert.Equal(t, "/srv/projects/alpha", cfg.Proxy.ProjectKey)
	assert.Equal(t, 1500, cfg.Stream.PollIntervalMS)
	assert.Equal(t, []string{"bk1"}, cfg.Security.APIKeys.Backend)
	assert.True(t, cfg.Retention.Enabled)
	assert.Equal(t, 14, cfg.Retention.MaxAgeDays)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorContains(t, err, "config file not found")
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("proxy:\n  url: http://file:1111\n"), 0o600))

	t.Setenv("THREADLOOM_PROXY_URL", "http://env:2222")
	t.Setenv("THREADLOOM_ADDR", "0.0.0.0:8088")
	t.Setenv("THREADLOOM_BACKEND_KEYS", "a, b ,c")

	res, err := LoadEffective(path)
	require.NoError(t, err)
	assert.Equal(t, "config", res.Source)
	assert.Equal(t, "http://env:2222", res.ProxyURL)
	assert.Equal(t, "0.0.0.0:8088", res.Addr)
	assert.Equal(t, []string{"a", "b", "c"}, res.Config.Security.APIKeys.Backend)
}

func TestEffectiveDefaultsWhenNothingSet(t *testing.T) {
	res, err := LoadEffective(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "defaults", res.Source)
	assert.Equal(t, "./.threadloom", res.JournalPath)
	assert.Equal(t, "0.0.0.0:8080", res.Addr)
}
