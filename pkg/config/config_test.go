package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seo-sitemap/pkg/utils"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FullFile(t *testing.T) {
	path := writeConfig(t, `
sitemap_user_agent: "audit-bot/2.0"
request_timeout: 45s
max_workers: 8
max_requests: 16
delay_per_host: 250ms
respect_robots: true
output_prefix: nightly
watch_interval: 30m
indexnow:
  api_key: file-key
  endpoint: yandex
  batch_size: 50
http_client_settings:
  max_idle_conns: 42
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "audit-bot/2.0", cfg.SitemapUserAgent)
	assert.Equal(t, 45*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 8, cfg.MaxWorkers)
	assert.Equal(t, 16, cfg.MaxRequests)
	assert.Equal(t, 250*time.Millisecond, cfg.DelayPerHost)
	assert.True(t, cfg.RespectRobots)
	assert.Equal(t, "nightly", cfg.OutputPrefix)
	assert.Equal(t, 30*time.Minute, cfg.WatchInterval)
	assert.Equal(t, "file-key", cfg.IndexNow.APIKey)
	assert.Equal(t, "yandex", cfg.IndexNow.Endpoint)
	assert.Equal(t, 50, cfg.IndexNow.BatchSize)
	assert.Equal(t, 42, cfg.HTTPClientSettings.MaxIdleConns)
}

func TestLoad_EmptyPathIsValid(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrConfigValidation)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "max_workers: [not a number\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrConfigValidation)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, `
indexnow:
  api_key: file-key
  key_location: https://example.com/file-key.txt
`)
	t.Setenv("INDEXNOW_API_KEY", "env-key")
	t.Setenv("INDEXNOW_ENDPOINT", "yandex")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.IndexNow.APIKey)
	assert.Equal(t, "yandex", cfg.IndexNow.Endpoint)
	// Untouched by the environment, file value survives
	assert.Equal(t, "https://example.com/file-key.txt", cfg.IndexNow.KeyLocation)
}

func TestValidate_AppliesDefaults(t *testing.T) {
	cfg := &AppConfig{}
	warnings, err := cfg.Validate()
	require.NoError(t, err)
	assert.NotEmpty(t, warnings)

	assert.Equal(t, "SEO-Sitemap-Tool/1.0", cfg.SitemapUserAgent)
	assert.NotEmpty(t, cfg.PageUserAgent)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 10*time.Second, cfg.CheckTimeout)
	assert.Equal(t, 10, cfg.MaxWorkers)
	assert.Equal(t, 20, cfg.CheckWorkers)
	assert.Equal(t, cfg.MaxWorkers, cfg.MaxRequests)
	assert.Equal(t, 60*time.Second, cfg.SemaphoreAcquireTimeout)
	assert.Equal(t, "seo_report", cfg.OutputPrefix)
	assert.Equal(t, "./audit_state", cfg.StateDir)
	assert.Equal(t, time.Hour, cfg.WatchInterval)
	assert.Equal(t, "bing", cfg.IndexNow.Endpoint)
	assert.Equal(t, 100, cfg.IndexNow.BatchSize)
	assert.Equal(t, 100, cfg.HTTPClientSettings.MaxIdleConns)
	assert.Equal(t, 90*time.Second, cfg.HTTPClientSettings.IdleConnTimeout)
}

func TestValidate_RaisesMaxRequestsToWorkerCount(t *testing.T) {
	cfg := &AppConfig{MaxWorkers: 20, MaxRequests: 5}
	warnings, err := cfg.Validate()
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.MaxRequests)

	found := false
	for _, w := range warnings {
		if w == "max_requests (5) is below max_workers (20), raising to match" {
			found = true
		}
	}
	assert.True(t, found, "expected a max_requests warning, got %v", warnings)
}

func TestValidate_NegativeDelayResetToZero(t *testing.T) {
	cfg := &AppConfig{DelayPerHost: -time.Second}
	warnings, err := cfg.Validate()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.DelayPerHost)
	assert.Contains(t, warnings, "delay_per_host cannot be negative, setting to 0")
}

func TestValidate_KeepsExplicitValues(t *testing.T) {
	cfg := &AppConfig{
		RequestTimeout: 5 * time.Second,
		MaxWorkers:     3,
		MaxRequests:    7,
		OutputPrefix:   "custom",
	}
	_, err := cfg.Validate()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 3, cfg.MaxWorkers)
	assert.Equal(t, 7, cfg.MaxRequests)
	assert.Equal(t, "custom", cfg.OutputPrefix)
}
