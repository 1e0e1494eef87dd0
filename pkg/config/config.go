package config

import (
	"os"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"seo-sitemap/pkg/utils"
)

// AppConfig holds the global application configuration
type AppConfig struct {
	SitemapUserAgent        string           `yaml:"sitemap_user_agent,omitempty"`        // UA for sitemap/robots fetches
	PageUserAgent           string           `yaml:"page_user_agent,omitempty"`           // UA for page fetches (distinct from sitemap UA)
	RequestTimeout          time.Duration    `yaml:"request_timeout,omitempty"`           // Per-request timeout for analysis fetches
	CheckTimeout            time.Duration    `yaml:"check_timeout,omitempty"`             // Per-request timeout for availability checks
	MaxWorkers              int              `yaml:"max_workers,omitempty"`               // Analysis worker pool size
	CheckWorkers            int              `yaml:"check_workers,omitempty"`             // Availability check worker pool size
	MaxRequests             int              `yaml:"max_requests,omitempty"`              // Global in-flight request cap
	DelayPerHost            time.Duration    `yaml:"delay_per_host,omitempty"`            // Minimum delay between requests to one host
	SemaphoreAcquireTimeout time.Duration    `yaml:"semaphore_acquire_timeout,omitempty"` // Timeout acquiring the global request slot
	RespectRobots           bool             `yaml:"respect_robots,omitempty"`            // Check robots.txt before page fetches
	OutputPrefix            string           `yaml:"output_prefix,omitempty"`             // Report file prefix
	StateDir                string           `yaml:"state_dir,omitempty"`                 // Audit history database directory
	WatchInterval           time.Duration    `yaml:"watch_interval,omitempty"`            // Re-audit interval in watch mode
	HTTPClientSettings      HTTPClientConfig `yaml:"http_client_settings,omitempty"`
	IndexNow                IndexNowConfig   `yaml:"indexnow,omitempty"`
}

// IndexNowConfig holds IndexNow submission settings. Credentials may come from
// the environment (caarlos0/env tags) so they can be kept out of the YAML file.
type IndexNowConfig struct {
	APIKey      string        `yaml:"api_key,omitempty" env:"INDEXNOW_API_KEY"`
	KeyLocation string        `yaml:"key_location,omitempty" env:"INDEXNOW_KEY_LOCATION"`
	Endpoint    string        `yaml:"endpoint,omitempty" env:"INDEXNOW_ENDPOINT"` // "bing", "yandex", or a raw URL
	Host        string        `yaml:"host,omitempty"`                             // Overrides host derived from the sitemap URL
	BatchSize   int           `yaml:"batch_size,omitempty"`
	BatchDelay  time.Duration `yaml:"batch_delay,omitempty"` // Pause between batch submissions
}

// HTTPClientConfig holds settings for the shared HTTP client
type HTTPClientConfig struct {
	Timeout               time.Duration `yaml:"timeout,omitempty"`                 // Overall request timeout
	MaxIdleConns          int           `yaml:"max_idle_conns,omitempty"`          // Max total idle connections
	MaxIdleConnsPerHost   int           `yaml:"max_idle_conns_per_host,omitempty"` // Max idle connections per host
	IdleConnTimeout       time.Duration `yaml:"idle_conn_timeout,omitempty"`       // Timeout for idle connections
	TLSHandshakeTimeout   time.Duration `yaml:"tls_handshake_timeout,omitempty"`   // Timeout for TLS handshake
	ExpectContinueTimeout time.Duration `yaml:"expect_continue_timeout,omitempty"` // Timeout for 100-continue
	ForceAttemptHTTP2     *bool         `yaml:"force_attempt_http2,omitempty"`     // nil=default, true=force, false=disable
	DialerTimeout         time.Duration `yaml:"dialer_timeout,omitempty"`          // Connection dial timeout
	DialerKeepAlive       time.Duration `yaml:"dialer_keep_alive,omitempty"`       // TCP keep-alive interval
}

// Load builds an AppConfig from an optional YAML file plus environment
// overrides. A missing .env file is not an error; a named config file that
// cannot be read or parsed is.
func Load(path string) (*AppConfig, error) {
	// Pick up a local .env for the IndexNow credentials if present
	_ = godotenv.Load()

	var cfg AppConfig
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, utils.WrapErrorf(utils.ErrConfigValidation, "read config file '%s': %v", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, utils.WrapErrorf(utils.ErrConfigValidation, "parse config file '%s': %v", path, err)
		}
	}

	// Environment wins over the YAML file for credentials
	if err := env.Parse(&cfg.IndexNow); err != nil {
		return nil, utils.WrapErrorf(utils.ErrConfigValidation, "parse environment: %v", err)
	}

	return &cfg, nil
}
