package config

import (
	"fmt"
	"time"
)

// Defaults applied by Validate
const (
	defaultSitemapUserAgent = "SEO-Sitemap-Tool/1.0"
	defaultPageUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Validate checks AppConfig fields and applies sensible defaults.
// Returns collected warnings and any fatal error.
// Modifies receiver in place to apply defaults.
func (c *AppConfig) Validate() (warnings []string, err error) {
	// User agents
	if c.SitemapUserAgent == "" {
		c.SitemapUserAgent = defaultSitemapUserAgent
	}
	if c.PageUserAgent == "" {
		c.PageUserAgent = defaultPageUserAgent
	}

	// RequestTimeout
	if c.RequestTimeout <= 0 {
		warnings = append(warnings, "request_timeout not specified or invalid, defaulting to 30s")
		c.RequestTimeout = 30 * time.Second
	}

	// CheckTimeout
	if c.CheckTimeout <= 0 {
		c.CheckTimeout = 10 * time.Second
	}

	// MaxWorkers
	if c.MaxWorkers <= 0 {
		warnings = append(warnings, "max_workers should be > 0, defaulting to 10")
		c.MaxWorkers = 10
	}

	// CheckWorkers
	if c.CheckWorkers <= 0 {
		c.CheckWorkers = 20
	}

	// MaxRequests (global semaphore weight). Must cover at least the worker
	// pool or workers would starve each other.
	if c.MaxRequests <= 0 {
		c.MaxRequests = c.MaxWorkers
	} else if c.MaxRequests < c.MaxWorkers {
		warnings = append(warnings, fmt.Sprintf(
			"max_requests (%d) is below max_workers (%d), raising to match",
			c.MaxRequests, c.MaxWorkers))
		c.MaxRequests = c.MaxWorkers
	}

	// DelayPerHost
	if c.DelayPerHost < 0 {
		warnings = append(warnings, "delay_per_host cannot be negative, setting to 0")
		c.DelayPerHost = 0
	}

	// SemaphoreAcquireTimeout
	if c.SemaphoreAcquireTimeout <= 0 {
		c.SemaphoreAcquireTimeout = 60 * time.Second
	}

	// OutputPrefix
	if c.OutputPrefix == "" {
		c.OutputPrefix = "seo_report"
	}

	// StateDir
	if c.StateDir == "" {
		c.StateDir = "./audit_state"
	}

	// WatchInterval
	if c.WatchInterval <= 0 {
		c.WatchInterval = 1 * time.Hour
	}

	// HTTP client settings
	c.HTTPClientSettings.applyDefaults(&warnings)

	// IndexNow settings
	if c.IndexNow.Endpoint == "" {
		c.IndexNow.Endpoint = "bing"
	}
	if c.IndexNow.BatchSize <= 0 {
		c.IndexNow.BatchSize = 100
	}
	if c.IndexNow.BatchDelay < 0 {
		warnings = append(warnings, "indexnow.batch_delay cannot be negative, setting to 0")
		c.IndexNow.BatchDelay = 0
	}

	return warnings, nil
}

func (h *HTTPClientConfig) applyDefaults(warnings *[]string) {
	if h.Timeout < 0 {
		*warnings = append(*warnings, "http_client_settings.timeout cannot be negative, setting to 0 (no overall limit)")
		h.Timeout = 0
	}
	if h.MaxIdleConns <= 0 {
		h.MaxIdleConns = 100
	}
	if h.MaxIdleConnsPerHost <= 0 {
		h.MaxIdleConnsPerHost = 10
	}
	if h.IdleConnTimeout <= 0 {
		h.IdleConnTimeout = 90 * time.Second
	}
	if h.TLSHandshakeTimeout <= 0 {
		h.TLSHandshakeTimeout = 10 * time.Second
	}
	if h.ExpectContinueTimeout <= 0 {
		h.ExpectContinueTimeout = 1 * time.Second
	}
	if h.DialerTimeout <= 0 {
		h.DialerTimeout = 15 * time.Second
	}
	if h.DialerKeepAlive <= 0 {
		h.DialerKeepAlive = 30 * time.Second
	}
}
