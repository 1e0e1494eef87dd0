package utils

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapErrorf(t *testing.T) {
	err := WrapErrorf(ErrSourceUnavailable, "fetching '%s'", "https://example.com/sitemap.xml")
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.Equal(t, "fetching 'https://example.com/sitemap.xml': sitemap source unavailable", err.Error())
}

func TestWrapErrorf_NilSentinel(t *testing.T) {
	assert.NoError(t, WrapErrorf(nil, "context"))
}

type fakeTimeoutError struct{}

func (fakeTimeoutError) Error() string   { return "i/o timeout" }
func (fakeTimeoutError) Timeout() bool   { return true }
func (fakeTimeoutError) Temporary() bool { return true }

func TestCategorizeError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "None"},
		{"source unavailable", WrapErrorf(ErrSourceUnavailable, "ctx"), "Sitemap_SourceUnavailable"},
		{"parse", WrapErrorf(ErrSitemapParse, "ctx"), "Sitemap_ParseXML"},
		{"empty sitemap", ErrEmptySitemap, "Sitemap_Empty"},
		{"http 404", fmt.Errorf("%w: status 404 404 Not Found", ErrClientHTTPError), "HTTP_404"},
		{"http 403", fmt.Errorf("%w: status 403 403 Forbidden", ErrClientHTTPError), "HTTP_403"},
		{"http 429", fmt.Errorf("%w: status 429 429 Too Many Requests", ErrClientHTTPError), "HTTP_429"},
		{"http 4xx", fmt.Errorf("%w: status 410 410 Gone", ErrClientHTTPError), "HTTP_4xx"},
		{"http 5xx", fmt.Errorf("%w: status 503", ErrServerHTTPError), "HTTP_5xx"},
		{"http other", fmt.Errorf("%w: status 301", ErrOtherHTTPError), "HTTP_OtherStatus"},
		{"robots", ErrRobotsDisallowed, "Policy_Robots"},
		{"database", WrapErrorf(ErrDatabase, "put"), "Database_Other"},
		{"config", WrapErrorf(ErrConfigValidation, "parse"), "Config_Validation"},
		{"indexnow endpoint", WrapErrorf(ErrUnsupportedEndpoint, "'x'"), "IndexNow_Endpoint"},
		{"context canceled", context.Canceled, "System_ContextCanceled"},
		{"deadline", context.DeadlineExceeded, "System_ContextDeadlineExceeded"},
		{"file missing", os.ErrNotExist, "Filesystem_NotExist"},
		{"net timeout", fakeTimeoutError{}, "Network_Timeout"},
		{"refused", errors.New("dial tcp: connection refused"), "Network_ConnectionRefused"},
		{"dns", errors.New("lookup nope.example: no such host"), "Network_DNSLookup"},
		{"tls", errors.New("x509: certificate signed by unknown authority"), "Network_TLS"},
		{"reset", errors.New("read: connection reset by peer"), "Network_ConnectionReset"},
		{"unknown", errors.New("something odd"), "Unknown"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CategorizeError(tc.err))
		})
	}
}

func TestCategorizeError_SentinelWinsOverFallback(t *testing.T) {
	// A wrapped sentinel categorizes by sentinel even when the message
	// matches a fallback pattern
	err := WrapErrorf(ErrSourceUnavailable, "request timeout fetching sitemap")
	assert.Equal(t, "Sitemap_SourceUnavailable", CategorizeError(err))
}
