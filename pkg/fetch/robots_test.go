package fetch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRobotsServer(t *testing.T, robotsBody string, robotsStatus int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(robotsStatus)
			io.WriteString(w, robotsBody)
			return
		}
		io.WriteString(w, "page")
	}))
	t.Cleanup(server.Close)
	return server
}

func newGate(t *testing.T, userAgent string) *RobotsGate {
	t.Helper()
	log := testLogger()
	return NewRobotsGate(NewFetcher(&http.Client{}, log), NewRateLimiter(0, log), userAgent, log)
}

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestAllowed_DisallowedPath(t *testing.T) {
	server := newRobotsServer(t, "User-agent: *\nDisallow: /private/\n", 200)
	gate := newGate(t, "audit-bot")

	assert.False(t, gate.Allowed(context.Background(), mustParse(t, server.URL+"/private/page")))
	assert.True(t, gate.Allowed(context.Background(), mustParse(t, server.URL+"/public/page")))
}

func TestAllowed_AgentSpecificGroup(t *testing.T) {
	robots := "User-agent: audit-bot\nDisallow: /\n\nUser-agent: *\nDisallow:\n"
	server := newRobotsServer(t, robots, 200)

	blocked := newGate(t, "audit-bot")
	assert.False(t, blocked.Allowed(context.Background(), mustParse(t, server.URL+"/page")))

	other := newGate(t, "some-other-agent")
	assert.True(t, other.Allowed(context.Background(), mustParse(t, server.URL+"/page")))
}

func TestAllowed_FailOpenOnMissingRobots(t *testing.T) {
	server := newRobotsServer(t, "not found", 404)
	gate := newGate(t, "audit-bot")

	assert.True(t, gate.Allowed(context.Background(), mustParse(t, server.URL+"/anything")))
}

func TestAllowed_FailOpenOnUnreachableHost(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	deadURL := server.URL
	server.Close()

	gate := newGate(t, "audit-bot")
	assert.True(t, gate.Allowed(context.Background(), mustParse(t, deadURL+"/page")))
}

func TestRobotsFetchedOncePerHost(t *testing.T) {
	var robotsFetches atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			robotsFetches.Add(1)
			io.WriteString(w, "User-agent: *\nDisallow: /private/\n")
		}
	}))
	t.Cleanup(server.Close)

	gate := newGate(t, "audit-bot")
	for i := 0; i < 5; i++ {
		gate.Allowed(context.Background(), mustParse(t, server.URL+"/page"))
	}
	assert.Equal(t, int32(1), robotsFetches.Load())
}

func TestRobotsFailureCachedToo(t *testing.T) {
	var robotsFetches atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			robotsFetches.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	t.Cleanup(server.Close)

	gate := newGate(t, "audit-bot")
	for i := 0; i < 3; i++ {
		assert.True(t, gate.Allowed(context.Background(), mustParse(t, server.URL+"/page")))
	}
	assert.Equal(t, int32(1), robotsFetches.Load())
}

func TestRobotsRequestSendsConfiguredUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			gotUA = r.Header.Get("User-Agent")
		}
	}))
	t.Cleanup(server.Close)

	gate := newGate(t, "SEO-Sitemap-Tool/1.0")
	gate.Allowed(context.Background(), mustParse(t, server.URL+"/page"))
	assert.Equal(t, "SEO-Sitemap-Tool/1.0", gotUA)
}
