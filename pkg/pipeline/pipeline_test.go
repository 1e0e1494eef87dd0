package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seo-sitemap/pkg/config"
	"seo-sitemap/pkg/fetch"
	"seo-sitemap/pkg/report"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testConfig(workers int) *config.AppConfig {
	cfg := &config.AppConfig{
		MaxWorkers:     workers,
		RequestTimeout: 5 * time.Second,
	}
	cfg.Validate()
	return cfg
}

func newTestPipeline(t *testing.T, cfg *config.AppConfig) *Pipeline {
	t.Helper()
	log := testLogger()
	fetcher := fetch.NewFetcher(&http.Client{Timeout: 10 * time.Second}, log)
	return New(cfg, fetcher, fetch.NewRateLimiter(0, log), nil, log)
}

func TestRun_OneRecordPerURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html><head><title>ok</title></head><body><h1>h</h1></body></html>")
	}))
	t.Cleanup(server.Close)

	urls := make([]string, 30)
	for i := range urls {
		urls[i] = fmt.Sprintf("%s/page-%d", server.URL, i)
	}

	for _, workers := range []int{1, 4, 100} {
		t.Run(fmt.Sprintf("%d workers", workers), func(t *testing.T) {
			p := newTestPipeline(t, testConfig(workers))
			records := p.Run(context.Background(), urls)

			require.Len(t, records, len(urls))
			seen := make(map[string]int)
			for _, rec := range records {
				seen[rec.URL]++
			}
			for _, u := range urls {
				assert.Equal(t, 1, seen[u], "URL %s should appear exactly once", u)
			}
		})
	}
}

func TestRun_EmptyInput(t *testing.T) {
	p := newTestPipeline(t, testConfig(4))
	assert.Empty(t, p.Run(context.Background(), nil))
}

func TestRun_TransportFailureProducesStatusZero(t *testing.T) {
	// A closed server guarantees connection refused
	server := httptest.NewServer(http.NotFoundHandler())
	deadURL := server.URL + "/gone"
	server.Close()

	p := newTestPipeline(t, testConfig(2))
	records := p.Run(context.Background(), []string{deadURL})

	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, 0, rec.StatusCode)
	require.Len(t, rec.Errors, 1)
	assert.True(t, strings.HasPrefix(rec.Errors[0], "Request error: "))
	assert.Empty(t, rec.Title)
	assert.Greater(t, rec.ResponseTime, time.Duration(0))
}

func TestRun_SlowURLDoesNotBlockOthers(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/slow" {
			<-release
		}
		io.WriteString(w, "<html><head><title>fast page title</title></head></html>")
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	cfg := testConfig(2)
	cfg.RequestTimeout = 2 * time.Second

	var mu sync.Mutex
	var fastDone time.Time
	p := newTestPipeline(t, cfg)
	p.SetProgressFunc(func(completed, total int) {
		mu.Lock()
		if fastDone.IsZero() {
			fastDone = time.Now()
		}
		mu.Unlock()
	})

	start := time.Now()
	records := p.Run(context.Background(), []string{server.URL + "/slow", server.URL + "/fast"})

	require.Len(t, records, 2)
	mu.Lock()
	firstCompletion := fastDone.Sub(start)
	mu.Unlock()
	// The fast URL must complete well before the slow one times out
	assert.Less(t, firstCompletion, cfg.RequestTimeout)
}

func TestRun_ProgressIsMonotonic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	}))
	t.Cleanup(server.Close)

	urls := make([]string, 10)
	for i := range urls {
		urls[i] = fmt.Sprintf("%s/p%d", server.URL, i)
	}

	p := newTestPipeline(t, testConfig(3))
	var mu sync.Mutex
	var observed []int
	p.SetProgressFunc(func(completed, total int) {
		mu.Lock()
		observed = append(observed, completed)
		mu.Unlock()
	})

	p.Run(context.Background(), urls)

	require.Len(t, observed, len(urls))
	assert.True(t, sort.IntsAreSorted(observed), "completed count must increase monotonically: %v", observed)
	assert.Equal(t, len(urls), observed[len(observed)-1])
	assert.Equal(t, int64(len(urls)), p.Completed())
}

// End-to-end scenario: one page with an over-long title, two 404s.
func TestRun_EndToEndScenario(t *testing.T) {
	longTitle := strings.Repeat("t", 70)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/a" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, `<html><head>
<title>%s</title>
<meta name="description" content="%s">
<meta property="og:title" content="t">
<meta property="og:description" content="d">
<script type="application/ld+json">{}</script>
</head><body><h1>h</h1></body></html>`, longTitle, strings.Repeat("d", 130))
	}))
	t.Cleanup(server.Close)

	p := newTestPipeline(t, testConfig(3))
	records := p.Run(context.Background(), []string{server.URL + "/a", server.URL + "/b", server.URL + "/c"})
	require.Len(t, records, 3)

	var warned, failed int
	for _, rec := range records {
		if rec.Succeeded() {
			assert.Equal(t, []string{"Title too long (>60 characters)"}, rec.Warnings)
			assert.Empty(t, rec.Errors)
			warned++
		} else {
			assert.Equal(t, []string{"HTTP 404"}, rec.Errors)
			failed++
		}
	}
	assert.Equal(t, 1, warned)
	assert.Equal(t, 2, failed)

	summary := report.Summarize(records)
	assert.Equal(t, 3, summary.TotalURLs)
	assert.Equal(t, 1, summary.SuccessfulURLs)
	assert.Equal(t, 2, summary.ErrorURLs)
	assert.InDelta(t, 33.3, summary.SuccessRate, 0.05)
	assert.Equal(t, 2, summary.TotalErrors)
	assert.Equal(t, 1, summary.TotalWarnings)
}

func TestCheckAvailability(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	p := newTestPipeline(t, testConfig(2))
	results := p.CheckAvailability(context.Background(), []string{server.URL + "/ok", server.URL + "/missing"})
	require.Len(t, results, 2)

	byURL := make(map[string]CheckResult)
	for _, r := range results {
		byURL[r.URL] = r
	}
	assert.Equal(t, 200, byURL[server.URL+"/ok"].StatusCode)
	assert.True(t, byURL[server.URL+"/ok"].Reachable)
	assert.Equal(t, 404, byURL[server.URL+"/missing"].StatusCode)
	assert.True(t, byURL[server.URL+"/missing"].Reachable)
}
