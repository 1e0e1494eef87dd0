package pipeline

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"seo-sitemap/pkg/config"
	"seo-sitemap/pkg/fetch"
	"seo-sitemap/pkg/inspect"
	"seo-sitemap/pkg/models"
)

// ProgressFunc is invoked after each URL reaches a terminal outcome.
type ProgressFunc func(completed, total int)

// Pipeline fans the discovered URL set out over a fixed worker pool, runs the
// content inspection on each fetched page, and fans the records back in over
// a results channel. Workers share the HTTP client, the per-host rate limiter
// and a weighted semaphore capping global in-flight requests; they never
// block on one another outside those resources.
type Pipeline struct {
	appCfg          *config.AppConfig
	fetcher         *fetch.Fetcher
	rateLimiter     *fetch.RateLimiter
	robots          *fetch.RobotsGate // nil when robots checking is disabled
	globalSemaphore *semaphore.Weighted
	log             *logrus.Entry

	completed  atomic.Int64
	onProgress ProgressFunc
}

// New creates a Pipeline. robots may be nil to skip robots.txt checks.
func New(appCfg *config.AppConfig, fetcher *fetch.Fetcher, rateLimiter *fetch.RateLimiter, robots *fetch.RobotsGate, log *logrus.Logger) *Pipeline {
	return &Pipeline{
		appCfg:          appCfg,
		fetcher:         fetcher,
		rateLimiter:     rateLimiter,
		robots:          robots,
		globalSemaphore: semaphore.NewWeighted(int64(appCfg.MaxRequests)),
		log:             log.WithField("component", "pipeline"),
	}
}

// SetProgressFunc registers a callback observing the completed count.
// Must be called before Run.
func (p *Pipeline) SetProgressFunc(fn ProgressFunc) {
	p.onProgress = fn
}

// Completed returns the number of URLs that have reached a terminal outcome
// in the current run. Monotonically increasing while Run is in flight.
func (p *Pipeline) Completed() int64 {
	return p.completed.Load()
}

// Run analyzes every URL and returns exactly one record per input URL, in
// completion order. It returns only once all submitted URLs have produced a
// record; a slow or hung URL delays only its own record, bounded by the
// per-request timeout.
func (p *Pipeline) Run(ctx context.Context, urls []string) []*models.URLAnalysis {
	total := len(urls)
	if total == 0 {
		return nil
	}
	p.completed.Store(0)

	numWorkers := p.appCfg.MaxWorkers
	if numWorkers > total {
		numWorkers = total
	}
	p.log.Infof("Starting analysis of %d URLs with %d workers", total, numWorkers)

	jobs := make(chan string)
	results := make(chan *models.URLAnalysis)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pageURL := range jobs {
				results <- p.analyzeURL(ctx, pageURL)
			}
		}()
	}

	go func() {
		for _, u := range urls {
			jobs <- u
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	collected := make([]*models.URLAnalysis, 0, total)
	for analysis := range results {
		collected = append(collected, analysis)
		done := int(p.completed.Add(1))
		if p.onProgress != nil {
			p.onProgress(done, total)
		}
	}

	p.log.Infof("Analysis finished: %d records collected", len(collected))
	return collected
}

// analyzeURL fetches one page and inspects it. Every failure mode converts
// into a failure record; nothing propagates as an error, so the batch always
// completes.
func (p *Pipeline) analyzeURL(ctx context.Context, pageURL string) *models.URLAnalysis {
	urlLog := p.log.WithField("url", pageURL)
	start := time.Now()

	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return models.NewFailureAnalysis(pageURL, 0, time.Since(start), "Request error: "+err.Error())
	}

	if p.robots != nil && !p.robots.Allowed(ctx, parsedURL) {
		urlLog.Debug("Blocked by robots.txt")
		return models.NewFailureAnalysis(pageURL, 0, time.Since(start), "Disallowed by robots.txt")
	}

	// Global request cap
	acquireCtx, cancelAcquire := context.WithTimeout(ctx, p.appCfg.SemaphoreAcquireTimeout)
	err = p.globalSemaphore.Acquire(acquireCtx, 1)
	cancelAcquire()
	if err != nil {
		urlLog.Warnf("Could not acquire request slot: %v", err)
		return models.NewFailureAnalysis(pageURL, 0, time.Since(start), "Request error: "+err.Error())
	}
	defer p.globalSemaphore.Release(1)

	host := parsedURL.Hostname()
	p.rateLimiter.ApplyDelay(host)
	defer p.rateLimiter.UpdateLastRequestTime(host)

	reqCtx, cancel := context.WithTimeout(ctx, p.appCfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, pageURL, nil)
	if err != nil {
		return models.NewFailureAnalysis(pageURL, 0, time.Since(start), "Request error: "+err.Error())
	}
	req.Header.Set("User-Agent", p.appCfg.PageUserAgent)

	resp, err := p.fetcher.Fetch(req, reqCtx)
	if err != nil {
		// Transport failure: status 0 sentinel, latency still recorded
		return models.NewFailureAnalysis(pageURL, 0, time.Since(start), "Request error: "+err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.NewFailureAnalysis(pageURL, 0, time.Since(start), "Request error: "+err.Error())
	}
	latency := time.Since(start)

	analysis := inspect.Inspect(pageURL, resp.StatusCode, string(body))
	analysis.ResponseTime = latency
	return analysis
}

// CheckResult is the outcome of a fast availability probe for one URL.
type CheckResult struct {
	URL        string
	StatusCode int  // 0 on transport failure
	Reachable  bool // transport succeeded, whatever the status
}

// CheckAvailability runs a HEAD-based reachability scan over the URL set.
// Lighter than Run: no body read, no content inspection, a shorter timeout
// and a wider worker pool.
func (p *Pipeline) CheckAvailability(ctx context.Context, urls []string) []CheckResult {
	total := len(urls)
	if total == 0 {
		return nil
	}
	p.completed.Store(0)

	numWorkers := p.appCfg.CheckWorkers
	if numWorkers > total {
		numWorkers = total
	}
	p.log.Infof("Checking availability of %d URLs with %d workers", total, numWorkers)

	jobs := make(chan string)
	results := make(chan CheckResult)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pageURL := range jobs {
				results <- p.checkURL(ctx, pageURL)
			}
		}()
	}

	go func() {
		for _, u := range urls {
			jobs <- u
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	collected := make([]CheckResult, 0, total)
	for res := range results {
		collected = append(collected, res)
		done := int(p.completed.Add(1))
		if p.onProgress != nil {
			p.onProgress(done, total)
		}
	}
	return collected
}

func (p *Pipeline) checkURL(ctx context.Context, pageURL string) CheckResult {
	reqCtx, cancel := context.WithTimeout(ctx, p.appCfg.CheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodHead, pageURL, nil)
	if err != nil {
		return CheckResult{URL: pageURL}
	}
	req.Header.Set("User-Agent", p.appCfg.PageUserAgent)

	resp, err := p.fetcher.Fetch(req, reqCtx)
	if err != nil {
		return CheckResult{URL: pageURL}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return CheckResult{URL: pageURL, StatusCode: resp.StatusCode, Reachable: true}
}
