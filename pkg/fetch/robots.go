package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/temoto/robotstxt"
)

// RobotsGate checks page URLs against each host's robots.txt before they are
// fetched. Parsed robots data is cached per host; a fetch or parse failure is
// cached as nil and the host is treated as fully allowed from then on.
type RobotsGate struct {
	fetcher     *Fetcher
	rateLimiter *RateLimiter
	userAgent   string // UA used both to fetch robots.txt and for group matching
	cache       map[string]*robotstxt.RobotsData
	cacheMu     sync.Mutex
	log         *logrus.Entry
}

// NewRobotsGate creates a RobotsGate
func NewRobotsGate(fetcher *Fetcher, rateLimiter *RateLimiter, userAgent string, log *logrus.Logger) *RobotsGate {
	return &RobotsGate{
		fetcher:     fetcher,
		rateLimiter: rateLimiter,
		userAgent:   userAgent,
		cache:       make(map[string]*robotstxt.RobotsData),
		log:         log.WithField("component", "robots_gate"),
	}
}

// Allowed reports whether the user agent may fetch targetURL. Fail-open: if
// robots.txt cannot be obtained or parsed, access is allowed.
func (rg *RobotsGate) Allowed(ctx context.Context, targetURL *url.URL) bool {
	data := rg.robotsData(ctx, targetURL)
	if data == nil {
		return true
	}
	return data.TestAgent(targetURL.RequestURI(), rg.userAgent)
}

// robotsData returns the cached robots data for the host, fetching on a miss.
func (rg *RobotsGate) robotsData(ctx context.Context, targetURL *url.URL) *robotstxt.RobotsData {
	host := targetURL.Hostname()

	rg.cacheMu.Lock()
	data, found := rg.cache[host]
	rg.cacheMu.Unlock()
	if found {
		return data
	}

	robotsURL := &url.URL{Scheme: targetURL.Scheme, Host: targetURL.Host, Path: "/robots.txt"}
	if robotsURL.Scheme != "http" && robotsURL.Scheme != "https" {
		robotsURL.Scheme = "https"
	}
	robotsLog := rg.log.WithFields(logrus.Fields{"host": host, "robots_url": robotsURL.String()})
	robotsLog.Debug("Fetching robots.txt...")

	data = rg.fetchAndParse(ctx, robotsURL, robotsLog)

	rg.cacheMu.Lock()
	rg.cache[host] = data // nil is cached too, so failures are not re-fetched
	rg.cacheMu.Unlock()
	return data
}

func (rg *RobotsGate) fetchAndParse(ctx context.Context, robotsURL *url.URL, robotsLog *logrus.Entry) *robotstxt.RobotsData {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL.String(), nil)
	if err != nil {
		robotsLog.Errorf("Error creating robots.txt request: %v", err)
		return nil
	}
	req.Header.Set("User-Agent", rg.userAgent)

	rg.rateLimiter.ApplyDelay(robotsURL.Hostname())
	resp, err := rg.fetcher.FetchOK(req, ctx)
	rg.rateLimiter.UpdateLastRequestTime(robotsURL.Hostname())
	if err != nil {
		robotsLog.Debugf("Fetching robots.txt failed: %v", err)
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		robotsLog.Errorf("Error reading robots.txt body: %v", err)
		return nil
	}

	data, err := robotstxt.FromBytes(body)
	if err != nil {
		robotsLog.Warnf("Error parsing robots.txt: %v", err)
		return nil
	}
	robotsLog.Debug("Fetched and parsed robots.txt")
	return data
}
