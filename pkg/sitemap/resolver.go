package sitemap

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"seo-sitemap/pkg/fetch"
	"seo-sitemap/pkg/parse"
	"seo-sitemap/pkg/utils"
)

// Resolver expands a sitemap source (network URL or local file) into the flat,
// deduplicated set of page URLs it describes. Index documents are walked with
// an explicit work queue and a visited set keyed on the trimmed source string,
// so cyclic or duplicated index references terminate instead of recursing
// without bound.
type Resolver struct {
	fetcher     *fetch.Fetcher
	rateLimiter *fetch.RateLimiter
	userAgent   string
	timeout     time.Duration // per sitemap fetch
	log         *logrus.Entry
}

// NewResolver creates a Resolver
func NewResolver(fetcher *fetch.Fetcher, rateLimiter *fetch.RateLimiter, userAgent string, timeout time.Duration, log *logrus.Logger) *Resolver {
	return &Resolver{
		fetcher:     fetcher,
		rateLimiter: rateLimiter,
		userAgent:   userAgent,
		timeout:     timeout,
		log:         log.WithField("component", "sitemap_resolver"),
	}
}

// Resolve returns every distinct page URL reachable from source. A failure to
// load or parse the top-level document is fatal; a failing nested branch is
// logged and skipped while its siblings are still resolved. Order of the
// returned slice is not guaranteed.
func (r *Resolver) Resolve(ctx context.Context, source string) ([]string, error) {
	source = strings.TrimSpace(source)

	pageURLs := make(map[string]struct{})
	visited := map[string]struct{}{source: {}}
	queue := []string{source}
	topLevel := true

	for len(queue) > 0 {
		src := queue[0]
		queue = queue[1:]
		srcLog := r.log.WithField("sitemap", src)

		doc, err := r.loadAndParse(ctx, src)
		if err != nil {
			if topLevel {
				return nil, err
			}
			srcLog.WithField("category", utils.CategorizeError(err)).
				Warnf("Skipping nested sitemap branch: %v", err)
			continue
		}
		topLevel = false

		switch {
		case doc.Index != nil:
			srcLog.Infof("Parsed as sitemap index, found %d references", len(doc.Index.Sitemaps))
			for _, entry := range doc.Index.Sitemaps {
				nested := strings.TrimSpace(entry.Loc)
				if nested == "" {
					continue
				}
				if _, seen := visited[nested]; seen {
					srcLog.Debugf("Nested sitemap already visited: %s", nested)
					continue
				}
				visited[nested] = struct{}{}
				queue = append(queue, nested)
			}
			// Some generators put page-level <url> entries directly in an
			// index document; collect those too.
			collectLocs(pageURLs, doc.Index.URLs)

		case doc.URLSet != nil:
			srcLog.Infof("Parsed as URL set, found %d URLs", len(doc.URLSet.URLs))
			collectLocs(pageURLs, doc.URLSet.URLs)
		}
	}

	result := make([]string, 0, len(pageURLs))
	for u := range pageURLs {
		result = append(result, u)
	}
	r.log.Infof("Resolved %d distinct URLs", len(result))
	return result, nil
}

func collectLocs(dst map[string]struct{}, entries []parse.XMLURL) {
	for _, entry := range entries {
		loc := strings.TrimSpace(entry.Loc)
		if loc != "" {
			dst[loc] = struct{}{}
		}
	}
}

// loadAndParse retrieves the raw sitemap bytes and classifies the document.
func (r *Resolver) loadAndParse(ctx context.Context, src string) (parse.Document, error) {
	raw, err := r.load(ctx, src)
	if err != nil {
		return parse.Document{}, err
	}
	doc, err := parse.ParseDocument(raw)
	if err != nil {
		return parse.Document{}, utils.WrapErrorf(utils.ErrSitemapParse, "sitemap '%s'", src)
	}
	return doc, nil
}

// load reads the sitemap bytes from the network or the local filesystem.
// file:// prefixes and bare filesystem paths are treated as local reads.
func (r *Resolver) load(ctx context.Context, src string) ([]byte, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return r.loadNetwork(ctx, src)
	}
	path := strings.TrimPrefix(src, "file://")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, utils.WrapErrorf(utils.ErrSourceUnavailable, "read sitemap file '%s': %v", path, err)
	}
	return raw, nil
}

func (r *Resolver) loadNetwork(ctx context.Context, src string) ([]byte, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, src, nil)
	if err != nil {
		return nil, utils.WrapErrorf(utils.ErrSourceUnavailable, "build request for sitemap '%s': %v", src, err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	if u, err := url.Parse(src); err == nil {
		r.rateLimiter.ApplyDelay(u.Hostname())
		defer r.rateLimiter.UpdateLastRequestTime(u.Hostname())
	}

	resp, err := r.fetcher.FetchOK(req, fetchCtx)
	if err != nil {
		return nil, utils.WrapErrorf(utils.ErrSourceUnavailable, "fetch sitemap '%s': %v", src, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, utils.WrapErrorf(utils.ErrSourceUnavailable, "read sitemap '%s' body: %v", src, err)
	}
	return raw, nil
}
