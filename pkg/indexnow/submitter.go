package indexnow

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"seo-sitemap/pkg/config"
	"seo-sitemap/pkg/fetch"
	"seo-sitemap/pkg/utils"
)

// Named endpoints; any https URL is also accepted as-is.
var endpoints = map[string]string{
	"bing":   "https://api.indexnow.org/indexnow",
	"yandex": "https://yandex.com/indexnow",
}

// payload is the IndexNow batch submission body
type payload struct {
	Host        string   `json:"host"`
	Key         string   `json:"key"`
	KeyLocation string   `json:"keyLocation"`
	URLList     []string `json:"urlList"`
}

// BatchResult is the outcome of submitting one URL batch
type BatchResult struct {
	StatusCode int
	Accepted   bool // 200 or 202
	Detail     string
}

// RunTotals aggregates a full submission run
type RunTotals struct {
	URLsSubmitted     int
	TotalBatches      int
	SuccessfulBatches int
}

// Submitter posts discovered URLs to an IndexNow endpoint in batches.
// No retry or backoff: a rejected batch is logged and the run moves on.
type Submitter struct {
	fetcher     *fetch.Fetcher
	endpointURL string
	cfg         config.IndexNowConfig
	log         *logrus.Entry
}

// NewSubmitter creates a Submitter. cfg.Endpoint is either a known name
// ("bing", "yandex") or a raw endpoint URL.
func NewSubmitter(fetcher *fetch.Fetcher, cfg config.IndexNowConfig, log *logrus.Logger) (*Submitter, error) {
	endpointURL, ok := endpoints[cfg.Endpoint]
	if !ok {
		if !strings.HasPrefix(cfg.Endpoint, "http://") && !strings.HasPrefix(cfg.Endpoint, "https://") {
			return nil, utils.WrapErrorf(utils.ErrUnsupportedEndpoint, "'%s'", cfg.Endpoint)
		}
		endpointURL = cfg.Endpoint
	}
	return &Submitter{
		fetcher:     fetcher,
		endpointURL: endpointURL,
		cfg:         cfg,
		log:         log.WithField("component", "indexnow"),
	}, nil
}

// SubmitAll submits urls for host in batches of cfg.BatchSize, pausing
// cfg.BatchDelay between batches. Per-batch rejections do not abort the run.
func (s *Submitter) SubmitAll(ctx context.Context, host string, urls []string) RunTotals {
	batchSize := s.cfg.BatchSize
	totals := RunTotals{TotalBatches: (len(urls) + batchSize - 1) / batchSize}

	for i := 0; i < len(urls); i += batchSize {
		end := i + batchSize
		if end > len(urls) {
			end = len(urls)
		}
		batch := urls[i:end]
		batchNum := i/batchSize + 1

		s.log.Infof("Submitting batch %d/%d (%d URLs)", batchNum, totals.TotalBatches, len(batch))
		result := s.SubmitBatch(ctx, host, batch)

		if result.Accepted {
			totals.SuccessfulBatches++
			totals.URLsSubmitted += len(batch)
			s.log.Infof("Successfully submitted %d URLs", len(batch))
		} else {
			s.log.WithField("status_code", result.StatusCode).
				Errorf("Submission rejected: %s", result.Detail)
		}

		if s.cfg.BatchDelay > 0 && end < len(urls) {
			select {
			case <-time.After(s.cfg.BatchDelay):
			case <-ctx.Done():
				s.log.Warnf("Submission cancelled: %v", ctx.Err())
				return totals
			}
		}
	}
	return totals
}

// SubmitBatch posts one batch and interprets the response status.
func (s *Submitter) SubmitBatch(ctx context.Context, host string, urls []string) BatchResult {
	body, err := json.Marshal(payload{
		Host:        host,
		Key:         s.cfg.APIKey,
		KeyLocation: s.cfg.KeyLocation,
		URLList:     urls,
	})
	if err != nil {
		return BatchResult{Detail: "encode payload: " + err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpointURL, bytes.NewReader(body))
	if err != nil {
		return BatchResult{Detail: "build request: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.fetcher.Fetch(req, ctx)
	if err != nil {
		return BatchResult{Detail: "request error: " + err.Error()}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	detail := strings.TrimSpace(string(respBody))
	if detail == "" {
		detail = rejectionReason(resp.StatusCode)
	}

	return BatchResult{
		StatusCode: resp.StatusCode,
		Accepted:   resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusAccepted,
		Detail:     detail,
	}
}

// rejectionReason maps the documented IndexNow rejection codes to text.
func rejectionReason(statusCode int) string {
	switch statusCode {
	case http.StatusOK, http.StatusAccepted:
		return "accepted"
	case http.StatusBadRequest:
		return "bad request (invalid format)"
	case http.StatusForbidden:
		return "forbidden (key not valid)"
	case http.StatusUnprocessableEntity:
		return "unprocessable entity (URLs do not belong to host or key mismatch)"
	case http.StatusTooManyRequests:
		return "too many requests"
	default:
		return http.StatusText(statusCode)
	}
}
