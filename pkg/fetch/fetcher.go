package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"seo-sitemap/pkg/utils"
)

// Fetcher performs single-attempt HTTP requests using a shared http.Client.
// Audits must report the first observed outcome for every URL, so there is
// deliberately no retry loop: a URL that fails once produces exactly one
// terminal record for the run.
type Fetcher struct {
	client *http.Client
	log    *logrus.Logger
}

// NewFetcher creates a new Fetcher instance
func NewFetcher(client *http.Client, log *logrus.Logger) *Fetcher {
	return &Fetcher{
		client: client,
		log:    log,
	}
}

// Fetch executes the request with the provided context attached. An error is
// returned only for transport-level failures (DNS, TCP, TLS, timeout); any
// HTTP response, whatever its status code, is handed back to the caller.
// Caller must close the response body.
func (f *Fetcher) Fetch(req *http.Request, ctx context.Context) (*http.Response, error) {
	resp, err := f.client.Do(req.WithContext(ctx))
	if err != nil {
		f.log.WithField("url", req.URL.String()).Debugf("Transport error: %v", err)
		return nil, err
	}
	return resp, nil
}

// FetchOK executes the request and additionally treats any non-2xx status as
// an error, wrapping it with the matching HTTP sentinel. The body is drained
// and closed on the error path; on success the caller must close it.
func (f *Fetcher) FetchOK(req *http.Request, ctx context.Context) (*http.Response, error) {
	resp, err := f.Fetch(req, ctx)
	if err != nil {
		return nil, err
	}

	statusCode := resp.StatusCode
	if statusCode >= 200 && statusCode < 300 {
		return resp, nil
	}

	f.log.WithFields(logrus.Fields{
		"url":         req.URL.String(),
		"status_code": statusCode,
	}).Debug("Non-2xx response")

	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	switch {
	case statusCode >= 500:
		return nil, fmt.Errorf("%w: status %d %s", utils.ErrServerHTTPError, statusCode, resp.Status)
	case statusCode >= 400:
		return nil, fmt.Errorf("%w: status %d %s", utils.ErrClientHTTPError, statusCode, resp.Status)
	default:
		return nil, fmt.Errorf("%w: status %d %s", utils.ErrOtherHTTPError, statusCode, resp.Status)
	}
}
