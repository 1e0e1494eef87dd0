package watch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"seo-sitemap/pkg/models"
	"seo-sitemap/pkg/storage"
)

// AuditFunc runs one full audit pass and returns its record set.
type AuditFunc func(ctx context.Context) ([]*models.URLAnalysis, error)

// PassStats summarizes the outcome diff of one watch pass
type PassStats struct {
	RunID       string
	Audited     int
	Regressions int // was pass/warn, now fail
	Recoveries  int // was fail, now pass/warn
	NewURLs     int // first time audited
}

// Watcher re-runs the audit on a fixed interval and diffs each pass against
// the stored outcome of the previous one, logging URLs that regressed.
type Watcher struct {
	interval time.Duration
	store    storage.AuditStore
	audit    AuditFunc
	log      *logrus.Entry

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher creates a watch loop over audit, persisting outcomes in store
func NewWatcher(interval time.Duration, store storage.AuditStore, audit AuditFunc, log *logrus.Logger) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		interval: interval,
		store:    store,
		audit:    audit,
		log:      log.WithField("component", "watcher"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Run blocks, auditing immediately and then once per interval, until Stop is
// called or the initial audit fails.
func (w *Watcher) Run() error {
	w.log.Infof("Starting watch mode with interval %v", w.interval)

	if err := w.runPass(); err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			w.log.Info("Watch loop shutting down...")
			w.wg.Wait()
			return nil
		case <-ticker.C:
			if err := w.runPass(); err != nil {
				// Later passes tolerate failures (e.g. sitemap host briefly
				// unreachable); the next tick retries.
				w.log.Errorf("Audit pass failed: %v", err)
			}
		}
	}
}

// Stop stops the watch loop
func (w *Watcher) Stop() {
	w.log.Info("Stopping watch loop...")
	w.cancel()
}

// runPass executes one audit and records/diffs its outcomes
func (w *Watcher) runPass() error {
	w.wg.Add(1)
	defer w.wg.Done()

	records, err := w.audit(w.ctx)
	if err != nil {
		return err
	}

	stats := w.recordAndDiff(records)
	w.log.WithFields(logrus.Fields{
		"run_id":      stats.RunID,
		"audited":     stats.Audited,
		"regressions": stats.Regressions,
		"recoveries":  stats.Recoveries,
		"new_urls":    stats.NewURLs,
	}).Info("Watch pass complete")
	return nil
}

// recordAndDiff stores each record's outcome and compares it to the previous
// stored outcome for the same URL.
func (w *Watcher) recordAndDiff(records []*models.URLAnalysis) PassStats {
	stats := PassStats{RunID: uuid.NewString(), Audited: len(records)}

	for _, record := range records {
		prevStatus, _, err := w.store.GetAudit(record.URL)
		if err != nil {
			w.log.Warnf("Could not read previous outcome for '%s': %v", record.URL, err)
		}
		newStatus := record.Outcome()

		switch {
		case prevStatus == models.AuditStatusNotFound || prevStatus == models.AuditStatusUnset:
			stats.NewURLs++
		case prevStatus != models.AuditStatusFail && newStatus == models.AuditStatusFail:
			stats.Regressions++
			w.log.WithFields(logrus.Fields{
				"url":      record.URL,
				"was":      prevStatus,
				"now":      newStatus,
				"errors":   record.Errors,
				"warnings": record.Warnings,
			}).Warn("URL regressed since last audit")
		case prevStatus == models.AuditStatusFail && newStatus != models.AuditStatusFail:
			stats.Recoveries++
			w.log.WithFields(logrus.Fields{"url": record.URL, "now": newStatus}).Info("URL recovered since last audit")
		}

		entry := &models.AuditDBEntry{
			Status:      newStatus,
			StatusCode:  record.StatusCode,
			Errors:      record.Errors,
			Warnings:    record.Warnings,
			RunID:       stats.RunID,
			LastChecked: time.Now(),
		}
		if err := w.store.PutAudit(record.URL, entry); err != nil {
			w.log.Errorf("Could not store outcome for '%s': %v", record.URL, err)
		}
	}
	return stats
}
