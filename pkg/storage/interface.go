package storage

import (
	"seo-sitemap/pkg/models"
)

// AuditStore persists per-URL audit outcomes across runs. Used by watch mode
// to detect regressions between consecutive audits.
type AuditStore interface {
	// GetAudit retrieves the stored outcome for a URL.
	// Returns AuditStatusNotFound when the URL has never been audited.
	GetAudit(pageURL string) (status models.AuditStatus, entry *models.AuditDBEntry, err error)

	// PutAudit stores the outcome for a URL, replacing any previous entry
	PutAudit(pageURL string, entry *models.AuditDBEntry) error

	// AuditedCount returns the number of URLs with a stored outcome
	AuditedCount() (int, error)

	// Close cleanly closes the database
	Close() error
}
