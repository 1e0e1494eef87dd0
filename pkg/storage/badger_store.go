package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"seo-sitemap/pkg/log"
	"seo-sitemap/pkg/models"
	"seo-sitemap/pkg/utils"
)

const (
	auditKeyPrefix = "audit:"   // Prefix for URL keys in DB
	auditDBDir     = "audit_db" // Subdirectory name within stateDir for Badger files
)

// BadgerStore implements AuditStore on BadgerDB. One database per audited
// host, kept under stateDir.
type BadgerStore struct {
	db  *badger.DB
	log *logrus.Entry
}

// NewBadgerStore opens (or creates) the audit history database for siteHost
func NewBadgerStore(stateDir, siteHost string, logger *logrus.Entry) (*BadgerStore, error) {
	dbPath := filepath.Join(stateDir, utils.SanitizeFilename(siteHost)+"_"+auditDBDir)
	logger.Infof("Opening audit history database at: %s", dbPath)

	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("cannot create state directory %s: %w", dbPath, err)
	}

	badgerLogger := log.NewBadgerLogrusAdapter(logger.WithField("component", "badgerdb"))
	opts := badger.DefaultOptions(dbPath).
		WithLogger(badgerLogger).
		WithNumVersionsToKeep(1) // Only the latest outcome matters

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database at %s: %w", dbPath, err)
	}

	return &BadgerStore{db: db, log: logger}, nil
}

func auditKey(pageURL string) []byte {
	return []byte(auditKeyPrefix + pageURL)
}

// GetAudit retrieves the stored outcome for a URL
func (s *BadgerStore) GetAudit(pageURL string) (models.AuditStatus, *models.AuditDBEntry, error) {
	var entry models.AuditDBEntry

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(auditKey(pageURL))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return models.AuditStatusNotFound, nil, nil
	}
	if err != nil {
		s.log.Errorf("Failed to read audit entry for '%s': %v", pageURL, err)
		return models.AuditStatusDBError, nil, utils.WrapErrorf(utils.ErrDatabase, "get audit for '%s'", pageURL)
	}
	return entry.Status, &entry, nil
}

// PutAudit stores the outcome for a URL, replacing any previous entry
func (s *BadgerStore) PutAudit(pageURL string, entry *models.AuditDBEntry) error {
	val, err := json.Marshal(entry)
	if err != nil {
		return utils.WrapErrorf(utils.ErrDatabase, "marshal audit entry for '%s': %v", pageURL, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(auditKey(pageURL), val)
	})
	if err != nil {
		return utils.WrapErrorf(utils.ErrDatabase, "store audit entry for '%s': %v", pageURL, err)
	}
	return nil
}

// AuditedCount returns the number of URLs with a stored outcome
func (s *BadgerStore) AuditedCount() (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(auditKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, utils.WrapErrorf(utils.ErrDatabase, "count audit entries: %v", err)
	}
	return count, nil
}

// Close cleanly closes the database
func (s *BadgerStore) Close() error {
	s.log.Debug("Closing audit history database...")
	return s.db.Close()
}
