package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const (
	// ledgerFile is the database file name under the ledger directory
	ledgerFile = "ledger.db"

	// bucketName is the BoltDB bucket holding invocation records
	bucketName = "builds"
)

// Ledger stores invocation records keyed by build signature
type Ledger struct {
	db   *bbolt.DB
	root string
}

// DefaultLedgerDir returns the per-user directory for the ledger
// database, outside any derived data root.
func DefaultLedgerDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user cache directory: %w", err)
	}

	return filepath.Join(cacheDir, "swiftwrap"), nil
}

// OpenLedger opens (creating if needed) the ledger under dir
func OpenLedger(dir string) (*Ledger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}

	dbPath := filepath.Join(dir, ledgerFile)
	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create ledger bucket: %w", err)
	}

	return &Ledger{db: db, root: dir}, nil
}

// Close closes the ledger database
func (l *Ledger) Close() error {
	if l.db != nil {
		return l.db.Close()
	}

	return nil
}

// Get retrieves the record for a build signature
// Returns nil if no invocation ran under that signature
func (l *Ledger) Get(buildSignature string) (*Entry, error) {
	var entry Entry

	err := l.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))

		data := b.Get([]byte(buildSignature))
		if data == nil {
			return nil
		}

		return json.Unmarshal(data, &entry)
	})
	if err != nil {
		return nil, err
	}

	if entry.Signature == "" {
		return nil, nil
	}

	return &entry, nil
}

// Record stores the outcome of one invocation
func (l *Ledger) Record(entry Entry) error {
	if entry.Signature == "" {
		return fmt.Errorf("cannot record entry without a signature")
	}

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	err := l.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))

		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}

		return b.Put([]byte(entry.Signature), data)
	})
	if err != nil {
		return fmt.Errorf("failed to record build: %w", err)
	}

	return nil
}

// Stats returns the number of recorded invocations and how many of
// them succeeded
func (l *Ledger) Stats() (int, int, error) {
	var count, succeeded int

	err := l.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))

		return b.ForEach(func(_, data []byte) error {
			var entry Entry
			if err := json.Unmarshal(data, &entry); err != nil {
				return err
			}

			count++
			if entry.Success {
				succeeded++
			}

			return nil
		})
	})
	if err != nil {
		return 0, 0, err
	}

	return count, succeeded, nil
}

// Clear removes all recorded invocations
func (l *Ledger) Clear() error {
	return l.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketName)); err != nil {
			return err
		}

		_, err := tx.CreateBucket([]byte(bucketName))
		return err
	})
}
