package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/aptfolio/backend/domain"
)

const bucketRuns = "runs"

// Store keeps escalation run reports in a local BoltDB file so operators can
// audit past runs even when the primary store is unreachable.
type Store struct {
	db *bolt.DB
}

// Open initializes the BoltDB file and ensures the runs bucket exists.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketRuns))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Append stores a run report under a chronologically sortable key.
func (s *Store) Append(_ context.Context, report domain.RunReport) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("%s/%020d/%s",
		report.RunDate.Format("2006-01-02"),
		report.StartedAt.UnixNano(),
		report.RunID,
	)

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketRuns)).Put([]byte(key), payload)
	})
}

// Recent returns up to limit reports, newest first.
func (s *Store) Recent(_ context.Context, limit int) ([]domain.RunReport, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if limit <= 0 {
		limit = 20
	}

	var reports []domain.RunReport
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketRuns)).Cursor()
		for k, v := c.Last(); k != nil && len(reports) < limit; k, v = c.Prev() {
			var report domain.RunReport
			if err := json.Unmarshal(v, &report); err != nil {
				continue
			}
			reports = append(reports, report)
		}
		return nil
	})
	return reports, err
}

// Prune removes reports whose run date is older than the cutoff.
func (s *Store) Prune(olderThan time.Time) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	cutoff := olderThan.Format("2006-01-02")
	return s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketRuns)).Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			if len(k) < len(cutoff) || string(k[:len(cutoff)]) >= cutoff {
				break
			}
			if err := c.Delete(); err != nil {
				return err
			}
		}
		return nil
	})
}

// Size returns the number of journaled reports.
func (s *Store) Size() (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket([]byte(bucketRuns)).Stats().KeyN
		return nil
	})
	return count, err
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
