package store

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/heysubinoy/localkv/pkg/kv"
	bolt "go.etcd.io/bbolt"
)

const defaultBoltBucket = "entries"

// BoltStore is a kv.Backend persisted in a single bbolt bucket.
type BoltStore struct {
	db     *bolt.DB
	bucket []byte
}

var _ kv.Backend = (*BoltStore)(nil)

// OpenBolt opens or creates a bbolt database at path.
func OpenBolt(path string) (*BoltStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	db, err := bolt.Open(filepath.Clean(path), 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	s := &BoltStore{db: db, bucket: []byte(defaultBoltBucket)}
	if err := s.ensureBucket(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *BoltStore) ensureBucket() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(s.bucket); err != nil {
			return fmt.Errorf("create %s bucket: %w", s.bucket, err)
		}
		return nil
	})
}

// Get reads the raw value for key.
func (s *BoltStore) Get(key string) (string, bool, error) {
	var (
		out   string
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return fmt.Errorf("%s bucket is missing", s.bucket)
		}
		v := b.Get([]byte(key))
		if v == nil {
			return nil
		}
		// v is only valid for the life of the transaction.
		out = string(v)
		found = true
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return out, found, nil
}

// Set writes value under key.
func (s *BoltStore) Set(key, value string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return fmt.Errorf("%s bucket is missing", s.bucket)
		}
		return b.Put([]byte(key), []byte(value))
	})
}

// Delete removes key. Missing keys are ignored.
func (s *BoltStore) Delete(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return fmt.Errorf("%s bucket is missing", s.bucket)
		}
		return b.Delete([]byte(key))
	})
}

// Clear drops and recreates the bucket in one transaction.
func (s *BoltStore) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(s.bucket); err != nil && err != bolt.ErrBucketNotFound {
			return fmt.Errorf("drop %s bucket: %w", s.bucket, err)
		}
		_, err := tx.CreateBucket(s.bucket)
		return err
	})
}

// Len returns the number of keys in the bucket.
func (s *BoltStore) Len() (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return fmt.Errorf("%s bucket is missing", s.bucket)
		}
		n = b.Stats().KeyN
		return nil
	})
	return n, err
}

// Keys returns all keys in byte order.
func (s *BoltStore) Keys() ([]string, error) {
	var keys []string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return fmt.Errorf("%s bucket is missing", s.bucket)
		}
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			keys = append(keys, string(k))
		}
		return nil
	})
	return keys, err
}
