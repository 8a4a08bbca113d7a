package ledger

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	bolt "github.com/boltdb/bolt"

	"github.com/smirnov-d/railbooking/internal/domain"
)

const (
	ledgerBucket  = "ledger"
	archiveBucket = "archive"
)

// BoltStore is the default embedded backend. The ledger bucket uses
// monotonic sequence keys so iteration order is insertion order, which the
// last-matching-row semantics depend on. The archive bucket holds one
// nested bucket per partition date key.
type BoltStore struct {
	db *bolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(ledgerBucket)); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists([]byte(archiveBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) Append(ctx context.Context, record domain.BookingRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return appendRecord(tx.Bucket([]byte(ledgerBucket)), record)
	})
}

func (s *BoltStore) All(ctx context.Context) ([]domain.BookingRecord, error) {
	var records []domain.BookingRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		records, err = readBucket(tx.Bucket([]byte(ledgerBucket)))
		return err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *BoltStore) UpdateStatus(ctx context.Context, trainID string, status domain.BookingStatus) (*domain.BookingRecord, error) {
	var last *domain.BookingRecord
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(ledgerBucket))
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var rec domain.BookingRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decode ledger row: %w", err)
			}
			if rec.TrainID != trainID {
				continue
			}
			rec.Status = status
			data, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			if err := b.Put(k, data); err != nil {
				return err
			}
			last = &rec
		}
		if last == nil {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return last, nil
}

func (s *BoltStore) ReplaceAll(ctx context.Context, records []domain.BookingRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(ledgerBucket)); err != nil {
			return err
		}
		b, err := tx.CreateBucket([]byte(ledgerBucket))
		if err != nil {
			return err
		}
		for _, rec := range records {
			if err := appendRecord(b, rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStore) AppendToPartition(ctx context.Context, dateKey string, records []domain.BookingRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		part, err := tx.Bucket([]byte(archiveBucket)).CreateBucketIfNotExists([]byte(dateKey))
		if err != nil {
			return err
		}
		for _, rec := range records {
			if err := appendRecord(part, rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStore) ReadPartition(ctx context.Context, dateKey string) ([]domain.BookingRecord, error) {
	var records []domain.BookingRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		part := tx.Bucket([]byte(archiveBucket)).Bucket([]byte(dateKey))
		if part == nil {
			return ErrNotFound
		}
		var err error
		records, err = readBucket(part)
		return err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *BoltStore) ListPartitionDates(ctx context.Context) ([]string, error) {
	var dates []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(archiveBucket)).ForEach(func(k, v []byte) error {
			if v == nil { // nested buckets only
				dates = append(dates, string(k))
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return dates, nil
}

func (s *BoltStore) ReadAll(ctx context.Context) ([]domain.BookingRecord, error) {
	var records []domain.BookingRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		archive := tx.Bucket([]byte(archiveBucket))
		return archive.ForEach(func(k, v []byte) error {
			if v != nil {
				return nil
			}
			part, err := readBucket(archive.Bucket(k))
			if err != nil {
				return err
			}
			records = append(records, part...)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func appendRecord(b *bolt.Bucket, record domain.BookingRecord) error {
	seq, err := b.NextSequence()
	if err != nil {
		return err
	}
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)

	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return b.Put(key, data)
}

func readBucket(b *bolt.Bucket) ([]domain.BookingRecord, error) {
	var records []domain.BookingRecord
	err := b.ForEach(func(k, v []byte) error {
		var rec domain.BookingRecord
		if err := json.Unmarshal(v, &rec); err != nil {
			return fmt.Errorf("decode record: %w", err)
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

var _ Store = (*BoltStore)(nil)
