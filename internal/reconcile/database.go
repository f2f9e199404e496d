package reconcile

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.etcd.io/bbolt"

	"github.com/davidhsv/lunchable-splitlunch/internal/expense"
	"github.com/shopspring/decimal"
)

const (
	expenseBucketName = "expenses"
	stateBucketName   = "state"
	cursorKey         = "cursor"
)

// ErrRecordNotFound is returned when no record exists for a Splitwise id.
var ErrRecordNotFound = errors.New("record not found")

// Record is a reconciled expense together with what was written to the
// ledger for it.
type Record struct {
	Expense      *expense.Expense `json:"expense"`
	Personal     decimal.Decimal  `json:"personal_amount"`
	Reimbursable decimal.Decimal  `json:"reimbursable_amount"`
	LedgerIDs    []int64          `json:"ledger_ids"`
	SyncedAt     time.Time        `json:"synced_at"`
}

// DB defines the interface for sync-state persistence
type DB interface {
	// SaveRecord saves a reconciled expense record
	SaveRecord(record *Record) error

	// GetRecord retrieves a record by Splitwise expense id
	GetRecord(id int64) (*Record, error)

	// ListRecords returns all reconciled records
	ListRecords() ([]*Record, error)

	// GetCursor returns the updated-after watermark of the last sync pass,
	// zero if no pass has completed
	GetCursor() (time.Time, error)

	// SetCursor stores the updated-after watermark for the next sync pass
	SetCursor(t time.Time) error

	// Close closes the database connection
	Close() error
}

// BoltDB implements the DB interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB creates a new BoltDB instance
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	// Create buckets if they don't exist
	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(expenseBucketName)); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(stateBucketName)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// SaveRecord saves a reconciled expense record
func (b *BoltDB) SaveRecord(record *Record) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(expenseBucketName))
		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshaling record: %w", err)
		}
		return bucket.Put(recordKey(record.Expense.ID), data)
	})
}

// GetRecord retrieves a record by Splitwise expense id
func (b *BoltDB) GetRecord(id int64) (*Record, error) {
	var record *Record
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(expenseBucketName))
		data := bucket.Get(recordKey(id))
		if data == nil {
			return fmt.Errorf("expense %d: %w", id, ErrRecordNotFound)
		}
		return json.Unmarshal(data, &record)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ListRecords returns all reconciled records
func (b *BoltDB) ListRecords() ([]*Record, error) {
	records := make([]*Record, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(expenseBucketName))
		return bucket.ForEach(func(k, v []byte) error {
			var record Record
			if err := json.Unmarshal(v, &record); err != nil {
				return fmt.Errorf("unmarshaling record: %w", err)
			}
			records = append(records, &record)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// GetCursor returns the updated-after watermark of the last sync pass
func (b *BoltDB) GetCursor() (time.Time, error) {
	var cursor time.Time
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(stateBucketName))
		data := bucket.Get([]byte(cursorKey))
		if data == nil {
			return nil
		}
		t, err := time.Parse(time.RFC3339Nano, string(data))
		if err != nil {
			return fmt.Errorf("parsing cursor: %w", err)
		}
		cursor = t
		return nil
	})
	if err != nil {
		return time.Time{}, err
	}
	return cursor, nil
}

// SetCursor stores the updated-after watermark for the next sync pass
func (b *BoltDB) SetCursor(t time.Time) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(stateBucketName))
		return bucket.Put([]byte(cursorKey), []byte(t.Format(time.RFC3339Nano)))
	})
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}

func recordKey(id int64) []byte {
	return []byte(strconv.FormatInt(id, 10))
}
