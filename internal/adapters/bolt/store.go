// Package bolt keeps the balance in a bbolt database file.
package bolt

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/pkg/errors"
	bbolt "go.etcd.io/bbolt"

	"github.com/bft-labs/walletd/internal/domain"
)

var (
	bucketName = []byte("wallet")
	balanceKey = []byte("balance")
)

// openTimeout bounds how long Open waits for another process's file lock.
const openTimeout = time.Second

// Store implements ports.BalanceStore on top of a single bbolt bucket.
type Store struct {
	db *bbolt.DB
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, errors.Wrapf(err, "open bolt store %s", path)
	}
	return &Store{db: db}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.db.Path()
}

// Init stores start unless a balance already exists.
func (s *Store) Init(ctx context.Context, start uint16) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return err
		}
		if b.Get(balanceKey) != nil {
			return nil
		}
		return b.Put(balanceKey, encodeBalance(start))
	})
	return wrap(err, "init balance")
}

// Load reads the balance.
func (s *Store) Load(ctx context.Context) (uint16, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var balance uint16
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return domain.ErrNoBalance
		}
		v := b.Get(balanceKey)
		if v == nil {
			return domain.ErrNoBalance
		}
		if len(v) != 2 {
			return errors.Wrapf(domain.ErrCorruptBalance, "stored value is %d bytes", len(v))
		}
		balance = binary.BigEndian.Uint16(v)
		return nil
	})
	return balance, wrap(err, "load balance")
}

// Save writes the balance in its own transaction.
func (s *Store) Save(ctx context.Context, balance uint16) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return err
		}
		return b.Put(balanceKey, encodeBalance(balance))
	})
	return wrap(err, "save balance")
}

// Close closes the database.
func (s *Store) Close() error {
	return wrap(s.db.Close(), "close bolt store")
}

func encodeBalance(v uint16) []byte {
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, v)
	return buf
}

func wrap(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, bbolt.ErrDatabaseNotOpen) {
		return domain.ErrStoreClosed
	}
	return errors.Wrap(err, op)
}
