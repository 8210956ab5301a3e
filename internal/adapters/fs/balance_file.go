package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/bft-labs/walletd/internal/domain"
)

const balanceFileName = "balance.json"

// balanceDocument is the on-disk layout. Balance is decoded as int so that an
// out-of-range value is detected instead of silently truncated.
type balanceDocument struct {
	Balance   int       `json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BalanceFileStore implements ports.BalanceStore using a JSON file.
type BalanceFileStore struct {
	dir string

	mu     sync.Mutex
	closed bool
}

// NewBalanceFileStore creates a store keeping balance.json in dir.
func NewBalanceFileStore(dir string) *BalanceFileStore {
	return &BalanceFileStore{dir: dir}
}

// Init writes start if no balance file exists yet.
func (s *BalanceFileStore) Init(ctx context.Context, start uint16) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if _, err := os.Stat(s.Path()); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return errors.Wrap(err, "stat balance file")
	}
	return s.write(start)
}

// Load reads the balance from disk.
func (s *BalanceFileStore) Load(ctx context.Context) (uint16, error) {
	if err := s.check(ctx); err != nil {
		return 0, err
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return 0, domain.ErrNoBalance
		}
		return 0, errors.Wrap(err, "read balance file")
	}

	var doc balanceDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, errors.Wrap(domain.ErrCorruptBalance, err.Error())
	}
	if doc.Balance < 0 || doc.Balance > domain.MaxBalance {
		return 0, errors.Wrapf(domain.ErrCorruptBalance, "balance %d out of range", doc.Balance)
	}
	return uint16(doc.Balance), nil
}

// Save persists the balance atomically.
func (s *BalanceFileStore) Save(ctx context.Context, balance uint16) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	return s.write(balance)
}

// Close marks the store closed. Later calls fail with domain.ErrStoreClosed.
func (s *BalanceFileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Path returns the full path to the balance file.
func (s *BalanceFileStore) Path() string {
	return filepath.Join(s.dir, balanceFileName)
}

func (s *BalanceFileStore) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrStoreClosed
	}
	return nil
}

// write uses temp file + rename so a crash never leaves a torn balance.
func (s *BalanceFileStore) write(balance uint16) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return errors.Wrap(err, "create store dir")
	}

	data, err := json.MarshalIndent(balanceDocument{
		Balance:   int(balance),
		UpdatedAt: time.Now().UTC(),
	}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode balance")
	}

	path := s.Path()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "write balance file")
	}
	return errors.Wrap(os.Rename(tmp, path), "commit balance file")
}
