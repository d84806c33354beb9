package history

import (
	"time"

	"github.com/dgraph-io/badger/v4"
)

// SetRaw overwrites the stored blob verbatim.
func (s *Store) SetRaw(data []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(Key), data)
	})
}

// SetClock replaces the time source used for new entries.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}
