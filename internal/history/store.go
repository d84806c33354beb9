// Package history keeps the most recent decks on disk so they can be studied
// again without calling the generative service.
//
// The whole history is a single JSON list stored under one key. Content that
// does not decode as a list is treated as an empty history.
package history

import (
	"encoding/json"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/markis/flashdeck/internal/deck"
	"github.com/markis/flashdeck/internal/errs"
	"go.uber.org/zap"
)

// Key is the fixed key the serialized history lives under.
const Key = "flashcardHistory"

// DefaultLimit is how many decks are kept.
const DefaultLimit = 10

// Entry is one saved deck.
type Entry struct {
	ID        int64       `json:"id"`
	Filename  string      `json:"filename"`
	Date      string      `json:"date"`
	Time      string      `json:"time"`
	CardCount int         `json:"cardCount"`
	Cards     []deck.Card `json:"cards"`
}

// Config holds configuration for a history store.
type Config struct {
	// Path is the database directory. Ignored when InMemory is true.
	Path string
	// InMemory keeps everything in RAM; used by tests.
	InMemory bool
	// Limit caps the number of saved decks. Defaults to DefaultLimit.
	Limit int
	// Logger receives diagnostics. Nil disables them.
	Logger *zap.Logger
}

// Store is a badger-backed deck history.
type Store struct {
	db    *badger.DB
	limit int
	log   *zap.Logger
	now   func() time.Time

	// mu serialises read-modify-write cycles on the single key.
	mu sync.Mutex
}

// badgerLogger adapts zap to badger's Logger interface.
type badgerLogger struct {
	log *zap.SugaredLogger
}

func (l *badgerLogger) Errorf(format string, args ...interface{})   { l.log.Errorf(format, args...) }
func (l *badgerLogger) Warningf(format string, args ...interface{}) { l.log.Warnf(format, args...) }
func (l *badgerLogger) Infof(format string, args ...interface{})    { l.log.Debugf(format, args...) }
func (l *badgerLogger) Debugf(format string, args ...interface{})   { l.log.Debugf(format, args...) }

// Open opens (creating if needed) the history database.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errs.New(errs.CodeHistoryStore, "history: path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, errs.Wrapf(err, errs.CodeHistoryStore, "create history directory %s", cfg.Path)
		}
		opts = badger.DefaultOptions(cfg.Path).WithSyncWrites(true)
	}
	opts = opts.WithNumVersionsToKeep(1)

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
		opts = opts.WithLogger(nil)
	} else {
		opts = opts.WithLogger(&badgerLogger{log: log.Named("badger").Sugar()})
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeHistoryStore, "open history database")
	}

	limit := cfg.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	return &Store{db: db, limit: limit, log: log, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// List returns saved decks, newest first. A corrupt history is discarded and
// reported as empty.
func (s *Store) List() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Get returns the deck saved under id.
func (s *Store) Get(id int64) (Entry, bool, error) {
	entries, err := s.List()
	if err != nil {
		return Entry{}, false, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, true, nil
		}
	}
	return Entry{}, false, nil
}

// Save records a new deck at the front of the history and drops the oldest
// decks beyond the limit. Nothing is saved without a filename and cards.
func (s *Store) Save(filename string, cards []deck.Card) (Entry, error) {
	if filename == "" || len(cards) == 0 {
		return Entry{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return Entry{}, err
	}

	now := s.now()
	entry := Entry{
		ID:        now.UnixMilli(),
		Filename:  filename,
		Date:      now.Format("2006-01-02"),
		Time:      now.Format("15:04:05"),
		CardCount: len(cards),
		Cards:     append([]deck.Card(nil), cards...),
	}
	for _, e := range entries {
		if e.ID >= entry.ID {
			entry.ID = e.ID + 1
		}
	}

	entries = append([]Entry{entry}, entries...)
	if len(entries) > s.limit {
		entries = entries[:s.limit]
	}

	if err := s.store(entries); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// Update replaces the cards of the deck saved under id. Unknown ids are
// ignored.
func (s *Store) Update(id int64, cards []deck.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}

	for i := range entries {
		if entries[i].ID == id {
			entries[i].Cards = append([]deck.Card(nil), cards...)
			entries[i].CardCount = len(cards)
			return s.store(entries)
		}
	}
	return nil
}

func (s *Store) load() ([]Entry, error) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(Key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeHistoryStore, "read history")
	}

	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil || entries == nil {
		s.log.Warn("history is not a list, resetting", zap.Error(err))
		if err := s.reset(); err != nil {
			return nil, err
		}
		return []Entry{}, nil
	}
	return entries, nil
}

func (s *Store) store(entries []Entry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return errs.Wrap(err, errs.CodeHistoryStore, "encode history")
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(Key), data)
	})
	if err != nil {
		return errs.Wrap(err, errs.CodeHistoryStore, "write history")
	}
	return nil
}

func (s *Store) reset() error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(Key))
	})
	if err != nil {
		return errs.Wrap(err, errs.CodeHistoryStore, "reset history")
	}
	return nil
}
