package main

import (
	"sync"

	"github.com/markis/flashdeck/internal/deck"
	"github.com/markis/flashdeck/internal/history"
	"go.uber.org/zap"
)

type historyStore interface {
	Save(filename string, cards []deck.Card) (history.Entry, error)
	Update(id int64, cards []deck.Card) error
}

// deckSaver keeps one history entry in step with a growing deck. The first
// non-empty sync creates the entry; later ones rewrite its cards.
type deckSaver struct {
	store    historyStore
	filename string
	log      *zap.Logger

	mu sync.Mutex
	id int64
}

func newDeckSaver(store historyStore, filename string, log *zap.Logger) *deckSaver {
	return &deckSaver{store: store, filename: filename, log: log}
}

func (s *deckSaver) Sync(cards []deck.Card) {
	if len(cards) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.id == 0 {
		entry, err := s.store.Save(s.filename, cards)
		if err != nil {
			s.log.Warn("saving deck to history failed", zap.String("file", s.filename), zap.Error(err))
			return
		}
		s.id = entry.ID
		s.log.Debug("saved deck", zap.Int64("id", s.id), zap.Int("cards", len(cards)))
		return
	}

	if err := s.store.Update(s.id, cards); err != nil {
		s.log.Warn("updating history entry failed", zap.Int64("id", s.id), zap.Error(err))
	}
}

// ID is the history entry this saver writes to; zero before the first save.
func (s *deckSaver) ID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}
