package deck

import (
	"sync"

	"google.golang.org/genai"
)

// DefaultMaxCards is the cap used when a session is created with a
// non-positive limit.
const DefaultMaxCards = 35

// Session groups the cards of one deck with the conversation that produced
// them. The ingestion controller is its only writer; the study viewer reads
// it from another goroutine, hence the lock.
type Session struct {
	mu       sync.RWMutex
	cards    []Card
	maxCards int
	index    int
	turns    []*genai.Content
	inFlight bool
}

// NewSession starts a session for a freshly selected document. When persona
// is non-empty it becomes the first turn of the conversation.
func NewSession(maxCards int, persona string) *Session {
	if maxCards <= 0 {
		maxCards = DefaultMaxCards
	}
	s := &Session{maxCards: maxCards}
	if persona != "" {
		s.turns = append(s.turns, TextTurn(RoleRequester, persona))
	}
	return s
}

// FromCards starts a session for a saved deck. The conversation is empty, and
// cards beyond the cap are dropped.
func FromCards(maxCards int, cards []Card) *Session {
	s := NewSession(maxCards, "")
	n := min(len(cards), s.maxCards)
	s.cards = append(make([]Card, 0, n), cards[:n]...)
	return s
}

// Append adds card unless the session is at its cap.
func (s *Session) Append(card Card) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.cards) >= s.maxCards {
		return false
	}
	s.cards = append(s.cards, card)
	return true
}

func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cards)
}

func (s *Session) Cap() int {
	return s.maxCards
}

// Full reports whether the session has reached its cap.
func (s *Session) Full() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cards) >= s.maxCards
}

// Remaining is the number of cards the session can still accept.
func (s *Session) Remaining() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxCards - len(s.cards)
}

// Cards returns a copy of the accepted cards in insertion order.
func (s *Session) Cards() []Card {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Card(nil), s.cards...)
}

// Index returns the viewed position clamped to [0, Len-1]; 0 when empty.
func (s *Session) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clampLocked()
}

// Current returns the viewed card, or false when the deck is empty.
func (s *Session) Current() (Card, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.cards) == 0 {
		return Card{}, false
	}
	return s.cards[s.clampLocked()], true
}

// SetIndex moves the viewed position; out-of-range values are clamped on read.
func (s *Session) SetIndex(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = i
	s.clampLocked()
}

// Next advances to the following card. It returns false at the last card.
func (s *Session) Next() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.clampLocked()
	if i >= len(s.cards)-1 {
		return false
	}
	s.index = i + 1
	return true
}

// Prev steps back to the previous card. It returns false at the first card.
func (s *Session) Prev() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.clampLocked()
	if i == 0 {
		return false
	}
	s.index = i - 1
	return true
}

func (s *Session) clampLocked() int {
	switch {
	case len(s.cards) == 0:
		s.index = 0
	case s.index < 0:
		s.index = 0
	case s.index > len(s.cards)-1:
		s.index = len(s.cards) - 1
	}
	return s.index
}

// TryBeginRequest marks a generation request as in flight. It returns false
// if one already is.
func (s *Session) TryBeginRequest() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight {
		return false
	}
	s.inFlight = true
	return true
}

// EndRequest clears the in-flight flag.
func (s *Session) EndRequest() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
}

// Generating reports whether a request is in flight.
func (s *Session) Generating() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlight
}
