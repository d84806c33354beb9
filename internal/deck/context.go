package deck

import "google.golang.org/genai"

// Conversation roles as the generative service names them.
const (
	RoleRequester = "user"
	RoleResponder = "model"
)

// TextTurn builds a conversation turn holding a single text part.
func TextTurn(role, text string) *genai.Content {
	return &genai.Content{
		Role:  role,
		Parts: []*genai.Part{{Text: text}},
	}
}

// Turns returns a copy of the conversation in call order.
func (s *Session) Turns() []*genai.Content {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*genai.Content(nil), s.turns...)
}

func (s *Session) TurnCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}

// ResetContext forgets the whole conversation, persona included.
func (s *Session) ResetContext() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
}

// PushTurn appends turn to the conversation and returns a handle that can
// undo the append if the call it belongs to never reaches the service.
func (s *Session) PushTurn(turn *genai.Content) *TurnTx {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, turn)
	return &TurnTx{session: s, turn: turn}
}

// PopLastTurn removes the most recent turn, if any.
func (s *Session) PopLastTurn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.popLocked(nil)
}

// popLocked drops the last turn. A non-nil want must be that turn.
func (s *Session) popLocked(want *genai.Content) bool {
	n := len(s.turns)
	if n == 0 || (want != nil && s.turns[n-1] != want) {
		return false
	}
	s.turns[n-1] = nil
	s.turns = s.turns[:n-1]
	return true
}

// TurnTx is an optimistically appended turn.
type TurnTx struct {
	session *Session
	turn    *genai.Content
	done    bool
}

// Rollback removes the turn if it is still the last one. It reports whether
// anything was removed. Calling it after Commit or a prior Rollback is a no-op.
func (tx *TurnTx) Rollback() bool {
	if tx.done {
		return false
	}
	tx.done = true

	s := tx.session
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.popLocked(tx.turn)
}

// Commit keeps the turn; later Rollback calls do nothing.
func (tx *TurnTx) Commit() {
	tx.done = true
}
