package deck_test

import (
	"fmt"
	"testing"

	"github.com/markis/flashdeck/internal/deck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill(t *testing.T, s *deck.Session, n int) {
	t.Helper()
	for i := range n {
		require.True(t, s.Append(deck.Card{Question: fmt.Sprintf("Q%d", i), Answer: "A"}))
	}
}

func TestAppendStopsAtDefaultCap(t *testing.T) {
	s := deck.NewSession(0, "")
	assert.Equal(t, deck.DefaultMaxCards, s.Cap())

	fill(t, s, 34)
	assert.False(t, s.Full())
	assert.Equal(t, 1, s.Remaining())

	assert.True(t, s.Append(deck.Card{Question: "last", Answer: "A"}))
	assert.Equal(t, 35, s.Len())
	assert.True(t, s.Full())

	for range 3 {
		assert.False(t, s.Append(deck.Card{Question: "over", Answer: "A"}))
	}
	assert.Equal(t, 35, s.Len())
	assert.Equal(t, "last", s.Cards()[34].Question)
}

func TestCardsReturnsCopy(t *testing.T) {
	s := deck.NewSession(5, "")
	fill(t, s, 2)

	cards := s.Cards()
	cards[0].Question = "changed"
	assert.Equal(t, "Q0", s.Cards()[0].Question)
}

func TestIndexClampedOnRead(t *testing.T) {
	s := deck.NewSession(5, "")
	_, ok := s.Current()
	assert.False(t, ok)
	assert.Equal(t, 0, s.Index())

	s.SetIndex(10)
	assert.Equal(t, 0, s.Index())

	fill(t, s, 3)
	s.SetIndex(10)
	assert.Equal(t, 2, s.Index())
	s.SetIndex(-4)
	assert.Equal(t, 0, s.Index())

	card, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "Q0", card.Question)
}

func TestNextPrev(t *testing.T) {
	s := deck.NewSession(5, "")
	assert.False(t, s.Next())
	assert.False(t, s.Prev())

	fill(t, s, 3)
	assert.False(t, s.Prev())
	assert.True(t, s.Next())
	assert.True(t, s.Next())
	assert.False(t, s.Next())
	assert.Equal(t, 2, s.Index())
	assert.True(t, s.Prev())
	assert.Equal(t, 1, s.Index())
}

func TestFromCardsDropsOverflowAndResetsContext(t *testing.T) {
	cards := make([]deck.Card, 40)
	s := deck.FromCards(35, cards)
	assert.Equal(t, 35, s.Len())
	assert.Zero(t, s.TurnCount())
}

func TestPersonaIsFirstTurn(t *testing.T) {
	s := deck.NewSession(35, "be a flashcard generator")
	turns := s.Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, deck.RoleRequester, turns[0].Role)
	assert.Equal(t, "be a flashcard generator", turns[0].Parts[0].Text)

	s.ResetContext()
	assert.Zero(t, s.TurnCount())
}

func TestTurnTxRollback(t *testing.T) {
	s := deck.NewSession(35, "persona")

	tx := s.PushTurn(deck.TextTurn(deck.RoleRequester, "more"))
	assert.Equal(t, 2, s.TurnCount())
	assert.True(t, tx.Rollback())
	assert.Equal(t, 1, s.TurnCount())
	assert.False(t, tx.Rollback())
	assert.Equal(t, 1, s.TurnCount())
}

func TestTurnTxRollbackOnlyWhenLast(t *testing.T) {
	s := deck.NewSession(35, "")

	tx := s.PushTurn(deck.TextTurn(deck.RoleRequester, "more"))
	s.PushTurn(deck.TextTurn(deck.RoleResponder, "reply"))
	assert.False(t, tx.Rollback())
	assert.Equal(t, 2, s.TurnCount())
}

func TestTurnTxCommit(t *testing.T) {
	s := deck.NewSession(35, "")
	tx := s.PushTurn(deck.TextTurn(deck.RoleRequester, "more"))
	tx.Commit()
	assert.False(t, tx.Rollback())
	assert.Equal(t, 1, s.TurnCount())
}

func TestPopLastTurn(t *testing.T) {
	s := deck.NewSession(35, "")
	s.PopLastTurn()
	s.PushTurn(deck.TextTurn(deck.RoleRequester, "a"))
	s.PushTurn(deck.TextTurn(deck.RoleResponder, "b"))
	s.PopLastTurn()
	turns := s.Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, "a", turns[0].Parts[0].Text)
}

func TestInFlightFlag(t *testing.T) {
	s := deck.NewSession(35, "")
	assert.True(t, s.TryBeginRequest())
	assert.True(t, s.Generating())
	assert.False(t, s.TryBeginRequest())
	s.EndRequest()
	assert.False(t, s.Generating())
	assert.True(t, s.TryBeginRequest())
}
