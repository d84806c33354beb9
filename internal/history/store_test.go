package history_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/markis/flashdeck/internal/deck"
	"github.com/markis/flashdeck/internal/errs"
	"github.com/markis/flashdeck/internal/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	s, err := history.Open(history.Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func cards(n int) []deck.Card {
	out := make([]deck.Card, n)
	for i := range out {
		out[i] = deck.Card{Question: fmt.Sprintf("Q%d", i), Answer: fmt.Sprintf("A%d", i)}
	}
	return out
}

func TestListEmpty(t *testing.T) {
	entries, err := openStore(t).List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSaveAndGet(t *testing.T) {
	s := openStore(t)
	at := time.Date(2026, 3, 14, 15, 9, 26, 0, time.Local)
	s.SetClock(func() time.Time { return at })

	entry, err := s.Save("biology.pdf", cards(3))
	require.NoError(t, err)
	assert.Equal(t, at.UnixMilli(), entry.ID)
	assert.Equal(t, "2026-03-14", entry.Date)
	assert.Equal(t, "15:09:26", entry.Time)
	assert.Equal(t, 3, entry.CardCount)

	got, ok, err := s.Get(entry.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, entry, got)

	_, ok, err = s.Get(12345)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveIgnoresEmpty(t *testing.T) {
	s := openStore(t)

	_, err := s.Save("", cards(2))
	require.NoError(t, err)
	_, err = s.Save("x.pdf", nil)
	require.NoError(t, err)

	entries, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSaveKeepsNewestTen(t *testing.T) {
	s := openStore(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := range 12 {
		s.SetClock(func() time.Time { return base.Add(time.Duration(i) * time.Second) })
		_, err := s.Save(fmt.Sprintf("doc%d.pdf", i), cards(1))
		require.NoError(t, err)
	}

	entries, err := s.List()
	require.NoError(t, err)
	require.Len(t, entries, history.DefaultLimit)
	assert.Equal(t, "doc11.pdf", entries[0].Filename)
	assert.Equal(t, "doc2.pdf", entries[9].Filename)
}

func TestSaveSameInstantGetsDistinctIDs(t *testing.T) {
	s := openStore(t)
	at := time.Now()
	s.SetClock(func() time.Time { return at })

	a, err := s.Save("a.pdf", cards(1))
	require.NoError(t, err)
	b, err := s.Save("b.pdf", cards(1))
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestUpdate(t *testing.T) {
	s := openStore(t)
	entry, err := s.Save("a.pdf", cards(2))
	require.NoError(t, err)

	require.NoError(t, s.Update(entry.ID, cards(7)))
	got, ok, err := s.Get(entry.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 7, got.CardCount)
	assert.Len(t, got.Cards, 7)

	require.NoError(t, s.Update(999, cards(1)))
}

func TestCorruptHistoryIsEmpty(t *testing.T) {
	for name, raw := range map[string]string{
		"garbage": "{{not json",
		"object":  `{"id": 1}`,
		"null":    "null",
		"string":  `"hello"`,
	} {
		t.Run(name, func(t *testing.T) {
			s := openStore(t)
			require.NoError(t, s.SetRaw([]byte(raw)))

			entries, err := s.List()
			require.NoError(t, err)
			assert.Empty(t, entries)

			_, err = s.Save("fresh.pdf", cards(1))
			require.NoError(t, err)
			entries, err = s.List()
			require.NoError(t, err)
			assert.Len(t, entries, 1)
		})
	}
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := history.Open(history.Config{})
	assert.True(t, errs.HasCode(err, errs.CodeHistoryStore))
}

func TestPersistsAcrossOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := history.Open(history.Config{Path: dir})
	require.NoError(t, err)
	entry, err := s.Save("a.pdf", cards(2))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = history.Open(history.Config{Path: dir})
	require.NoError(t, err)
	defer s.Close()

	got, ok, err := s.Get(entry.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, entry.Cards, got.Cards)
}
