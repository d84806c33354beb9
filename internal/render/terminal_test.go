package render

import (
	"bytes"
	"testing"

	"github.com/markis/flashdeck/internal/deck"
	"github.com/markis/flashdeck/internal/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter(t *testing.T) {
	assert.Equal(t, "0 / 0", Counter(0, 0, 35))
	assert.Equal(t, "3 / 10", Counter(3, 10, 35))
	assert.Equal(t, "35 / 35 (Max)", Counter(35, 35, 35))
}

func TestPlainRendererPrintsEachCard(t *testing.T) {
	var out bytes.Buffer
	r := NewTerminalRenderer(&out, true, 80, 2)

	r.CardAdded(deck.Card{Question: "What is Go?", Answer: "A language"}, 1)
	r.CardAdded(deck.Card{Question: "Who made it?", Answer: "Google"}, 2)
	r.Status("Generated 2 flashcards (2 in deck).")
	r.Status("")

	got := out.String()
	assert.Contains(t, got, "### 1 / 1")
	assert.Contains(t, got, "**Q:** What is Go?")
	assert.Contains(t, got, "**A:** A language")
	assert.Contains(t, got, "### 2 / 2 (Max)")
	assert.Contains(t, got, "Generated 2 flashcards (2 in deck).\n")
	assert.Less(t, bytes.Index(out.Bytes(), []byte("What is Go?")), bytes.Index(out.Bytes(), []byte("Who made it?")))
}

func TestMarkdownRendererRendersCard(t *testing.T) {
	var out bytes.Buffer
	r := NewTerminalRenderer(&out, false, 80, 35)

	r.CardAdded(deck.Card{Question: "Capital of France?", Answer: "Paris"}, 1)
	assert.Contains(t, out.String(), "Capital of France?")
	assert.Contains(t, out.String(), "Paris")
}

func TestHistoryTable(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, History(&out, nil, false, 80))
	assert.Equal(t, "No history yet\n", out.String())

	out.Reset()
	entries := []history.Entry{
		{ID: 2, Filename: "b.pdf", Date: "2025-01-02", Time: "10:00:00", CardCount: 5},
		{ID: 1, Filename: "a.pdf", Date: "2025-01-01", Time: "09:00:00", CardCount: 35},
	}
	require.NoError(t, History(&out, entries, false, 80))
	assert.Contains(t, out.String(), "2\tb.pdf\t5\t2025-01-02 10:00:00\n")
	assert.Contains(t, out.String(), "1\ta.pdf\t35\t2025-01-01 09:00:00\n")
}
