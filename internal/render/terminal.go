package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/cli/go-gh/v2/pkg/markdown"
	"github.com/markis/flashdeck/internal/deck"
)

// TerminalRenderer prints cards as they are generated.
type TerminalRenderer struct {
	out       io.Writer
	markdown  *glamour.TermRenderer
	plainText bool
	maxCards  int

	mu sync.Mutex
}

func NewTerminalRenderer(out io.Writer, usePlainText bool, wrap, maxCards int) *TerminalRenderer {
	var md *glamour.TermRenderer
	if !usePlainText {
		md, _ = glamour.NewTermRenderer(
			markdown.WithWrap(wrap),
			glamour.WithAutoStyle(),
		)
	}

	return &TerminalRenderer{
		out:       out,
		markdown:  md,
		plainText: usePlainText || md == nil,
		maxCards:  maxCards,
	}
}

// CardAdded renders one card the moment it is accepted.
func (t *TerminalRenderer) CardAdded(card deck.Card, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.renderContent(FormatCard(card, total, t.maxCards)); err != nil {
		fmt.Fprintf(t.out, "%d. %s\n   %s\n", total, card.Question, card.Answer)
	}
}

// Status prints a one-line status message.
func (t *TerminalRenderer) Status(msg string) {
	if msg == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, msg)
}

// FormatCard renders a card as markdown with its position in the deck.
func FormatCard(card deck.Card, n, maxCards int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### %s\n\n", Counter(n, n, maxCards))
	fmt.Fprintf(&b, "**Q:** %s\n\n", card.Question)
	fmt.Fprintf(&b, "**A:** %s\n", card.Answer)
	return b.String()
}

// Counter formats "i / n", marking a full deck.
func Counter(index, total, maxCards int) string {
	if total == 0 {
		return "0 / 0"
	}
	s := fmt.Sprintf("%d / %d", index, total)
	if total >= maxCards {
		s += " (Max)"
	}
	return s
}

func (t *TerminalRenderer) renderContent(content string) error {
	if t.plainText {
		_, err := fmt.Fprintln(t.out, strings.TrimSpace(content))
		return err
	}

	mdContent, err := t.markdown.Render(content)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}

	_, err = fmt.Fprintln(t.out, strings.TrimSpace(mdContent))
	return err
}
