package ingest

import (
	"context"

	"github.com/markis/flashdeck/internal/deck"
	"github.com/markis/flashdeck/internal/document"
)

// FillTo requests cards in batches until the deck holds total cards, the cap
// is reached, a batch yields nothing, or a request fails. The returned Result
// carries the status of the last batch and the count accepted across all of
// them.
func (c *Controller) FillTo(ctx context.Context, doc *document.Document, total, batch int) Result {
	if batch <= 0 {
		batch = total
	}
	goal := min(total, c.session.Cap())

	var (
		last     Result
		accepted int
		asked    int
	)
	for c.session.Len() < goal {
		last = c.RequestMore(ctx, doc, min(batch, goal-c.session.Len()))
		accepted += last.Accepted
		asked += last.Requested
		if last.Status != StatusAccepted || ctx.Err() != nil {
			break
		}
	}

	if asked == 0 && last.Status == StatusAccepted {
		// Nothing was needed.
		last = c.result(StatusNoop, 0, 0, nil)
		if c.session.Full() {
			last.Status = StatusCapReached
		}
	}
	if last.Status == StatusAccepted && c.session.Full() {
		last.Status = StatusCapReached
	}
	last.Accepted = accepted
	last.Requested = asked
	return last
}

// ShouldPrefetch reports whether the viewer is close enough to the end of the
// deck that the next batch should be requested now.
func ShouldPrefetch(s *deck.Session, margin int) bool {
	if s.Full() || s.Generating() || s.Len() == 0 {
		return false
	}
	return s.Index() >= s.Len()-margin
}
