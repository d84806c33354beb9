package ingest

import "fmt"

// Status is the terminal state of one RequestMore call.
type Status int

const (
	// StatusAccepted means at least one card was added.
	StatusAccepted Status = iota
	// StatusZeroYield means the call succeeded but produced no valid card.
	StatusZeroYield
	// StatusCapReached means the deck is full; it may have filled up during
	// this call.
	StatusCapReached
	// StatusFailed means the call or the stream failed; see Result.Err.
	StatusFailed
	// StatusBusy means another request was already in flight.
	StatusBusy
	// StatusNoop means there was nothing to ask for.
	StatusNoop
)

func (s Status) String() string {
	switch s {
	case StatusAccepted:
		return "accepted"
	case StatusZeroYield:
		return "zero-yield"
	case StatusCapReached:
		return "cap-reached"
	case StatusFailed:
		return "failed"
	case StatusBusy:
		return "busy"
	case StatusNoop:
		return "noop"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result reports what a request did to the session.
type Result struct {
	Status Status
	// Requested is how many cards were asked for.
	Requested int
	// Accepted is how many cards were added by this call.
	Accepted int
	// Total is the deck size after the call.
	Total int
	// Cap is the session's card limit.
	Cap int
	Err error
}

// Message is a one-line, user-facing summary of the result.
func (r Result) Message() string {
	switch r.Status {
	case StatusAccepted:
		return fmt.Sprintf("Generated %d flashcards (%d in deck).", r.Accepted, r.Total)
	case StatusZeroYield:
		return "The service generated no valid flashcards from the document."
	case StatusCapReached:
		return fmt.Sprintf("Deck is full: %d / %d flashcards.", r.Total, r.Cap)
	case StatusFailed:
		if r.Accepted > 0 {
			return fmt.Sprintf("Streaming error after %d flashcards: %v", r.Accepted, r.Err)
		}
		return fmt.Sprintf("Streaming error: %v", r.Err)
	case StatusBusy:
		return "Already generating..."
	default:
		return ""
	}
}
