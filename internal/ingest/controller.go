// Package ingest drives streamed generation requests and feeds the cards they
// produce into a deck session as they arrive.
package ingest

import (
	"context"
	"io"
	"strings"

	"github.com/markis/flashdeck/internal/client"
	"github.com/markis/flashdeck/internal/deck"
	"github.com/markis/flashdeck/internal/document"
	"github.com/markis/flashdeck/internal/errs"
	"github.com/markis/flashdeck/internal/stream"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Streamer issues one streamed generation call. The returned body is a
// server-sent event stream.
type Streamer interface {
	Stream(ctx context.Context, req client.GenerateRequest) (io.ReadCloser, error)
}

// Notifier is told about every accepted card, synchronously and in order.
type Notifier interface {
	CardAdded(card deck.Card, total int)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(card deck.Card, total int)

func (f NotifierFunc) CardAdded(card deck.Card, total int) { f(card, total) }

type nopNotifier struct{}

func (nopNotifier) CardAdded(deck.Card, int) {}

// Options configures a Controller.
type Options struct {
	Generation client.Generation
	Logger     *zap.Logger
}

// Controller is the only writer of its session.
type Controller struct {
	client  Streamer
	session *deck.Session
	notify  Notifier
	gen     client.Generation
	log     *zap.Logger
}

func New(streamer Streamer, session *deck.Session, notifier Notifier, opts Options) *Controller {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		client:  streamer,
		session: session,
		notify:  notifier,
		gen:     opts.Generation,
		log:     log.Named("ingest"),
	}
}

// Session returns the session this controller writes to.
func (c *Controller) Session() *deck.Session {
	return c.session
}

// RequestMore asks for up to target more cards. doc is required only for the
// first request of a conversation; later requests never resend it. All
// failures are reported through the Result.
func (c *Controller) RequestMore(ctx context.Context, doc *document.Document, target int) Result {
	s := c.session
	if !s.TryBeginRequest() {
		return c.result(StatusBusy, 0, 0, nil)
	}
	defer s.EndRequest()

	if s.Full() {
		return c.result(StatusCapReached, 0, 0, nil)
	}

	requested := min(target, s.Remaining())
	if requested <= 0 {
		return c.result(StatusNoop, 0, 0, nil)
	}

	var turn *genai.Content
	if s.TurnCount() <= 1 {
		if doc.Empty() {
			err := errs.New(errs.CodeDocumentRequired, "a source document is required to start generating")
			return c.result(StatusFailed, requested, 0, err)
		}
		turn = firstTurn(doc, requested)
	} else {
		turn = followUpTurn(requested)
	}

	tx := s.PushTurn(turn)
	req := client.NewGenerateRequest(s.Turns(), c.gen)

	c.log.Info("requesting cards",
		zap.Int("requested", requested),
		zap.Int("turns", len(req.Contents)),
		zap.Bool("with_document", len(turn.Parts) > 1),
	)

	body, err := c.client.Stream(ctx, req)
	if err != nil {
		tx.Rollback()
		c.log.Error("generation request failed", zap.Error(err))
		return c.result(StatusFailed, requested, 0, err)
	}
	tx.Commit()

	return c.consume(ctx, body, requested)
}

// consume feeds the stream into the session until it ends or the deck fills.
func (c *Controller) consume(ctx context.Context, body io.ReadCloser, requested int) Result {
	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer body.Close()

	parser := stream.NewParser(streamCtx)
	go parser.Process(body)

	var (
		raw      strings.Builder
		lines    stream.LineBuffer
		accepted int
		full     bool
		readErr  error
	)

	for chunk := range parser.Chunks() {
		if chunk.Error != nil {
			readErr = chunk.Error
			continue
		}

		raw.WriteString(chunk.Content)
		for _, line := range lines.Write(chunk.Content) {
			if c.accept(line) {
				accepted++
			}
			if c.session.Full() {
				full = true
				break
			}
		}
		if full {
			c.log.Info("card limit reached, closing stream",
				zap.Int("cap", c.session.Cap()),
				zap.Bool("discarded_partial_line", lines.Pending()),
			)
			cancel()
			break
		}
	}

	if !full {
		if rest := lines.Flush(); rest != "" && c.accept(rest) {
			accepted++
		}
		if readErr == nil && ctx.Err() != nil {
			readErr = ctx.Err()
		}
	}

	// The reply goes into the conversation so the next batch can avoid
	// repeating these questions.
	if raw.Len() > 0 {
		c.session.PushTurn(deck.TextTurn(deck.RoleResponder, raw.String())).Commit()
	}

	switch {
	case readErr != nil:
		err := errs.Wrap(readErr, errs.CodeStreamRead, "stream interrupted")
		c.log.Error("generation stream failed", zap.Int("accepted", accepted), zap.Error(err))
		return c.result(StatusFailed, requested, accepted, err)
	case c.session.Full():
		return c.result(StatusCapReached, requested, accepted, nil)
	case accepted == 0:
		c.log.Warn("stream produced no valid cards", zap.Int("bytes", raw.Len()))
		return c.result(StatusZeroYield, requested, 0, nil)
	default:
		c.log.Info("stream finished", zap.Int("accepted", accepted), zap.Int("total", c.session.Len()))
		return c.result(StatusAccepted, requested, accepted, nil)
	}
}

// accept validates one line of model output and appends it to the session.
func (c *Controller) accept(line string) bool {
	card, err := deck.ParseCard(line)
	if err != nil {
		c.log.Warn("skipping line that is not a card", zap.String("line", truncate(line, 200)), zap.Error(err))
		return false
	}
	if !c.session.Append(card) {
		return false
	}
	c.notify.CardAdded(card, c.session.Len())
	return true
}

func (c *Controller) result(status Status, requested, accepted int, err error) Result {
	return Result{
		Status:    status,
		Requested: requested,
		Accepted:  accepted,
		Total:     c.session.Len(),
		Cap:       c.session.Cap(),
		Err:       err,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
