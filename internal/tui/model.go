// Package tui is the interactive study viewer. It pages through a deck one
// card at a time and asks for more cards as the reader nears the end.
//
// The model runs on the bubbletea event loop. Cards produced by the ingestion
// controller arrive from another goroutine through Notifier, which forwards
// them to the program as messages.
package tui

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/markis/flashdeck/internal/deck"
	"github.com/markis/flashdeck/internal/document"
	"github.com/markis/flashdeck/internal/ingest"
	"github.com/markis/flashdeck/internal/render"
)

const slideDuration = 150 * time.Millisecond

// CardMsg reports a card accepted by the controller.
type CardMsg struct {
	Card  deck.Card
	Total int
}

// ResultMsg reports the end of one generation request.
type ResultMsg struct {
	Result ingest.Result
}

type slideDoneMsg struct{}

// Requester is the part of the ingestion controller the viewer drives.
type Requester interface {
	RequestMore(ctx context.Context, doc *document.Document, target int) ingest.Result
}

// Notifier forwards accepted cards to a running program. It drops cards
// until Bind is called.
type Notifier struct {
	mu sync.Mutex
	p  *tea.Program
}

func (n *Notifier) Bind(p *tea.Program) {
	n.mu.Lock()
	n.p = p
	n.mu.Unlock()
}

func (n *Notifier) CardAdded(card deck.Card, total int) {
	n.mu.Lock()
	p := n.p
	n.mu.Unlock()
	if p != nil {
		p.Send(CardMsg{Card: card, Total: total})
	}
}

// Options configures a Model.
type Options struct {
	// Requester generates more cards. Nil means the deck is read-only.
	Requester Requester
	// Document is sent with the first request of a fresh session.
	Document *document.Document
	// BatchSize is how many cards each request asks for.
	BatchSize int
	// PrefetchMargin is how close to the last card the reader gets before
	// the next batch is requested.
	PrefetchMargin int
	// OnResult runs after every request, off the event loop.
	OnResult func(ingest.Result)
	Title    string
}

// Model is the bubbletea model of the study viewer.
type Model struct {
	ctx     context.Context
	session *deck.Session
	opts    Options

	keys    keyMap
	help    help.Model
	spinner spinner.Model

	flipped    bool
	slide      int
	generating bool
	status     string
	width      int
	quitting   bool
}

func New(ctx context.Context, session *deck.Session, opts Options) Model {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 5
	}
	if opts.PrefetchMargin < 0 {
		opts.PrefetchMargin = 0
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	m := Model{
		ctx:     ctx,
		session: session,
		opts:    opts,
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: sp,
	}
	if m.initialRequest() {
		m.generating = true
		m.status = "Generating..."
	}
	return m
}

func (m Model) initialRequest() bool {
	return m.opts.Requester != nil && m.session.Len() == 0
}

func (m Model) Init() tea.Cmd {
	if m.initialRequest() {
		return tea.Batch(m.spinner.Tick, m.request())
	}
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			return m.navigate(1)
		case key.Matches(msg, m.keys.Prev):
			return m.navigate(-1)
		case key.Matches(msg, m.keys.Flip):
			if m.session.Len() > 0 {
				m.flipped = !m.flipped
			}
			return m, nil
		}
		return m, nil

	case CardMsg:
		if m.generating {
			m.status = "Generating..."
		}
		return m, nil

	case ResultMsg:
		m.generating = false
		m.status = msg.Result.Message()
		return m, nil

	case slideDoneMsg:
		m.slide = 0
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// navigate sets the slide frame, moves the session cursor, then decides
// whether the next batch should be requested.
func (m Model) navigate(dir int) (tea.Model, tea.Cmd) {
	var moved bool
	if dir > 0 {
		moved = m.session.Next()
	} else {
		moved = m.session.Prev()
	}
	var cmds []tea.Cmd
	if moved {
		m.slide = dir
		m.flipped = false
		cmds = append(cmds, tea.Tick(slideDuration, func(time.Time) tea.Msg { return slideDoneMsg{} }))
	}
	if cmd := m.maybePrefetch(dir); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) maybePrefetch(dir int) tea.Cmd {
	if dir <= 0 || m.opts.Requester == nil || m.generating {
		return nil
	}
	// An empty deck means the opening request failed; moving forward retries.
	if m.session.Len() > 0 && !ingest.ShouldPrefetch(m.session, m.opts.PrefetchMargin) {
		return nil
	}
	m.generating = true
	m.status = "Generating..."
	return m.request()
}

// request runs one generation call off the event loop.
func (m Model) request() tea.Cmd {
	ctx, req, doc, n, done := m.ctx, m.opts.Requester, m.opts.Document, m.opts.BatchSize, m.opts.OnResult
	return func() tea.Msg {
		res := req.RequestMore(ctx, doc, n)
		if done != nil {
			done(res)
		}
		return ResultMsg{Result: res}
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	if m.opts.Title != "" {
		b.WriteString(titleStyle.Render(m.opts.Title))
		b.WriteString("\n\n")
	}

	card, ok := m.session.Current()
	switch {
	case !ok && m.generating:
		b.WriteString(cardStyle.Render(m.spinner.View() + " Generating flashcards..."))
	case !ok:
		b.WriteString(cardStyle.Render("No flashcards yet."))
	default:
		b.WriteString(m.renderCard(card))
	}
	b.WriteString("\n")

	counter := render.Counter(m.session.Index()+1, m.session.Len(), m.session.Cap())
	if m.session.Len() == 0 {
		counter = render.Counter(0, 0, m.session.Cap())
	}
	b.WriteString(counterStyle.Render(counter))
	if m.generating {
		b.WriteString("  " + m.spinner.View())
	}
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderCard(card deck.Card) string {
	label, text, style := "Question", card.Question, cardStyle
	if m.flipped {
		label, text, style = "Answer", card.Answer, answerStyle
	}
	width := 60
	if m.width > 0 {
		width = min(width, m.width-4)
	}
	body := labelStyle.Render(label) + "\n\n" + text
	return style.Width(width).MarginLeft(slideOffset(m.slide)).Render(body)
}

func slideOffset(slide int) int {
	switch {
	case slide > 0:
		return 4
	case slide < 0:
		return 0
	default:
		return 2
	}
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("8"))
	counterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle  = lipgloss.NewStyle().Italic(true)
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	cardStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(1, 2)
	answerStyle = cardStyle.BorderForeground(lipgloss.Color("10"))
)
