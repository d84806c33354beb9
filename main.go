package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cli/go-gh/v2/pkg/term"
	"github.com/markis/flashdeck/internal/args"
	"github.com/markis/flashdeck/internal/client"
	"github.com/markis/flashdeck/internal/config"
	"github.com/markis/flashdeck/internal/deck"
	"github.com/markis/flashdeck/internal/document"
	"github.com/markis/flashdeck/internal/errs"
	"github.com/markis/flashdeck/internal/history"
	"github.com/markis/flashdeck/internal/ingest"
	"github.com/markis/flashdeck/internal/logger"
	"github.com/markis/flashdeck/internal/render"
	"github.com/markis/flashdeck/internal/secrets"
	"github.com/markis/flashdeck/internal/tui"
	"go.uber.org/zap"
)

// main function to parse arguments and dispatch the selected command.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, args.ErrNoCommand) {
			return
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

type app struct {
	cfg  *config.Config
	args args.Arguments
	log  *zap.Logger
	out  io.Writer
}

func run(ctx context.Context, argv []string) (err error) {
	cfg, err := config.LoadConfig(ctx)
	if err != nil {
		return errs.Wrap(err, errs.CodeConfigLoad, "loading config")
	}

	a, err := args.ParseArgs(*cfg, argv)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg, a.Verbose)
	if err != nil {
		return errs.Wrap(err, errs.CodeConfigLoad, "creating logger")
	}
	defer func() { _ = log.Sync() }()
	defer func() {
		if err != nil {
			log.Error("command failed",
				zap.String("code", string(errs.CodeOf(err))),
				zap.Any("context", errs.FieldsOf(err)),
				zap.Error(err),
			)
		}
	}()

	cli := &app{cfg: cfg, args: a, log: log, out: os.Stdout}
	log.Debug("starting", zap.String("command", a.Command), zap.String("model", a.Model))

	switch a.Command {
	case args.CommandGenerate:
		return cli.generate(ctx)
	case args.CommandStudy:
		return cli.study(ctx)
	case args.CommandHistoryList:
		return cli.historyList()
	case args.CommandHistoryStudy:
		return cli.historyStudy(ctx)
	case args.CommandKeySet:
		if err := secrets.NewKeyringStore().Store(secrets.APIKey, a.Key); err != nil {
			return err
		}
		fmt.Fprintln(cli.out, "API key saved.")
		return nil
	case args.CommandKeyRemove:
		if err := secrets.NewKeyringStore().Delete(secrets.APIKey); err != nil {
			return err
		}
		fmt.Fprintln(cli.out, "API key removed.")
		return nil
	}
	return fmt.Errorf("unknown command %q", a.Command)
}

func newLogger(cfg *config.Config, verbose bool) (*zap.Logger, error) {
	path, err := cfg.LogPath()
	if err != nil {
		return nil, err
	}
	opts := logger.Options{FilePath: path, Level: cfg.Log.Level}
	if verbose {
		opts.Console = os.Stderr
	}
	return logger.New(opts)
}

func (a *app) openHistory() (*history.Store, error) {
	path, err := a.cfg.HistoryPath()
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeHistoryStore, "resolving history path")
	}
	return history.Open(history.Config{Path: path, Limit: a.cfg.History.Limit, Logger: a.log})
}

func (a *app) newClient() (*client.Client, error) {
	key, err := getAPIKey(secrets.NewKeyringStore())
	if err != nil {
		return nil, err
	}
	c, err := client.New(client.Options{
		APIBase: a.cfg.APIBase,
		Model:   a.args.Model,
		APIKey:  key,
	})
	if err != nil {
		return nil, err
	}
	a.log.Debug("gemini client ready", zap.String("model", c.Model()))
	return c, nil
}

func (a *app) controllerOptions() ingest.Options {
	return ingest.Options{
		Generation: client.Generation{
			Temperature:     a.cfg.Generation.Temperature,
			MaxOutputTokens: a.cfg.Generation.MaxOutputTokens,
		},
		Logger: a.log,
	}
}

// generate fills a deck from a document and prints every card as it arrives.
func (a *app) generate(ctx context.Context) error {
	doc, err := document.Load(a.args.File)
	if err != nil {
		return err
	}
	c, err := a.newClient()
	if err != nil {
		return err
	}
	store, err := a.openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	session := ingest.NewSession(a.cfg.Deck.MaxCards)
	printer := render.NewTerminalRenderer(a.out, a.args.UsePlainText, a.cfg.Render.Wrap, session.Cap())
	ctrl := ingest.New(c, session, printer, a.controllerOptions())

	res := ctrl.FillTo(ctx, doc, a.args.Cards, a.args.Batch)
	printer.Status(res.Message())

	saver := newDeckSaver(store, filepath.Base(doc.Filename), a.log)
	saver.Sync(session.Cards())
	if id := saver.ID(); id != 0 {
		a.log.Info("deck saved", zap.Int64("id", id), zap.Int("cards", session.Len()))
	}

	if res.Status == ingest.StatusFailed {
		return res.Err
	}
	return nil
}

// study opens the viewer on a fresh deck and generates cards on demand.
func (a *app) study(ctx context.Context) error {
	doc, err := document.Load(a.args.File)
	if err != nil {
		return err
	}
	c, err := a.newClient()
	if err != nil {
		return err
	}
	store, err := a.openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	session := ingest.NewSession(a.cfg.Deck.MaxCards)
	notifier := &tui.Notifier{}
	ctrl := ingest.New(c, session, notifier, a.controllerOptions())
	saver := newDeckSaver(store, filepath.Base(doc.Filename), a.log)

	model := tui.New(ctx, session, tui.Options{
		Requester:      ctrl,
		Document:       doc,
		BatchSize:      a.args.Batch,
		PrefetchMargin: a.cfg.Deck.PrefetchMargin,
		OnResult:       func(ingest.Result) { saver.Sync(session.Cards()) },
		Title:          filepath.Base(doc.Filename),
	})
	return a.runViewer(ctx, model, notifier)
}

// historyStudy reopens a saved deck. Its conversation is gone, so the deck
// is read-only.
func (a *app) historyStudy(ctx context.Context) error {
	store, err := a.openHistory()
	if err != nil {
		return err
	}
	entry, ok, err := store.Get(a.args.HistoryID)
	store.Close()
	if err != nil {
		return err
	}
	if !ok {
		return errs.Errorf(errs.CodeHistoryStore, "no saved deck with id %d", a.args.HistoryID)
	}

	session := deck.FromCards(a.cfg.Deck.MaxCards, entry.Cards)
	model := tui.New(ctx, session, tui.Options{
		Title: fmt.Sprintf("%s (%s %s)", entry.Filename, entry.Date, entry.Time),
	})
	return a.runViewer(ctx, model, nil)
}

func (a *app) runViewer(ctx context.Context, model tui.Model, notifier *tui.Notifier) error {
	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())
	if notifier != nil {
		notifier.Bind(p)
	}
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func (a *app) historyList() error {
	store, err := a.openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List()
	if err != nil {
		return err
	}

	t := term.FromEnv()
	width, _, _ := t.Size()
	if width <= 0 {
		width = 80
	}
	return render.History(a.out, entries, t.IsTerminalOutput(), width)
}
