package args

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/cli/go-gh/v2/pkg/term"
	"github.com/markis/flashdeck/internal/config"
	"github.com/spf13/cobra"
)

const (
	CommandGenerate     = "generate"
	CommandStudy        = "study"
	CommandHistoryList  = "history list"
	CommandHistoryStudy = "history study"
	CommandKeySet       = "key set"
	CommandKeyRemove    = "key remove"
)

// ErrNoCommand is returned when only help was shown.
var ErrNoCommand = errors.New("no command provided")

// Arguments represents the command-line arguments structure.
type Arguments struct {
	Command      string
	File         string
	HistoryID    int64
	Key          string
	Cards        int
	Batch        int
	Model        string
	UsePlainText bool
	Verbose      bool
}

// ParseArgs parses argv (without the program name) into Arguments. Flag
// defaults come from cfg.
func ParseArgs(cfg config.Config, argv []string) (Arguments, error) {
	args := Arguments{}

	rootCmd := &cobra.Command{
		Use:           "flashdeck [command] [flags]",
		Short:         "Turn documents into flashcard decks with Gemini",
		SilenceErrors: true, // We'll handle error reporting
		SilenceUsage:  true, // We'll handle usage display
	}
	rootCmd.SetArgs(argv)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&args.Model, "model", cfg.Model, "The Gemini model to use")
	rootCmd.PersistentFlags().BoolVar(&args.UsePlainText, "plain", shouldUsePlainText(cfg), "Disable markdown rendering")
	rootCmd.PersistentFlags().BoolVarP(&args.Verbose, "verbose", "v", false, "Also write logs to stderr")

	generateCmd := &cobra.Command{
		Use:   "generate FILE",
		Short: "Generate flashcards from a document and print them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			args.Command = CommandGenerate
			args.File = cmdArgs[0]
			return validateCounts(args.Cards, args.Batch)
		},
	}
	generateCmd.Flags().IntVarP(&args.Cards, "cards", "n", cfg.Deck.MaxCards, "Number of cards to generate")
	generateCmd.Flags().IntVar(&args.Batch, "batch", cfg.Deck.BatchSize, "Cards requested per call")

	studyCmd := &cobra.Command{
		Use:   "study FILE",
		Short: "Study a document interactively, generating cards as you go",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			args.Command = CommandStudy
			args.File = cmdArgs[0]
			return validateCounts(1, args.Batch)
		},
	}
	studyCmd.Flags().IntVar(&args.Batch, "batch", cfg.Deck.BatchSize, "Cards requested per call")

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List or reopen saved decks",
	}
	historyCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List saved decks, newest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, cmdArgs []string) error {
				args.Command = CommandHistoryList
				return nil
			},
		},
		&cobra.Command{
			Use:   "study ID",
			Short: "Study a saved deck",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, cmdArgs []string) error {
				id, err := strconv.ParseInt(cmdArgs[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid history id %q", cmdArgs[0])
				}
				args.Command = CommandHistoryStudy
				args.HistoryID = id
				return nil
			},
		},
	)

	keyCmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the Gemini API key in the OS keyring",
	}
	keyCmd.AddCommand(
		&cobra.Command{
			Use:   "set KEY",
			Short: "Store the API key",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, cmdArgs []string) error {
				args.Command = CommandKeySet
				args.Key = cmdArgs[0]
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove",
			Short: "Remove the stored API key",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, cmdArgs []string) error {
				args.Command = CommandKeyRemove
				return nil
			},
		},
	)

	rootCmd.AddCommand(generateCmd, studyCmd, historyCmd, keyCmd)

	// Execute the command
	if err := rootCmd.Execute(); err != nil {
		return Arguments{}, err
	}

	if args.Command == "" {
		return Arguments{}, ErrNoCommand
	}

	return args, nil
}

func validateCounts(cards, batch int) error {
	if cards < 1 {
		return fmt.Errorf("--cards must be positive, got %d", cards)
	}
	if batch < 1 {
		return fmt.Errorf("--batch must be positive, got %d", batch)
	}
	return nil
}

// shouldUsePlainText determines if plain text output should be used based on environment and terminal settings.
func shouldUsePlainText(cfg config.Config) bool {
	switch cfg.Render.Format {
	case "plain":
		return true
	case "markdown":
		return false
	}

	t := term.FromEnv()

	// Check if output is being redirected
	if !t.IsTerminalOutput() {
		return true
	}

	// Honors NO_COLOR and CLICOLOR
	if !t.IsColorEnabled() {
		return true
	}

	// Check for TERM=dumb
	if term := os.Getenv("TERM"); term == "dumb" {
		return true
	}

	return false
}
