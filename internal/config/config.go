package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

const (
	appDirName    = "flashdeck"
	defaultConfig = ".config"
	defaultData   = ".local/share"
	defaultState  = ".local/state"
)

var configFiles = []string{
	"config.yaml",
	"config.yml",
}

// Config represents the structure of the configuration file used by the application.
type Config struct {
	Model      string     `yaml:"model" default:"gemini-2.0-flash-lite"`
	APIBase    string     `yaml:"api_base" default:"https://generativelanguage.googleapis.com"`
	Generation Generation `yaml:"generation"`
	Deck       Deck       `yaml:"deck"`
	History    History    `yaml:"history"`
	Render     Render     `yaml:"render"`
	Log        Log        `yaml:"log"`
}

// Generation holds sampling parameters for the generative service.
type Generation struct {
	Temperature     float32 `yaml:"temperature" default:"0.2"`
	MaxOutputTokens int32   `yaml:"max_output_tokens" default:"2048"`
}

// Deck bounds how many cards are generated and when more are requested.
type Deck struct {
	MaxCards int `yaml:"max_cards" default:"35"`
	// BatchSize is how many cards each request asks for.
	BatchSize int `yaml:"batch_size" default:"5"`
	// PrefetchMargin is how close to the last card the viewer gets before
	// requesting the next batch.
	PrefetchMargin int `yaml:"prefetch_margin" default:"2"`
}

type History struct {
	// Path is the database directory; empty means the XDG data dir.
	Path  string `yaml:"path"`
	Limit int    `yaml:"limit" default:"10"`
}

type Render struct {
	// Format is "auto", "markdown" or "plain".
	Format string `yaml:"format" default:"auto"`
	Wrap   int    `yaml:"wrap" default:"100"`
}

type Log struct {
	// Path is the log file; empty means the XDG state dir.
	Path  string `yaml:"path"`
	Level string `yaml:"level" default:"info"`
}

// configResult is a struct used to return the configuration and any error that occurs during loading.
type configResult struct {
	config *Config
	err    error
}

// NewDefaultConfig returns a configuration with every default applied.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		// Only reachable if a default tag above is malformed.
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return cfg
}

// xdgDir resolves an XDG base directory with its home-relative fallback.
func xdgDir(env, fallback string) (string, error) {
	dir := os.Getenv(env)
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		dir = filepath.Join(home, fallback)
	}
	return filepath.Join(dir, appDirName), nil
}

// getConfigPath retrieves the path to the configuration directory based on the XDG_CONFIG_HOME environment variable.
func getConfigPath() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", defaultConfig)
}

// HistoryPath returns the history database directory.
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	dir, err := xdgDir("XDG_DATA_HOME", defaultData)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history"), nil
}

// LogPath returns the log file path.
func (c *Config) LogPath() (string, error) {
	if c.Log.Path != "" {
		return c.Log.Path, nil
	}
	dir, err := xdgDir("XDG_STATE_HOME", defaultState)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "flashdeck.log"), nil
}

// tryLoadConfig attempts to load a configuration file from the specified path.
func tryLoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := NewDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Render.Format {
	case "auto", "markdown", "plain":
	default:
		return fmt.Errorf("render.format must be auto, markdown or plain, got %q", c.Render.Format)
	}
	if c.Deck.MaxCards < 1 {
		return fmt.Errorf("deck.max_cards must be positive, got %d", c.Deck.MaxCards)
	}
	if c.Deck.BatchSize < 1 {
		return fmt.Errorf("deck.batch_size must be positive, got %d", c.Deck.BatchSize)
	}
	if c.Generation.Temperature < 0 || c.Generation.Temperature > 2 {
		return fmt.Errorf("generation.temperature must be within [0, 2], got %v", c.Generation.Temperature)
	}
	return nil
}

// LoadConfig loads the configuration from the user's home directory, with a timeout.
func LoadConfig(ctx context.Context) (*Config, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result := make(chan configResult, 1)

	go func() {
		cfg, err := loadConfigFiles(ctx)
		result <- configResult{config: cfg, err: err}
	}()

	done := ctx.Done()
	select {
	case <-done:
		return nil, ctx.Err()
	case r := <-result:
		return r.config, r.err
	}
}

// loadConfigFiles loads configuration files from the user's home directory.
func loadConfigFiles(ctx context.Context) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error before loading config: %w", err)
	}

	configDir, err := getConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}

	// Return default config early if directory doesn't exist
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return NewDefaultConfig(), nil
	}

	for _, filename := range configFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cfg, err := tryLoadConfig(filepath.Join(configDir, filename))
		if err == nil {
			return cfg, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config from %s: %w", filename, err)
		}
	}

	return NewDefaultConfig(), nil
}
