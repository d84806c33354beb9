package main

import (
	"errors"
	"os"
	"strings"

	"github.com/markis/flashdeck/internal/errs"
	"github.com/markis/flashdeck/internal/secrets"
)

const apiKeyEnv = "GEMINI_API_KEY"

type secretReader interface {
	Retrieve(key string) (string, error)
}

// getAPIKey retrieves the Gemini API key from the environment or the OS keyring.
func getAPIKey(store secretReader) (string, error) {
	// Check environment variables first - fast path
	if key := strings.TrimSpace(os.Getenv(apiKeyEnv)); key != "" {
		return key, nil
	}

	key, err := store.Retrieve(secrets.APIKey)
	if errors.Is(err, secrets.ErrNotFound) {
		return "", errs.New(errs.CodeCredentialMissing,
			"Gemini API key not found; set "+apiKeyEnv+" or run `flashdeck key set KEY`")
	}
	if err != nil {
		return "", err
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return "", errs.New(errs.CodeCredentialMissing, "stored Gemini API key is empty")
	}
	return key, nil
}
