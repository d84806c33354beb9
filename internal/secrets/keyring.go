// Package secrets stores the Gemini API key in the OS keyring.
package secrets

import (
	"errors"

	"github.com/markis/flashdeck/internal/errs"
	"github.com/zalando/go-keyring"
)

const (
	Service = "flashdeck"
	APIKey  = "gemini-api-key"
)

// ErrNotFound is returned when no key has been stored.
var ErrNotFound = errors.New("secret not found")

// KeyringStore keeps secrets in the OS keyring: Keychain on macOS,
// secret-service on Linux, Credential Manager on Windows.
type KeyringStore struct {
	service string
}

func NewKeyringStore() *KeyringStore {
	return &KeyringStore{service: Service}
}

func (s *KeyringStore) Store(key, value string) error {
	if key == "" || value == "" {
		return errs.New(errs.CodeCredentialStore, "secret store: key and value must not be empty")
	}
	if err := keyring.Set(s.service, key, value); err != nil {
		return errs.Wrapf(err, errs.CodeCredentialStore, "storing secret %s/%s", s.service, key)
	}
	return nil
}

func (s *KeyringStore) Retrieve(key string) (string, error) {
	val, err := keyring.Get(s.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", errs.Wrapf(err, errs.CodeCredentialStore, "retrieving secret %s/%s", s.service, key)
	}
	return val, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *KeyringStore) Delete(key string) error {
	err := keyring.Delete(s.service, key)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return errs.Wrapf(err, errs.CodeCredentialStore, "deleting secret %s/%s", s.service, key)
	}
	return nil
}
