// Package credentials resolves the remote API token. The environment
// variable wins over the OS keyring so scripts and CI can override the
// stored credential without touching it.
package credentials

import (
	"fmt"

	"github.com/zalando/go-keyring"
)

const keyringService = "fitsync-remote"

// KeyringStore persists tokens in the OS keyring under a per-account entry
type KeyringStore struct {
	Account string
}

// NewKeyringStore creates a store for the given account name; empty falls
// back to "default"
func NewKeyringStore(account string) *KeyringStore {
	if account == "" {
		account = "default"
	}
	return &KeyringStore{Account: account}
}

// Get retrieves the stored token. A missing entry is reported as an error
// so the resolver can distinguish it from an empty token.
func (k *KeyringStore) Get() (string, error) {
	token, err := keyring.Get(keyringService, k.Account)
	if err != nil {
		return "", fmt.Errorf("failed to read token from keyring: %w", err)
	}
	return token, nil
}

// Set stores the token in the keyring
func (k *KeyringStore) Set(token string) error {
	if err := keyring.Set(keyringService, k.Account, token); err != nil {
		return fmt.Errorf("failed to store token in keyring: %w", err)
	}
	return nil
}

// Delete removes the stored token. Deleting a missing entry is not an
// error.
func (k *KeyringStore) Delete() error {
	err := keyring.Delete(keyringService, k.Account)
	if err != nil && err != keyring.ErrNotFound {
		return fmt.Errorf("failed to delete token from keyring: %w", err)
	}
	return nil
}
