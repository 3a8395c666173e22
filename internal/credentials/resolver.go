package credentials

import (
	"fitsync/internal/utils"
)

// Source records where a resolved token came from
type Source string

const (
	SourceEnv     Source = "environment"
	SourceKeyring Source = "keyring"
)

// Resolve returns the API token for the given keyring account. The
// FITSYNC_TOKEN environment variable takes priority; otherwise the OS
// keyring is consulted. A missing token everywhere yields
// utils.ErrNoToken.
func Resolve(account string) (string, Source, error) {
	if token := tokenFromEnv(); token != "" {
		utils.Debugf("[Credentials] using token from %s", EnvToken)
		return token, SourceEnv, nil
	}

	token, err := NewKeyringStore(account).Get()
	if err != nil {
		return "", "", utils.ErrNoToken()
	}
	return token, SourceKeyring, nil
}
